package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/toyz/externgen/internal/utils"
)

const greeterSource = `package greet

import "github.com/toyz/externgen/pkg/extern"

//extern::interface
type Greeter interface {
	New(num int) extern.Self
	Greet(this extern.Ref[extern.Self]) string
}
`

const greeterImplSource = `package impl

//extern::impl -Interface=example.com/app/greet.Greeter
type GreeterImpl struct {
	num int
}

func (g GreeterImpl) New(num int) GreeterImpl { return GreeterImpl{num: num} }
func (g GreeterImpl) Greet() string           { return "hello" }
`

// writeTree lays out files below a temporary directory and returns it
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func greeterModule(t *testing.T, extra map[string]string) string {
	files := map[string]string{
		"go.mod":         "module example.com/app\n\ngo 1.25\n",
		"greet/greet.go": greeterSource,
		"impl/impl.go":   greeterImplSource,
	}
	for name, content := range extra {
		files[name] = content
	}
	return writeTree(t, files)
}

// captureDiagnostics returns a diagnostic system writing to the returned buffers
func captureDiagnostics(level utils.DiagnosticLevel) (*utils.DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	d := utils.NewDiagnosticSystem(level)
	d.ShowTime(false)
	d.SetOutput(&out, &errOut)
	return d, &out, &errOut
}

func testConfig(dirs ...string) Config {
	cfg := DefaultConfig()
	cfg.Directories = dirs
	cfg.GOARCH = "amd64"
	cfg.Concurrency = 2
	return cfg
}
