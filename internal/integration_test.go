package internal

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/externgen/internal/cli"
	"github.com/toyz/externgen/internal/generator"
	"github.com/toyz/externgen/internal/parser"
	"github.com/toyz/externgen/internal/utils"
)

const apiSource = `package api

import "github.com/toyz/externgen/pkg/extern"

//extern::interface
type Hello interface {
	extern.Send
	New(num int) extern.Self
	Hello(this extern.Ref[extern.Self])
	Set(this *extern.Self, num int)
	Into(this extern.Self) int
}
`

const implSource = `package impl

//extern::impl -Interface=example.com/linked/api.Hello
type HelloImpl struct {
	num int
}

func (HelloImpl) New(num int) HelloImpl { return HelloImpl{num: num} }
func (h HelloImpl) Hello()               {}
func (h *HelloImpl) Set(num int)         { h.num = num }
func (h HelloImpl) Into() int            { return h.num }
func (*HelloImpl) ExternSend()           {}
`

var linkname = regexp.MustCompile(`(?m)^//go:linkname (\w+) (\S+)$`)

// linknames returns local to symbol pairs declared in content
func linknames(content string) map[string]string {
	names := make(map[string]string)
	for _, m := range linkname.FindAllStringSubmatch(content, -1) {
		names[m[1]] = m[2]
	}
	return names
}

func writeModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod":       "module example.com/linked\n\ngo 1.25\n",
		"api/api.go":   apiSource,
		"impl/impl.go": implSource,
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// TestIndependentExpansionsAgree expands the interface and the implementation
// with separate parsers and generators, as two unrelated builds would.
func TestIndependentExpansionsAgree(t *testing.T) {
	root := writeModule(t)

	proxyGen := generator.NewGenerator()
	apiMeta, err := parser.NewParser(parser.Options{GOARCH: "amd64", IsGenerated: proxyGen.IsGenerated}).
		ParseDirectory(filepath.Join(root, "api"))
	require.NoError(t, err)
	require.Len(t, apiMeta.Interfaces, 1)
	proxyFiles, err := proxyGen.GenerateInterface(apiMeta.Interfaces[0], filepath.Join(root, "api"))
	require.NoError(t, err)

	stubGen := generator.NewGenerator()
	implMeta, err := parser.NewParser(parser.Options{GOARCH: "amd64", IsGenerated: stubGen.IsGenerated}).
		ParseDirectory(filepath.Join(root, "impl"))
	require.NoError(t, err)
	require.Len(t, implMeta.Implementations, 1)
	stubFiles, err := stubGen.GenerateImplementation(implMeta.Implementations[0], filepath.Join(root, "impl"))
	require.NoError(t, err)

	pulled := linknames(proxyFiles[0].Content)
	pushed := linknames(stubFiles[0].Content)
	assert.Len(t, pulled, 6, "four methods, the destructor and the type identity")
	assert.Equal(t, pulled, pushed)

	table, err := generator.Symbols(apiMeta.Interfaces[0])
	require.NoError(t, err)
	for _, s := range table.All() {
		assert.Equal(t, s.Name, pulled[s.Local], s.Local)
	}

	derived, err := cli.DeriveSymbols(cli.SymbolRequest{
		Module:    "example.com/linked/api",
		Interface: "Hello",
		Methods:   []string{"New", "Hello", "Set", "Into"},
	})
	require.NoError(t, err)
	assert.Equal(t, table.All(), derived.All())
}

func TestHelloExampleIsUpToDate(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("..", "examples", "hello"))
	require.NoError(t, err)

	cfg := cli.DefaultConfig()
	cfg.Directories = []string{dir}
	cfg.GOARCH = "amd64"
	cfg.Check = true

	d := utils.NewQuietDiagnostics()
	summary, err := cli.NewGenerator(cfg, d).Run(t.Context())
	require.NoError(t, err, "regenerate examples/hello with `externgen generate`")

	assert.Equal(t, 1, summary.Interfaces)
	assert.Equal(t, 1, summary.Implementations)
	assert.Equal(t, 4, summary.Symbols)
	assert.Empty(t, summary.StaleFiles)

	var names []string
	for _, f := range summary.UnchangedFiles {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"api/hello_extern_proxy.go",
		"api/hello_extern_proxy.s",
		"impl/hello_impl_extern_stub.go",
	}, names)
}

func TestHelloExampleRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the example module")
	}
	goTool, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not found")
	}
	dir, err := filepath.Abs(filepath.Join("..", "examples", "hello"))
	require.NoError(t, err)

	bin := filepath.Join(t.TempDir(), "hello")
	build := exec.CommandContext(t.Context(), goTool, "build", "-o", bin, ".")
	build.Dir = dir
	build.Env = append(os.Environ(), "GOWORK=off")
	out, err := build.CombinedOutput()
	require.NoError(t, err, string(out))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default", want: "hello from 42\nhello from 42\ngoodbye from 42\n"},
		{name: "zero value", args: []string{"0"}, want: "hello from 0\nhello from 0\ngoodbye from 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := exec.CommandContext(t.Context(), bin, tt.args...).CombinedOutput()
			require.NoError(t, err, string(out))
			assert.Equal(t, tt.want, string(out))
			assert.Equal(t, 1, strings.Count(string(out), "goodbye"))
		})
	}
}
