package cli

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/utils"
)

func generatedFiles(root string) []string {
	return []string{
		filepath.Join(root, "greet", "greeter_extern_proxy.go"),
		filepath.Join(root, "greet", "greeter_extern_proxy.s"),
		filepath.Join(root, "impl", "greeter_impl_extern_stub.go"),
	}
}

func TestGenerator_Run(t *testing.T) {
	root := greeterModule(t, nil)
	d, out, _ := captureDiagnostics(utils.DiagnosticVerbose)

	summary, err := NewGenerator(testConfig(root+"/..."), d).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PackagesScanned)
	assert.Equal(t, 2, summary.PackagesAnnotated)
	assert.Equal(t, 1, summary.Interfaces)
	assert.Equal(t, 1, summary.Implementations)
	assert.Equal(t, 4, summary.Symbols, "New, Greet, drop and typeid")
	assert.Equal(t, generatedFiles(root), summary.GeneratedFiles)
	assert.Empty(t, summary.UnchangedFiles)

	proxy, err := os.ReadFile(generatedFiles(root)[0])
	require.NoError(t, err)
	assert.Contains(t, string(proxy), "type GreeterProxy struct")
	assert.Contains(t, string(proxy), "//go:linkname")

	stub, err := os.ReadFile(generatedFiles(root)[2])
	require.NoError(t, err)
	assert.Contains(t, string(stub), "package impl")

	assert.Contains(t, out.String(), "Module example.com/app")
	assert.Contains(t, out.String(), "example.com/app/greet: 1 interfaces, 0 implementations")

	t.Run("second run leaves files untouched", func(t *testing.T) {
		summary, err := NewGenerator(testConfig(root), d).Run(context.Background())
		require.NoError(t, err)
		assert.Empty(t, summary.GeneratedFiles)
		assert.Equal(t, generatedFiles(root), summary.UnchangedFiles)
	})

	t.Run("check passes on fresh output", func(t *testing.T) {
		cfg := testConfig(root)
		cfg.Check = true
		summary, err := NewGenerator(cfg, d).Run(context.Background())
		require.NoError(t, err)
		assert.Empty(t, summary.StaleFiles)
	})
}

func TestGenerator_CheckReportsStaleFiles(t *testing.T) {
	root := greeterModule(t, map[string]string{
		"greet/greeter_extern_proxy.go": "package greet\n",
		"greet/gone_extern_proxy.go":    "package greet\n",
	})
	d, _, _ := captureDiagnostics(utils.DiagnosticSilent)

	cfg := testConfig(root)
	cfg.Check = true
	summary, err := NewGenerator(cfg, d).Run(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.GenerationErrorCode))
	assert.Contains(t, err.Error(), "4 generated files are out of date")

	assert.Equal(t, []string{
		filepath.Join(root, "greet", "gone_extern_proxy.go"),
		filepath.Join(root, "greet", "greeter_extern_proxy.go"),
		filepath.Join(root, "greet", "greeter_extern_proxy.s"),
		filepath.Join(root, "impl", "greeter_impl_extern_stub.go"),
	}, summary.StaleFiles)
	assert.Empty(t, summary.GeneratedFiles)

	content, err := os.ReadFile(filepath.Join(root, "greet", "greeter_extern_proxy.go"))
	require.NoError(t, err)
	assert.Equal(t, "package greet\n", string(content), "check mode writes nothing")
}

func TestGenerator_DebugReportsParsedFiles(t *testing.T) {
	root := greeterModule(t, nil)
	d, out, _ := captureDiagnostics(utils.DiagnosticDebug)

	_, err := NewGenerator(testConfig(root+"/..."), d).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "greet: parsed 1 files")
	assert.Contains(t, out.String(), "impl: parsed ")
}

func TestGenerator_RemovesOrphanedOutput(t *testing.T) {
	root := greeterModule(t, map[string]string{
		"greet/farewell_extern_proxy.go": "package greet\n",
		"greet/farewell_extern_proxy.s":  "",
	})
	d, _, _ := captureDiagnostics(utils.DiagnosticSilent)

	summary, err := NewGenerator(testConfig(root), d).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "greet", "farewell_extern_proxy.go"),
		filepath.Join(root, "greet", "farewell_extern_proxy.s"),
	}, summary.RemovedFiles)

	_, err = os.Stat(filepath.Join(root, "greet", "farewell_extern_proxy.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerator_FailingPackageIsIsolated(t *testing.T) {
	root := greeterModule(t, map[string]string{
		"bad/bad.go": `package bad

import "github.com/toyz/externgen/pkg/extern"

//extern::interface
type Logger interface {
	Log(this extern.Ref[extern.Self], args ...string)
}
`,
		"bad/logger_extern_proxy.go": "package bad\n",
	})
	d, _, _ := captureDiagnostics(utils.DiagnosticSilent)

	summary, err := NewGenerator(testConfig(root), d).Run(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.NonFFISignatureCode), "got %v", err)
	assert.Equal(t, generatedFiles(root), summary.GeneratedFiles)

	content, err := os.ReadFile(filepath.Join(root, "bad", "logger_extern_proxy.go"))
	require.NoError(t, err)
	assert.Equal(t, "package bad\n", string(content), "a failing package keeps its previous output")
}

func TestGenerator_FileNameCollision(t *testing.T) {
	root := greeterModule(t, map[string]string{
		"twin/twin.go": `package twin

//extern::interface
type HTTPClient interface {
	Get() string
}

//extern::interface
type HttpClient interface {
	Get() string
}
`,
	})
	d, _, _ := captureDiagnostics(utils.DiagnosticSilent)

	_, err := NewGenerator(testConfig(filepath.Join(root, "twin")), d).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate http_client_extern_proxy.go")
}

func TestGenerator_NoPackages(t *testing.T) {
	root := writeTree(t, map[string]string{"go.mod": "module example.com/empty\n", "README": "docs\n"})
	d, _, _ := captureDiagnostics(utils.DiagnosticSilent)

	_, err := NewGenerator(testConfig(root), d).Run(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ConfigurationErrorCode))
	assert.Contains(t, err.Error(), "no Go packages found")
}

func TestGenerator_CanceledContext(t *testing.T) {
	root := greeterModule(t, nil)
	d, _, _ := captureDiagnostics(utils.DiagnosticSilent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator(testConfig(root), d).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(generatedFiles(root)[0])
	assert.True(t, os.IsNotExist(statErr))
}
