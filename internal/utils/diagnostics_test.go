package utils

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	d.ShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticLevels(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticInfo)

	d.Info("parsing %s", "hello")
	d.Verbose("hidden")
	d.Debug("hidden")
	d.Warn("careful")
	d.Error("broken %d", 1)

	assert.Equal(t, "[INFO] parsing hello\n", out.String())
	assert.Equal(t, "[WARN] careful\n[ERROR] broken 1\n", errOut.String())
}

func TestDiagnosticSilent(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticSilent)

	d.Error("nothing")
	d.Header("nothing")
	d.RawError("nothing")

	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestDiagnosticStructure(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Header("generating %d packages", 2)
	d.Section("Interfaces")
	d.Indent()
	d.Item("Hello")
	d.Written("hello/hello_extern_proxy.go")
	d.Unindent()
	d.Unindent()
	d.List("done")
	d.Summary("Summary", map[string]interface{}{"stubs": 1, "proxies": 2})

	assert.Equal(t, "externgen: generating 2 packages\n"+
		"\nInterfaces:\n"+
		"  ✓ Hello\n"+
		"  ✏ hello/hello_extern_proxy.go\n"+
		"- done\n"+
		"\nSummary\n   proxies: 2\n   stubs: 1\n", out.String())
}

func TestParseDiagnosticLevel(t *testing.T) {
	for name, want := range map[string]DiagnosticLevel{
		"silent":  DiagnosticSilent,
		"error":   DiagnosticError,
		"WARN":    DiagnosticWarn,
		"":        DiagnosticInfo,
		"verbose": DiagnosticVerbose,
		"debug":   DiagnosticDebug,
	} {
		got, err := ParseDiagnosticLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseDiagnosticLevel("chatty")
	assert.Error(t, err)
}
