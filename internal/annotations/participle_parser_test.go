package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/externgen/internal/errors"
)

func TestParseInterfaceAnnotation(t *testing.T) {
	parser := NewParticipleParser()

	tests := []struct {
		name    string
		comment string
		want    InterfaceOptions
	}{
		{"bare", "//extern::interface", InterfaceOptions{}},
		{"proxy", "//extern::interface -Proxy=Greeter", InterfaceOptions{Proxy: "Greeter"}},
		{"module", "//extern::interface -Module=example.com/hello/v1", InterfaceOptions{Module: "example.com/hello/v1"}},
		{"quoted", `//extern::interface -Module="example.com/hello" -Proxy=Greeter`, InterfaceOptions{Proxy: "Greeter", Module: "example.com/hello"}},
		{"indented", "   //extern::interface  -Proxy=P  ", InterfaceOptions{Proxy: "P"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.ParseAnnotation(tt.comment, errors.SourceLocation{File: "hello.go", Line: 3, Column: 1})
			require.NoError(t, err)
			assert.Equal(t, InterfaceAnnotation, parsed.Type)
			assert.Equal(t, tt.want, parsed.InterfaceOptions())
		})
	}
}

func TestParseImplAnnotation(t *testing.T) {
	parser := NewParticipleParser()

	parsed, err := parser.ParseAnnotation("//extern::impl -Interface=example.com/hello.Hello -Module=example.com/stable", errors.SourceLocation{})
	require.NoError(t, err)
	assert.Equal(t, ImplAnnotation, parsed.Type)
	assert.Equal(t, ImplOptions{
		InterfaceImport: "example.com/hello",
		InterfaceName:   "Hello",
		Module:          "example.com/stable",
	}, parsed.ImplOptions())

	v, ok := parsed.Get(ParamInterface)
	assert.True(t, ok)
	assert.Equal(t, "example.com/hello.Hello", v)
}

func TestParseAnnotationErrors(t *testing.T) {
	parser := NewParticipleParser()

	tests := []struct {
		name    string
		comment string
		msg     string
	}{
		{"not an annotation", "// just a comment", "annotation must start with"},
		{"unknown type", "//extern::trait", `unknown annotation type "trait"`},
		{"unknown parameter", "//extern::interface -Name=X", "unknown parameter -Name"},
		{"missing value", "//extern::interface -Proxy", "parameter -Proxy requires a value"},
		{"duplicate", "//extern::interface -Proxy=A -Proxy=B", "given more than once"},
		{"bad identifier", "//extern::interface -Proxy=1abc", "invalid -Proxy"},
		{"bad module", "//extern::interface -Module=/abs", "invalid -Module"},
		{"missing interface", "//extern::impl", "impl annotation requires -Interface"},
		{"unqualified interface", "//extern::impl -Interface=Hello", "must be of the form import/path.Name"},
		{"unexported interface", "//extern::impl -Interface=example.com/hello.hello", "not an exported interface name"},
		{"garbage", "//extern::interface Proxy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAnnotation(tt.comment, errors.SourceLocation{File: "hello.go", Line: 7, Column: 1})
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.SyntaxErrorCode)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), "hello.go:7:")
		})
	}
}

func TestParameterColumn(t *testing.T) {
	parser := NewParticipleParser()

	_, err := parser.ParseAnnotation("//extern::interface -Bogus=1", errors.SourceLocation{File: "hello.go", Line: 2, Column: 1})
	require.Error(t, err)

	var extern errors.ExternError
	require.ErrorAs(t, err, &extern)
	assert.Equal(t, 21, extern.Location().Column)
}

func TestIsAnnotation(t *testing.T) {
	assert.True(t, IsAnnotation("//extern::interface"))
	assert.True(t, IsAnnotation("  //extern::impl -Interface=a.B"))
	assert.False(t, IsAnnotation("// extern::interface"))
	assert.False(t, IsAnnotation("//other::core"))
}

func TestSchemas(t *testing.T) {
	for kind, schema := range Schemas() {
		assert.Equal(t, kind, schema.Type)
		assert.NotEmpty(t, schema.Examples)

		parser := NewParticipleParser()
		for _, example := range schema.Examples {
			_, err := parser.ParseAnnotation(example, errors.SourceLocation{})
			assert.NoError(t, err, example)
		}
	}
}
