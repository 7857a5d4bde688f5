// Package annotations parses the //extern:: comment directives that mark
// extern interfaces and their implementations.
package annotations

import (
	"strings"

	"github.com/toyz/externgen/internal/errors"
)

// Prefix starts every annotation comment
const Prefix = "//extern::"

// AnnotationType represents the different kinds of annotations
type AnnotationType string

const (
	// InterfaceAnnotation marks an interface as an extern interface
	InterfaceAnnotation AnnotationType = "interface"
	// ImplAnnotation marks a type as the implementation of an extern interface
	ImplAnnotation AnnotationType = "impl"
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	return string(a)
}

// ParsedAnnotation is one annotation after schema validation
type ParsedAnnotation struct {
	Type       AnnotationType
	Parameters map[string]string
	Location   errors.SourceLocation
	Raw        string
}

// Get returns a parameter value
func (p *ParsedAnnotation) Get(name string) (string, bool) {
	v, ok := p.Parameters[name]
	return v, ok
}

// InterfaceOptions are the parameters of an interface annotation
type InterfaceOptions struct {
	Proxy  string // proxy type name, empty for the default
	Module string // module path override for symbol derivation
}

// ImplOptions are the parameters of an impl annotation
type ImplOptions struct {
	InterfaceImport string // import path of the interface package
	InterfaceName   string // interface name
	Module          string // module path override, must match the interface's
}

// InterfaceOptions returns the typed parameters of an interface annotation
func (p *ParsedAnnotation) InterfaceOptions() InterfaceOptions {
	return InterfaceOptions{
		Proxy:  p.Parameters[ParamProxy],
		Module: p.Parameters[ParamModule],
	}
}

// ImplOptions returns the typed parameters of an impl annotation
func (p *ParsedAnnotation) ImplOptions() ImplOptions {
	importPath, name := splitQualified(p.Parameters[ParamInterface])
	return ImplOptions{
		InterfaceImport: importPath,
		InterfaceName:   name,
		Module:          p.Parameters[ParamModule],
	}
}

// IsAnnotation reports whether a comment line is an extern annotation
func IsAnnotation(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), Prefix)
}

// splitQualified splits "import/path.Name" at the last dot
func splitQualified(s string) (importPath, name string) {
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}
