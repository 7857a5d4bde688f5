package models

import (
	"go/token"

	"github.com/toyz/externgen/internal/errors"
)

// CapabilityRequest is one requested supertrait capability as written
type CapabilityRequest struct {
	Token    string   // full token, e.g. "AsRef[string]"
	Name     string   // capability name, e.g. "AsRef"
	Args     []string // type arguments, e.g. ["string"]
	Location errors.SourceLocation
}

// Import is one import of the file declaring an interface
type Import struct {
	Name string // explicit import name, empty for the default
	Path string
}

// InterfaceDescription is the structured form of an annotated interface declaration
type InterfaceDescription struct {
	Name            string              // interface name
	PackageName     string              // Go package name of the declaration
	ImportPath      string              // import path of the declaring package
	Methods         []MethodSignature   // methods in declaration order
	Capabilities    []CapabilityRequest // requested capabilities in declaration order
	ProxyName       string              // optional proxy type name
	ModuleOverride  string              // optional module path used for symbol derivation
	TypeParams      string              // raw type parameter list; must be empty
	AssociatedItems []string            // non-method interface elements; must be empty
	Imports         []Import            // imports of the declaring file
	Doc             string
	Location        errors.SourceLocation
}

// Proxy returns the proxy type name, defaulting to <Name>Proxy
func (d *InterfaceDescription) Proxy() string {
	if d.ProxyName != "" {
		return d.ProxyName
	}
	return d.Name + "Proxy"
}

// ModulePath returns the module path used for symbol derivation
func (d *InterfaceDescription) ModulePath() string {
	if d.ModuleOverride != "" {
		return d.ModuleOverride
	}
	return d.ImportPath
}

// IsExported reports whether the proxy is visible outside its package
func (d *InterfaceDescription) IsExported() bool {
	return token.IsExported(d.Proxy())
}

// FindMethod returns the method with the given name
func (d *InterfaceDescription) FindMethod(name string) (MethodSignature, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSignature{}, false
}

