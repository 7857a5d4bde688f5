package models

import "github.com/toyz/externgen/internal/errors"

// UnknownSize marks an implementation whose layout was not computed by the front end
const UnknownSize int64 = -1

// BoundMethod is the implementation side of one interface method
type BoundMethod struct {
	Name            string
	PointerReceiver bool
	Params          int
	Results         int
}

// ImplementationBinding is the structured form of an annotated implementation type
type ImplementationBinding struct {
	TypeName       string               // concrete implementing type
	PackageName    string               // Go package name of the implementation
	ImportPath     string               // import path of the implementation package
	Interface      InterfaceDescription // interface as re-read on the implementation side
	ModuleOverride string               // must match Interface.ModuleOverride
	Methods        []BoundMethod        // one per interface method, matched by name
	HasDropHook    bool                 // the type has a Drop() method
	Size           int64                // size in bytes, UnknownSize when not computed
	Location       errors.SourceLocation
}

// FindMethod returns the bound method with the given name
func (b *ImplementationBinding) FindMethod(name string) (BoundMethod, bool) {
	for _, m := range b.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return BoundMethod{}, false
}

// SizeKnown reports whether the front end computed the implementation size
func (b *ImplementationBinding) SizeKnown() bool {
	return b.Size >= 0
}
