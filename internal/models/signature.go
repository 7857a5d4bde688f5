package models

import "github.com/toyz/externgen/internal/errors"

// SelfIdent is the placeholder for the implementing type in model type expressions.
const SelfIdent = "Self"

// SelfKind classifies how the implementing type appears in a signature position
type SelfKind int

const (
	SelfNone SelfKind = iota // static method, or a position that does not mention Self
	SelfByValue
	SelfByRef
	SelfByMutRef
	SelfConstPointer
	SelfMutPointer
)

// String returns the string representation of the self kind
func (k SelfKind) String() string {
	switch k {
	case SelfByValue:
		return "value"
	case SelfByRef:
		return "ref"
	case SelfByMutRef:
		return "mut_ref"
	case SelfConstPointer:
		return "const_ptr"
	case SelfMutPointer:
		return "mut_ptr"
	default:
		return "none"
	}
}

// TypeExpr returns the model syntax of the kind
func (k SelfKind) TypeExpr() string {
	switch k {
	case SelfByValue:
		return SelfIdent
	case SelfByRef:
		return "Ref[" + SelfIdent + "]"
	case SelfByMutRef:
		return "*" + SelfIdent
	case SelfConstPointer:
		return "ConstPtr[" + SelfIdent + "]"
	case SelfMutPointer:
		return "MutPtr[" + SelfIdent + "]"
	default:
		return ""
	}
}

// IsSelf reports whether the kind denotes an occurrence of the implementing type
func (k SelfKind) IsSelf() bool {
	return k != SelfNone
}

// IsIndirect reports whether the implementing type is reached through a pointer
func (k SelfKind) IsIndirect() bool {
	return k >= SelfByRef && k <= SelfMutPointer
}

// SelfKinds lists the five permitted non-static forms
func SelfKinds() []SelfKind {
	return []SelfKind{SelfByValue, SelfByRef, SelfByMutRef, SelfConstPointer, SelfMutPointer}
}

// Param represents one named method parameter
type Param struct {
	Name string // parameter name, may be empty
	Type string // Go type expression in model syntax
}

// MethodSignature describes one method of an interface description.
//
// Receiver holds the type expression of the receiver ("" for a static method).
// Params excludes the receiver.
type MethodSignature struct {
	Name     string
	Receiver string
	Params   []Param
	Results  []string
	Doc      string

	IsConst                bool
	IsAsync                bool
	IsVariadic             bool
	IsUnsafe               bool
	HasTypeOrConstGenerics bool
	TypeParams             string // raw type parameter list when HasTypeOrConstGenerics is set

	Location errors.SourceLocation
}

// IsStatic reports whether the method has no receiver
func (m MethodSignature) IsStatic() bool {
	return m.Receiver == ""
}
