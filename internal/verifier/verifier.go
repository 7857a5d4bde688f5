// Package verifier checks that interface descriptions and implementation
// bindings are representable across a package boundary before any code is
// generated for them.
package verifier

import (
	"fmt"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/layout"
	"github.com/toyz/externgen/internal/models"
)

// VerifiedParam is a parameter classified by its self kind
type VerifiedParam struct {
	Name string
	Type string
	Self models.SelfKind
}

// VerifiedResult is a result classified by its self kind
type VerifiedResult struct {
	Type string
	Self models.SelfKind
}

// VerifiedSignature is a method that passed verification
type VerifiedSignature struct {
	Method     models.MethodSignature
	Capability string // owning capability, empty for interface methods
	Receiver   models.SelfKind
	Params     []VerifiedParam
	Results    []VerifiedResult
}

// SymbolMethod returns the method component used for symbol derivation
func (s VerifiedSignature) SymbolMethod() string {
	if s.Capability != "" {
		return s.Capability + "_" + s.Method.Name
	}
	return s.Method.Name
}

// IsStatic reports whether the signature has no receiver
func (s VerifiedSignature) IsStatic() bool {
	return s.Receiver == models.SelfNone
}

// VerifiedInterface is an interface description that passed verification
type VerifiedInterface struct {
	Description       *models.InterfaceDescription
	Methods           []VerifiedSignature
	Capabilities      []models.Capability
	CapabilityMethods []VerifiedSignature
}

// Drop reports whether the proxy has drop semantics
func (v *VerifiedInterface) Drop() bool {
	for _, c := range v.Capabilities {
		if c.DisablesDrop() {
			return false
		}
	}
	return true
}

// AllMethods returns interface methods followed by capability methods
func (v *VerifiedInterface) AllMethods() []VerifiedSignature {
	all := make([]VerifiedSignature, 0, len(v.Methods)+len(v.CapabilityMethods))
	all = append(all, v.Methods...)
	return append(all, v.CapabilityMethods...)
}

// Markers returns the marker capabilities in request order
func (v *VerifiedInterface) Markers() []models.Capability {
	var markers []models.Capability
	for _, c := range v.Capabilities {
		if c.Kind == models.CapabilityMarker {
			markers = append(markers, c)
		}
	}
	return markers
}

// VerifyInterface validates a whole interface description. Every independent
// failure is collected; when any is found no VerifiedInterface is returned.
func VerifyInterface(desc *models.InterfaceDescription) (*VerifiedInterface, error) {
	errs := errors.NewMultipleErrors()

	if desc.TypeParams != "" {
		errs.Add(errors.NewGenericsNotAllowed(desc.Name, "", desc.TypeParams).WithLocation(desc.Location))
	}

	capabilities, err := ResolveCapabilities(desc)
	if err != nil {
		errs.Add(err)
	}

	verified := &VerifiedInterface{Description: desc, Capabilities: capabilities}
	for _, m := range desc.Methods {
		sig, err := VerifySignature(desc.Name, m)
		if err != nil {
			errs.Add(err)
			continue
		}
		verified.Methods = append(verified.Methods, sig)
	}

	for _, item := range desc.AssociatedItems {
		errs.Add(errors.NewDisallowedAssociatedItem(desc.Name, item).WithLocation(desc.Location))
	}

	reserved := reservedNames(capabilities)
	declared := make(map[string]bool, len(desc.Methods))
	for _, m := range desc.Methods {
		if declared[m.Name] {
			errs.Add(errors.NewDuplicateMethod(desc.Name, m.Name).WithLocation(m.Location))
			continue
		}
		declared[m.Name] = true
		if owner, ok := reserved[m.Name]; ok {
			errs.Add(errors.NewReservedName(desc.Name, m.Name, owner).WithLocation(m.Location))
		}
	}

	for _, c := range capabilities {
		for _, m := range c.Methods {
			sig, err := VerifySignature(desc.Name, m)
			if err != nil {
				errs.Add(err)
				continue
			}
			sig.Capability = c.Name
			verified.CapabilityMethods = append(verified.CapabilityMethods, sig)
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return verified, nil
}

// VerifySignature validates one method of the interface item
func VerifySignature(item string, m models.MethodSignature) (VerifiedSignature, error) {
	errs := errors.NewMultipleErrors()
	add := func(err *errors.VerificationError) {
		errs.Add(err.WithLocation(m.Location))
	}

	if m.HasTypeOrConstGenerics {
		add(errors.NewGenericsNotAllowed(item, m.Name, m.TypeParams))
	}
	if m.IsConst {
		add(errors.NewNonFFISignature(item, m.Name, "const"))
	}
	if m.IsAsync {
		add(errors.NewNonFFISignature(item, m.Name, "async"))
	}
	if m.IsVariadic {
		add(errors.NewNonFFISignature(item, m.Name, "variadic"))
	}

	sig := VerifiedSignature{Method: m}

	if m.Receiver != "" {
		kind, ok, err := ClassifySelf(m.Receiver)
		switch {
		case err != nil:
			add(errors.NewInvalidType(item, m.Name, m.Receiver, err))
		case !ok || !kind.IsSelf():
			add(errors.NewInvalidSelfKind(item, m.Name, "receiver", m.Receiver))
		default:
			sig.Receiver = kind
		}
	}

	for i, p := range m.Params {
		kind, ok, err := ClassifySelf(p.Type)
		switch {
		case err != nil:
			add(errors.NewInvalidType(item, m.Name, p.Type, err))
		case !ok:
			add(errors.NewInvalidSelfKind(item, m.Name, paramPosition(i, p), p.Type))
		default:
			sig.Params = append(sig.Params, VerifiedParam{Name: p.Name, Type: p.Type, Self: kind})
		}
	}

	for i, r := range m.Results {
		kind, ok, err := ClassifySelf(r)
		switch {
		case err != nil:
			add(errors.NewInvalidType(item, m.Name, r, err))
		case !ok:
			add(errors.NewInvalidSelfKind(item, m.Name, fmt.Sprintf("result %d", i), r))
		default:
			sig.Results = append(sig.Results, VerifiedResult{Type: r, Self: kind})
		}
	}

	if !sig.borrowsSelf() {
		for _, r := range sig.Results {
			if r.Self.IsIndirect() {
				add(errors.NewUnborrowedSelfResult(item, m.Name, r.Type))
			}
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return VerifiedSignature{}, err
	}
	return sig, nil
}

// borrowsSelf reports whether the receiver or a parameter is an indirect Self
func (s VerifiedSignature) borrowsSelf() bool {
	if s.Receiver.IsIndirect() {
		return true
	}
	for _, p := range s.Params {
		if p.Self.IsIndirect() {
			return true
		}
	}
	return false
}

func paramPosition(i int, p models.Param) string {
	if p.Name != "" {
		return fmt.Sprintf("parameter %s", p.Name)
	}
	return fmt.Sprintf("parameter %d", i)
}

// VerifiedBinding is an implementation binding that passed verification
type VerifiedBinding struct {
	Binding   *models.ImplementationBinding
	Interface *VerifiedInterface
}

// VerifyBinding re-verifies the interface as seen from the implementation side,
// then checks that the implementation provides every method and fits the
// representation budget of goarch.
func VerifyBinding(b *models.ImplementationBinding, goarch string) (*VerifiedBinding, error) {
	iface, err := VerifyInterface(&b.Interface)
	if err != nil {
		return nil, err
	}

	errs := errors.NewMultipleErrors()
	add := func(err *errors.VerificationError) {
		errs.Add(err.WithLocation(b.Location))
	}

	if b.ModuleOverride != b.Interface.ModuleOverride {
		add(errors.NewBindingMismatch(b.TypeName, "",
			fmt.Sprintf("module override %q does not match the interface's %q", b.ModuleOverride, b.Interface.ModuleOverride)))
	}

	if b.ImportPath != "" && b.ImportPath == b.Interface.ImportPath {
		add(errors.NewBindingMismatch(b.TypeName, "",
			fmt.Sprintf("implementation must live outside %s, the package declaring %s", b.ImportPath, b.Interface.Name)))
	}

	for _, sig := range iface.AllMethods() {
		bound, ok := b.FindMethod(sig.Method.Name)
		if !ok {
			add(errors.NewBindingMismatch(b.TypeName, sig.Method.Name,
				fmt.Sprintf("missing method %s required by %s", sig.Method.Name, b.Interface.Name)))
			continue
		}
		if bound.Params != len(sig.Params) || bound.Results != len(sig.Results) {
			add(errors.NewBindingMismatch(b.TypeName, sig.Method.Name,
				fmt.Sprintf("method %s has %d parameter(s) and %d result(s), %s declares %d and %d",
					sig.Method.Name, bound.Params, bound.Results, b.Interface.Name, len(sig.Params), len(sig.Results))))
		}
	}

	if err := layout.CheckSize(b, goarch); err != nil {
		errs.Add(err)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return &VerifiedBinding{Binding: b, Interface: iface}, nil
}
