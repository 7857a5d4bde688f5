// Package symbols derives the link names shared by a proxy and the stubs of its
// implementation. Names depend only on the module path, the interface name and
// the method, so both sides compute them independently and agree.
package symbols

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"

	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/verifier"
)

// Version is the symbol scheme version embedded in every name
const Version = "v0"

const (
	// DestructorMethod is the method sentinel of the destructor symbol
	DestructorMethod = "drop"
	// TypeIDMethod is the method sentinel of the type identity symbol
	TypeIDMethod = "typeid"
)

// namespace seeds the name-based digest. Changing it changes every symbol.
var namespace = uuid.MustParse("4f8a3c2e-6b1d-5e7f-9a0c-2d4b6e8f1a3c")

// Digest returns the 16 hex digit digest of a symbol tuple
func Digest(kind models.SymbolKind, module, iface, method string) string {
	data := strings.Join([]string{kind.String(), module, iface, method}, "\x00")
	id := uuid.NewSHA1(namespace, []byte(data))
	return strings.ReplaceAll(id.String(), "-", "")[:16]
}

// Name returns the external link name of a symbol tuple
func Name(kind models.SymbolKind, module, iface, method string) string {
	return fmt.Sprintf("%s.__extern_%s_%s_%s_%s", module, Version, iface, method, Digest(kind, module, iface, method))
}

// Local returns the Go identifier of the linknamed function for a symbol
func Local(iface, method string) string {
	return strcase.ToLowerCamel("extern_" + iface + "_" + method)
}

// Derive builds a complete symbol
func Derive(kind models.SymbolKind, module, iface, method string) models.Symbol {
	return models.Symbol{
		Kind:      kind,
		Module:    module,
		Interface: iface,
		Method:    method,
		Name:      Name(kind, module, iface, method),
		Local:     Local(iface, method),
	}
}

// Table builds the ordered symbol table of a verified interface
func Table(v *verifier.VerifiedInterface) models.SymbolTable {
	desc := v.Description
	module := desc.ModulePath()

	table := models.SymbolTable{
		Module:    module,
		Interface: desc.Name,
		TypeID:    Derive(models.SymbolTypeID, module, desc.Name, TypeIDMethod),
	}
	for _, sig := range v.Methods {
		table.Methods = append(table.Methods, Derive(models.SymbolMethod, module, desc.Name, sig.SymbolMethod()))
	}
	for _, sig := range v.CapabilityMethods {
		table.Methods = append(table.Methods, Derive(models.SymbolCapability, module, desc.Name, sig.SymbolMethod()))
	}
	if v.Drop() {
		destructor := Derive(models.SymbolDestructor, module, desc.Name, DestructorMethod)
		table.Destructor = &destructor
	}
	return table
}

// For returns the symbol of a verified signature
func For(table *models.SymbolTable, sig verifier.VerifiedSignature) (models.Symbol, bool) {
	kind := models.SymbolMethod
	if sig.Capability != "" {
		kind = models.SymbolCapability
	}
	return table.Lookup(kind, sig.SymbolMethod())
}

// Equal reports whether two tables contain the same symbols in the same order
func Equal(a, b models.SymbolTable) bool {
	left, right := a.All(), b.All()
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

// Diff lists the symbols present in only one of the tables
func Diff(a, b models.SymbolTable) (onlyA, onlyB []models.Symbol) {
	inB := make(map[string]bool)
	for _, s := range b.All() {
		inB[s.Name] = true
	}
	inA := make(map[string]bool)
	for _, s := range a.All() {
		inA[s.Name] = true
		if !inB[s.Name] {
			onlyA = append(onlyA, s)
		}
	}
	for _, s := range b.All() {
		if !inA[s.Name] {
			onlyB = append(onlyB, s)
		}
	}
	return onlyA, onlyB
}
