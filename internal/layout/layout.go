// Package layout answers size questions about implementation types on the
// generation side and renders the compile-time size assertion used by stubs.
package layout

import (
	"fmt"
	"go/types"
	"runtime"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
)

// ReprWords is the number of machine words in an extern.Repr
const ReprWords = 2

// Compiler is the compiler whose layout rules are used for size computations
const Compiler = "gc"

// Sizes returns the layout rules for goarch. An empty goarch selects the host.
func Sizes(goarch string) (types.Sizes, error) {
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	sizes := types.SizesFor(Compiler, goarch)
	if sizes == nil {
		return nil, errors.Newf(errors.ConfigurationErrorCode, "unsupported GOARCH %q", goarch).
			WithSuggestion("Run `go tool dist list` for the supported targets")
	}
	return sizes, nil
}

// WordSize returns the machine word size of goarch in bytes
func WordSize(goarch string) (int64, error) {
	sizes, err := Sizes(goarch)
	if err != nil {
		return 0, err
	}
	return sizes.Sizeof(types.Typ[types.UnsafePointer]), nil
}

// ReprSize returns the implementation storage budget of goarch in bytes
func ReprSize(goarch string) (int64, error) {
	word, err := WordSize(goarch)
	if err != nil {
		return 0, err
	}
	return ReprWords * word, nil
}

// Sizeof computes the size of t on goarch
func Sizeof(t types.Type, goarch string) (int64, error) {
	sizes, err := Sizes(goarch)
	if err != nil {
		return 0, err
	}
	return sizes.Sizeof(t), nil
}

// Fits reports whether t can be stored in an extern.Repr on goarch
func Fits(t types.Type, goarch string) (bool, error) {
	sizes, err := Sizes(goarch)
	if err != nil {
		return false, err
	}
	word := sizes.Sizeof(types.Typ[types.UnsafePointer])
	return sizes.Sizeof(t) <= ReprWords*word && sizes.Alignof(t) <= word, nil
}

// CheckSize reports SizeOverflow when the binding's computed size exceeds the
// budget of goarch. Bindings of unknown size pass; the emitted assertion catches
// them at compile time.
func CheckSize(b *models.ImplementationBinding, goarch string) error {
	if !b.SizeKnown() {
		return nil
	}
	limit, err := ReprSize(goarch)
	if err != nil {
		return err
	}
	if b.Size > limit {
		return errors.NewSizeOverflow(b.TypeName, b.Size, limit).WithLocation(b.Location)
	}
	return nil
}

// Assertion renders a constant declaration that fails to compile (constant
// overflow) when typeExpr is larger than extern.Repr. externAlias is the import
// name of the runtime package in the generated file.
func Assertion(externAlias, typeExpr string) string {
	return fmt.Sprintf("// %s must fit in %s.Repr: this constant overflows when it is too large.\n"+
		"const _ = %s.ReprSize - unsafe.Sizeof(*new(%s))\n",
		typeExpr, externAlias, externAlias, typeExpr)
}
