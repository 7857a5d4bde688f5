package parser

import (
	"go/ast"
	"go/importer"
	"go/types"

	"github.com/toyz/externgen/internal/layout"
	"github.com/toyz/externgen/internal/models"
)

// implementationInfo is what type checking learned about an implementation type
type implementationInfo struct {
	size    int64
	methods map[string]models.BoundMethod
}

// checkImplementation type checks the implementation package from source. It
// returns nil when the type cannot be found; size is UnknownSize unless the
// type's layout is fully known.
func (p *Parser) checkImplementation(files []*ast.File, importPath, typeName string) *implementationInfo {
	sizes, err := layout.Sizes(p.opts.GOARCH)
	if err != nil {
		return nil
	}

	conf := types.Config{
		Importer: importer.ForCompiler(p.reader.FileSet(), "source", nil),
		Sizes:    sizes,
		Error:    func(error) {},
	}
	pkg, _ := conf.Check(importPath, p.reader.FileSet(), files, nil)
	if pkg == nil {
		return nil
	}

	tn, ok := pkg.Scope().Lookup(typeName).(*types.TypeName)
	if !ok {
		return nil
	}

	info := &implementationInfo{
		size:    models.UnknownSize,
		methods: methodSet(tn.Type()),
	}
	if complete(tn.Type()) {
		if n, err := layout.Sizeof(tn.Type(), p.opts.GOARCH); err == nil {
			info.size = n
		}
	}
	return info
}

// methodSet includes promoted methods; PointerReceiver is set for methods
// missing from the value method set
func methodSet(t types.Type) map[string]models.BoundMethod {
	values := types.NewMethodSet(t)
	pointers := types.NewMethodSet(types.NewPointer(t))

	methods := make(map[string]models.BoundMethod, pointers.Len())
	for i := 0; i < pointers.Len(); i++ {
		sel := pointers.At(i)
		sig, ok := sel.Type().(*types.Signature)
		if !ok {
			continue
		}
		name := sel.Obj().Name()
		methods[name] = models.BoundMethod{
			Name:            name,
			PointerReceiver: values.Lookup(sel.Obj().Pkg(), name) == nil,
			Params:          sig.Params().Len(),
			Results:         sig.Results().Len(),
		}
	}
	return methods
}

// complete reports whether every component that contributes to the size of t resolved
func complete(t types.Type) bool {
	seen := make(map[types.Type]bool)
	var walk func(types.Type) bool
	walk = func(t types.Type) bool {
		if seen[t] {
			return true
		}
		seen[t] = true

		switch u := t.(type) {
		case *types.Basic:
			return u.Kind() != types.Invalid
		case *types.Alias:
			return walk(types.Unalias(u))
		case *types.Named:
			if u.TypeParams().Len() > 0 && u.TypeArgs().Len() == 0 {
				return false
			}
			return walk(u.Underlying())
		case *types.Struct:
			for i := 0; i < u.NumFields(); i++ {
				if !walk(u.Field(i).Type()) {
					return false
				}
			}
		case *types.Array:
			return walk(u.Elem())
		case *types.TypeParam:
			return false
		}
		return true
	}
	return walk(t)
}
