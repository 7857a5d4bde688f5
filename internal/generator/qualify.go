package generator

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"go/types"
)

// qualify prefixes the unqualified named types of expr with pkg so that a type
// written in the interface's package can be used from the implementation's.
func qualify(expr, pkg string) string {
	if pkg == "" {
		return expr
	}
	fset := token.NewFileSet()
	node, err := parser.ParseExprFrom(fset, "", expr, 0)
	if err != nil {
		return expr
	}

	changed := false
	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			return false
		case *ast.Field:
			ast.Inspect(n.Type, visit)
			return false
		case *ast.Ident:
			if types.Universe.Lookup(n.Name) == nil && n.Name != "_" {
				n.Name = pkg + "." + n.Name
				changed = true
			}
		}
		return true
	}
	ast.Inspect(node, visit)
	if !changed {
		return expr
	}

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, node); err != nil {
		return expr
	}
	return buf.String()
}
