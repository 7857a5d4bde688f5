package verifier

import (
	"fmt"
	"go/ast"
	"go/parser"

	"github.com/toyz/externgen/internal/models"
)

// pointer marker names accepted around Self
var pointerMarkers = map[string]models.SelfKind{
	"Ref":      models.SelfByRef,
	"ConstPtr": models.SelfConstPointer,
	"MutPtr":   models.SelfMutPointer,
}

// ParseType parses a model type expression, rejecting expressions that are not types
func ParseType(expr string) (ast.Expr, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	if !isTypeExpr(node) {
		return nil, fmt.Errorf("%q is not a type expression", expr)
	}
	return node, nil
}

// ClassifySelf reduces a type expression to its self kind. ok is false when Self
// occurs in a form other than the five permitted ones. err is set when the
// expression is not a valid type.
func ClassifySelf(expr string) (kind models.SelfKind, ok bool, err error) {
	node, err := ParseType(expr)
	if err != nil {
		return models.SelfNone, false, err
	}
	if kind, matched := selfForm(node); matched {
		return kind, true, nil
	}
	if mentionsSelf(node) {
		return models.SelfNone, false, nil
	}
	if name, misused := markerWithoutSelf(node); misused {
		return models.SelfNone, false, fmt.Errorf("%s may only wrap Self", name)
	}
	return models.SelfNone, true, nil
}

func selfForm(node ast.Expr) (models.SelfKind, bool) {
	switch n := unparen(node).(type) {
	case *ast.Ident:
		if n.Name == models.SelfIdent {
			return models.SelfByValue, true
		}
	case *ast.StarExpr:
		if isSelf(n.X) {
			return models.SelfByMutRef, true
		}
	case *ast.IndexExpr:
		if marker, ok := unparen(n.X).(*ast.Ident); ok {
			if kind, known := pointerMarkers[marker.Name]; known && isSelf(n.Index) {
				return kind, true
			}
		}
	}
	return models.SelfNone, false
}

func isSelf(node ast.Expr) bool {
	ident, ok := unparen(node).(*ast.Ident)
	return ok && ident.Name == models.SelfIdent
}

func unparen(node ast.Expr) ast.Expr {
	for {
		p, ok := node.(*ast.ParenExpr)
		if !ok {
			return node
		}
		node = p.X
	}
}

// mentionsSelf walks type positions only: field names and selector names are skipped.
func mentionsSelf(node ast.Node) bool {
	found := false
	ast.Inspect(node, func(n ast.Node) bool {
		if found {
			return false
		}
		switch n := n.(type) {
		case *ast.Ident:
			found = n.Name == models.SelfIdent
		case *ast.SelectorExpr:
			found = mentionsSelf(n.X)
			return false
		case *ast.Field:
			found = mentionsSelf(n.Type)
			return false
		}
		return true
	})
	return found
}

func markerWithoutSelf(node ast.Node) (string, bool) {
	var name string
	ast.Inspect(node, func(n ast.Node) bool {
		if name != "" {
			return false
		}
		if idx, ok := n.(*ast.IndexExpr); ok {
			if marker, ok := unparen(idx.X).(*ast.Ident); ok {
				if _, known := pointerMarkers[marker.Name]; known {
					name = marker.Name
				}
			}
		}
		return true
	})
	return name, name != ""
}

func isTypeExpr(node ast.Expr) bool {
	switch n := node.(type) {
	case *ast.Ident, *ast.ArrayType, *ast.MapType, *ast.ChanType,
		*ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	case *ast.SelectorExpr:
		_, ok := n.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(n.X)
	case *ast.ParenExpr:
		return isTypeExpr(n.X)
	case *ast.IndexExpr:
		return isTypeExpr(n.X) && isTypeExpr(n.Index)
	case *ast.IndexListExpr:
		if !isTypeExpr(n.X) {
			return false
		}
		for _, idx := range n.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	}
	return false
}
