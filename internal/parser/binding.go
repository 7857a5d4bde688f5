package parser

import (
	"fmt"
	"go/ast"
	"sort"

	"github.com/toyz/externgen/internal/annotations"
	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
)

func (p *Parser) bindImplementation(a Annotated, files []*ast.File, packageName, importPath, dir string) (*models.ImplementationBinding, error) {
	typeName := a.Spec.Name.Name
	loc := p.reader.Location(a.Spec.Pos())

	if _, isInterface := a.Spec.Type.(*ast.InterfaceType); isInterface {
		return nil, errors.Newf(errors.SyntaxErrorCode, "%s annotation must be placed on a concrete type, %s is an interface",
			a.Annotation.Raw, typeName).
			WithLocation(loc)
	}
	if a.Spec.TypeParams != nil && len(a.Spec.TypeParams.List) > 0 {
		return nil, errors.Newf(errors.GenericsNotAllowedCode, "implementation %s may not have type parameters %s",
			typeName, fieldListString(a.Spec.TypeParams, newTypeWriter(""))).
			WithLocation(loc)
	}

	opts := a.Annotation.ImplOptions()
	iface, err := p.LoadInterface(opts.InterfaceImport, opts.InterfaceName, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.BindingMismatchCode, err, "cannot bind %s to %s.%s", typeName, opts.InterfaceImport, opts.InterfaceName).
			WithLocation(loc)
	}

	b := &models.ImplementationBinding{
		TypeName:       typeName,
		PackageName:    packageName,
		ImportPath:     importPath,
		Interface:      *iface,
		ModuleOverride: opts.Module,
		Size:           models.UnknownSize,
		Location:       loc,
	}

	methods := declaredMethods(files, typeName)
	if info := p.checkImplementation(files, importPath, typeName); info != nil {
		b.Size = info.size
		for name, m := range info.methods {
			if _, declared := methods[name]; !declared {
				methods[name] = m
			}
		}
	}

	for _, name := range methodOrder(iface, methods) {
		m := methods[name]
		b.Methods = append(b.Methods, m)
		if name == dropHook && m.Params == 0 && m.Results == 0 {
			b.HasDropHook = true
		}
	}
	return b, nil
}

// LoadInterface reads the interface name declared in the package importPath,
// locating the package from the module enclosing fromDir
func (p *Parser) LoadInterface(importPath, name, fromDir string) (*models.InterfaceDescription, error) {
	dir, err := p.locator.Locate(importPath, fromDir)
	if err != nil {
		return nil, err
	}

	files, packageName, err := p.files.ParseDirectoryFiles(dir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		found, err := p.ExtractAnnotations(file)
		if err != nil {
			return nil, err
		}
		for _, a := range found {
			if a.Spec.Name.Name != name {
				continue
			}
			if a.Annotation.Type != annotations.InterfaceAnnotation {
				return nil, fmt.Errorf("%s.%s is annotated %s, not %s", importPath, name, a.Annotation.Type, annotations.InterfaceAnnotation)
			}
			return p.describeInterface(a, packageName, importPath)
		}
	}

	if declares(files, name) {
		return nil, fmt.Errorf("%s.%s is not annotated %sinterface", importPath, name, annotations.Prefix)
	}
	return nil, fmt.Errorf("interface %s not found in %s", name, importPath)
}

// declaredMethods collects the methods declared on typeName, keyed by name
func declaredMethods(files []*ast.File, typeName string) map[string]models.BoundMethod {
	methods := make(map[string]models.BoundMethod)
	for _, file := range files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			recv, pointer := receiverType(fn.Recv.List[0].Type)
			if recv != typeName {
				continue
			}
			methods[fn.Name.Name] = models.BoundMethod{
				Name:            fn.Name.Name,
				PointerReceiver: pointer,
				Params:          countFields(fn.Type.Params),
				Results:         countFields(fn.Type.Results),
			}
		}
	}
	return methods
}

func receiverType(expr ast.Expr) (name string, pointer bool) {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr, pointer = star.X, true
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name, pointer
	case *ast.IndexExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", pointer
}

func countFields(list *ast.FieldList) int {
	if list == nil {
		return 0
	}
	n := 0
	for _, field := range list.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}

// methodOrder lists the bound methods the interface declares, in declaration
// order, followed by every other method by name
func methodOrder(iface *models.InterfaceDescription, methods map[string]models.BoundMethod) []string {
	order := make([]string, 0, len(methods))
	seen := make(map[string]bool)
	for _, m := range iface.Methods {
		if _, ok := methods[m.Name]; ok && !seen[m.Name] {
			seen[m.Name] = true
			order = append(order, m.Name)
		}
	}

	var rest []string
	for name := range methods {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func declares(files []*ast.File, name string) bool {
	for _, file := range files {
		if obj := file.Scope.Lookup(name); obj != nil {
			return true
		}
	}
	return false
}
