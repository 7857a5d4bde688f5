package parser

import (
	"fmt"
	"go/ast"
	"go/types"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/toyz/externgen/internal/annotations"
	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/verifier"
)

// externAlias returns the name the runtime package is imported under in file.
// It is "." for a dot import and "" when the file does not import it.
func (p *Parser) externAlias(file *ast.File) string {
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil || importPath != p.opts.ExternImport {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == blankImport {
				return ""
			}
			return imp.Name.Name
		}
		return path.Base(importPath)
	}
	return ""
}

// typeWriter prints type expressions in model syntax
type typeWriter struct {
	alias string
	strip *regexp.Regexp
}

func newTypeWriter(alias string) typeWriter {
	w := typeWriter{alias: alias}
	if alias != "" && alias != dotImport {
		w.strip = regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\.(` + strings.Join(markerTypes, "|") + `)\b`)
	}
	return w
}

func (w typeWriter) String(expr ast.Expr) string {
	s := types.ExprString(expr)
	if w.strip != nil {
		s = w.strip.ReplaceAllString(s, "$1")
	}
	return s
}

// capability recognizes an embedded runtime capability such as extern.Send or extern.AsRef[string]
func (w typeWriter) capability(expr ast.Expr) (name string, args []ast.Expr, ok bool) {
	base := expr
	switch e := expr.(type) {
	case *ast.IndexExpr:
		base, args = e.X, []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		base, args = e.X, e.Indices
	}

	switch b := base.(type) {
	case *ast.SelectorExpr:
		x, isIdent := b.X.(*ast.Ident)
		if isIdent && w.alias != "" && x.Name == w.alias {
			return b.Sel.Name, args, true
		}
	case *ast.Ident:
		if w.alias == dotImport && verifier.IsCapability(b.Name) {
			return b.Name, args, true
		}
	}
	return "", nil, false
}

func (p *Parser) describeInterface(a Annotated, packageName, importPath string) (*models.InterfaceDescription, error) {
	iface, ok := a.Spec.Type.(*ast.InterfaceType)
	if !ok {
		return nil, errors.Newf(errors.SyntaxErrorCode, "%s annotation must be placed on an interface type, %s is not one",
			a.Annotation.Raw, a.Spec.Name.Name).
			WithLocation(p.reader.Location(a.Spec.Pos()))
	}

	opts := a.Annotation.InterfaceOptions()
	w := newTypeWriter(p.externAlias(a.File))

	desc := &models.InterfaceDescription{
		Name:           a.Spec.Name.Name,
		PackageName:    packageName,
		ImportPath:     importPath,
		ProxyName:      opts.Proxy,
		ModuleOverride: opts.Module,
		TypeParams:     fieldListString(a.Spec.TypeParams, w),
		Imports:        fileImports(a.File),
		Doc:            docText(a.Doc),
		Location:       p.reader.Location(a.Spec.Pos()),
	}

	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			p.embedded(desc, field, w)
			continue
		}
		fn, ok := field.Type.(*ast.FuncType)
		if !ok {
			desc.AssociatedItems = append(desc.AssociatedItems, w.String(field.Type))
			continue
		}
		for _, name := range field.Names {
			desc.Methods = append(desc.Methods, p.describeMethod(name, fn, field.Doc, w))
		}
	}

	return desc, nil
}

// embedded records an element without a name: a capability or an associated item
func (p *Parser) embedded(desc *models.InterfaceDescription, field *ast.Field, w typeWriter) {
	name, args, ok := w.capability(field.Type)
	if !ok {
		desc.AssociatedItems = append(desc.AssociatedItems, w.String(field.Type))
		return
	}

	req := models.CapabilityRequest{
		Token:    name,
		Name:     name,
		Location: p.reader.Location(field.Pos()),
	}
	if len(args) > 0 {
		for _, arg := range args {
			req.Args = append(req.Args, w.String(arg))
		}
		req.Token = fmt.Sprintf("%s[%s]", name, strings.Join(req.Args, ", "))
	}
	desc.Capabilities = append(desc.Capabilities, req)
}

// describeMethod maps one interface method. The first parameter becomes the
// receiver when its type is a Self form.
func (p *Parser) describeMethod(name *ast.Ident, fn *ast.FuncType, doc *ast.CommentGroup, w typeWriter) models.MethodSignature {
	m := models.MethodSignature{
		Name:     name.Name,
		Doc:      docText(doc),
		Location: p.reader.Location(name.Pos()),
	}

	if fn.TypeParams != nil && len(fn.TypeParams.List) > 0 {
		m.HasTypeOrConstGenerics = true
		m.TypeParams = fieldListString(fn.TypeParams, w)
	}

	params := expandFields(fn.Params, w)
	if len(params) > 0 {
		if kind, ok, err := verifier.ClassifySelf(params[0].Type); err == nil && ok && kind.IsSelf() {
			m.Receiver = params[0].Type
			params = params[1:]
		}
	}
	for _, prm := range params {
		if strings.HasPrefix(prm.Type, "...") {
			m.IsVariadic = true
		}
		if strings.Contains(prm.Type, "unsafe.Pointer") {
			m.IsUnsafe = true
		}
	}
	m.Params = params

	for _, r := range expandFields(fn.Results, w) {
		m.Results = append(m.Results, r.Type)
	}
	return m
}

// expandFields flattens "a, b int" into one param per name; unnamed fields keep an empty name
func expandFields(list *ast.FieldList, w typeWriter) []models.Param {
	if list == nil {
		return nil
	}
	var params []models.Param
	for _, field := range list.List {
		typ := w.String(field.Type)
		if len(field.Names) == 0 {
			params = append(params, models.Param{Type: typ})
			continue
		}
		for _, name := range field.Names {
			params = append(params, models.Param{Name: name.Name, Type: typ})
		}
	}
	return params
}

// fieldListString renders a type parameter list as written, "" when absent
func fieldListString(list *ast.FieldList, w typeWriter) string {
	if list == nil || len(list.List) == 0 {
		return ""
	}
	parts := make([]string, 0, len(list.List))
	for _, field := range list.List {
		names := make([]string, 0, len(field.Names))
		for _, n := range field.Names {
			names = append(names, n.Name)
		}
		parts = append(parts, strings.Join(names, ", ")+" "+w.String(field.Type))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func fileImports(file *ast.File) []models.Import {
	var imports []models.Import
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		}
		imports = append(imports, models.Import{Name: name, Path: importPath})
	}
	return imports
}

// docText returns a doc comment without its annotation lines
func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), strings.TrimPrefix(annotations.Prefix, "//")) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
