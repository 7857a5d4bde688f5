package generator

import (
	"fmt"
	"strings"

	"github.com/toyz/externgen/internal/layout"
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/symbols"
	"github.com/toyz/externgen/internal/templates"
	"github.com/toyz/externgen/internal/verifier"
)

type stubBuilder struct {
	opts     Options
	v        *verifier.VerifiedBinding
	table    models.SymbolTable
	impl     string
	declName string // name the interface package is imported under
	usesDecl bool
	imports  *templates.ImportManager
}

func newStubBuilder(opts Options, v *verifier.VerifiedBinding, table models.SymbolTable) *stubBuilder {
	return &stubBuilder{
		opts:     opts,
		v:        v,
		table:    table,
		impl:     v.Binding.TypeName,
		declName: v.Binding.Interface.PackageName,
		imports:  templates.NewImportManager(),
	}
}

func (b *stubBuilder) build() (*templates.StubData, error) {
	binding := b.v.Binding
	iface := b.v.Interface

	data := &templates.StubData{
		Header:        templates.Header,
		Package:       binding.PackageName,
		Interface:     iface.Description.Name,
		Type:          b.impl,
		SizeAssertion: layout.Assertion(externAlias, b.impl),
		Assertions:    stubCapabilities(iface, b.impl),
	}

	for _, sig := range iface.AllMethods() {
		sym, ok := symbols.For(&b.table, sig)
		if !ok {
			return nil, fmt.Errorf("no symbol for method %s", sig.SymbolMethod())
		}
		data.Funcs = append(data.Funcs, b.stubFunc(sig, sym))
	}

	if d := b.table.Destructor; d != nil {
		var body strings.Builder
		fmt.Fprintf(&body, "\timpl := %s.As[%s](this)\n", externAlias, b.impl)
		if binding.HasDropHook {
			body.WriteString("\timpl.Drop()\n")
		}
		fmt.Fprintf(&body, "\t*impl = *new(%s)\n", b.impl)
		data.Funcs = append(data.Funcs, templates.LinkFunc{
			Local:  d.Local,
			Symbol: d.Name,
			Params: "this *" + externAlias + ".Repr",
			Body:   body.String(),
		})
	}

	data.Funcs = append(data.Funcs, templates.LinkFunc{
		Local:   b.table.TypeID.Local,
		Symbol:  b.table.TypeID.Name,
		Results: externAlias + ".TypeID",
		Body:    fmt.Sprintf("\treturn %s.TypeOf[%s]()\n", externAlias, b.impl),
	})

	for _, imp := range iface.Description.Imports {
		if imp.Path != b.opts.ExternImport {
			b.imports.AddNamedImport(imp.Name, imp.Path)
		}
	}
	if b.usesDecl {
		b.imports.AddNamedImport(b.declName, iface.Description.ImportPath)
	}
	b.imports.AddNamedImport(externAlias, b.opts.ExternImport)
	b.imports.AddImport("unsafe")
	data.Imports = b.imports.GenerateImports()
	return data, nil
}

// linkType is the type a Self occurrence has in a pushed definition
func (b *stubBuilder) linkType(kind models.SelfKind, typ string) string {
	switch {
	case byValue(kind):
		return externAlias + ".Repr"
	case kind.IsIndirect():
		return "*" + externAlias + ".Repr"
	}
	qualified := qualify(typ, b.declName)
	if qualified != typ {
		b.usesDecl = true
	}
	return qualified
}

func (b *stubBuilder) stubFunc(sig verifier.VerifiedSignature, sym models.Symbol) templates.LinkFunc {
	var params []string
	var body strings.Builder
	var borrowed []string // blocks an indirect Self result may point into

	target := "this"
	switch {
	case sig.IsStatic():
		fmt.Fprintf(&body, "\tvar zero %s\n", b.impl)
		target = "zero"
	case byValue(sig.Receiver):
		params = append(params, "this "+externAlias+".Repr")
		fmt.Fprintf(&body, "\timpl := %s.FromRepr[%s](this)\n", externAlias, b.impl)
		target = "impl"
	default:
		params = append(params, "this *"+externAlias+".Repr")
		fmt.Fprintf(&body, "\timpl := %s.As[%s](this)\n", externAlias, b.impl)
		target = "impl"
		borrowed = append(borrowed, "this")
	}

	args := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		name := paramName(i, p.Name)
		params = append(params, name+" "+b.linkType(p.Self, p.Type))
		switch {
		case byValue(p.Self):
			args[i] = fmt.Sprintf("%s.FromRepr[%s](%s)", externAlias, b.impl, name)
		case p.Self.IsIndirect():
			args[i] = b.borrow(p.Self, name)
			borrowed = append(borrowed, name)
		default:
			args[i] = name
		}
	}

	results := make([]string, len(sig.Results))
	for i, r := range sig.Results {
		results[i] = b.linkType(r.Self, r.Type)
	}

	call := fmt.Sprintf("%s.%s(%s)", target, sig.Method.Name, strings.Join(args, ", "))
	body.WriteString(forwardBody(call, sig.Results, func(r verifier.VerifiedResult, value string) (string, bool) {
		switch {
		case byValue(r.Self):
			return fmt.Sprintf("%s.IntoRepr(%s)", externAlias, value), true
		case r.Self.IsIndirect():
			return fmt.Sprintf("%s.ReprOf((*%s)(%s), %s)", externAlias, b.impl, value, strings.Join(borrowed, ", ")), true
		}
		return value, false
	}))

	return templates.LinkFunc{
		Local:   sym.Local,
		Symbol:  sym.Name,
		Params:  strings.Join(params, ", "),
		Results: resultList(results),
		Body:    body.String(),
	}
}

// borrow renders the argument handed to the implementation for an indirect Self
// parameter named name
func (b *stubBuilder) borrow(kind models.SelfKind, name string) string {
	ptr := fmt.Sprintf("%s.As[%s](%s)", externAlias, b.impl, name)
	switch kind {
	case models.SelfConstPointer:
		return fmt.Sprintf("%s.ConstPtr[%s](%s)", externAlias, b.impl, ptr)
	case models.SelfMutPointer:
		return fmt.Sprintf("%s.MutPtr[%s](%s)", externAlias, b.impl, ptr)
	}
	return ptr
}
