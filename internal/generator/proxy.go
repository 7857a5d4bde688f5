package generator

import (
	"fmt"
	"strings"

	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/symbols"
	"github.com/toyz/externgen/internal/templates"
	"github.com/toyz/externgen/internal/verifier"
)

// externAlias is the name the runtime package is imported under
const externAlias = "extern"

type proxyBuilder struct {
	opts    Options
	v       *verifier.VerifiedInterface
	table   models.SymbolTable
	proxy   string
	imports *templates.ImportManager
}

func newProxyBuilder(opts Options, v *verifier.VerifiedInterface, table models.SymbolTable) *proxyBuilder {
	return &proxyBuilder{
		opts:    opts,
		v:       v,
		table:   table,
		proxy:   v.Description.Proxy(),
		imports: templates.NewImportManager(),
	}
}

func (b *proxyBuilder) build() (*templates.ProxyData, error) {
	desc := b.v.Description

	for _, imp := range desc.Imports {
		if imp.Path != b.opts.ExternImport {
			b.imports.AddNamedImport(imp.Name, imp.Path)
		}
	}
	b.imports.AddNamedImport(externAlias, b.opts.ExternImport)
	b.imports.AddBlankImport("unsafe")

	data := &templates.ProxyData{
		Header:    templates.Header,
		Package:   desc.PackageName,
		Extern:    externAlias,
		Interface: desc.Name,
		Proxy:     b.proxy,
		TypeID:    b.table.TypeID.Local,
	}

	for _, sig := range b.v.AllMethods() {
		sym, ok := symbols.For(&b.table, sig)
		if !ok {
			return nil, fmt.Errorf("no symbol for method %s", sig.SymbolMethod())
		}
		data.Externs = append(data.Externs, b.externFunc(sig, sym))
		data.Methods = append(data.Methods, b.method(sig, sym))
	}

	if b.table.Destructor != nil {
		data.Externs = append(data.Externs, templates.LinkFunc{
			Local:  b.table.Destructor.Local,
			Symbol: b.table.Destructor.Name,
			Params: "this *" + externAlias + ".Repr",
		})
		data.Drop = b.table.Destructor.Local
	}
	data.Externs = append(data.Externs, templates.LinkFunc{
		Local:   b.table.TypeID.Local,
		Symbol:  b.table.TypeID.Name,
		Results: externAlias + ".TypeID",
	})

	data.Markers, data.Assertions = proxyCapabilities(b.v, b.proxy, b.imports)
	data.Imports = b.imports.GenerateImports()
	return data, nil
}

// linkType is the type a Self occurrence has in a pulled declaration
func (b *proxyBuilder) linkType(kind models.SelfKind, typ string) string {
	switch {
	case byValue(kind):
		return externAlias + ".Repr"
	case kind.IsIndirect():
		return "*" + externAlias + ".Repr"
	}
	return typ
}

func (b *proxyBuilder) externFunc(sig verifier.VerifiedSignature, sym models.Symbol) templates.LinkFunc {
	var params []string
	if !sig.IsStatic() {
		params = append(params, "this "+b.linkType(sig.Receiver, ""))
	}
	for i, p := range sig.Params {
		params = append(params, paramName(i, p.Name)+" "+b.linkType(p.Self, p.Type))
	}
	results := make([]string, len(sig.Results))
	for i, r := range sig.Results {
		results[i] = b.linkType(r.Self, r.Type)
	}
	return templates.LinkFunc{
		Local:   sym.Local,
		Symbol:  sym.Name,
		Params:  strings.Join(params, ", "),
		Results: resultList(results),
	}
}

func (b *proxyBuilder) method(sig verifier.VerifiedSignature, sym models.Symbol) templates.MethodData {
	const recv = "p"

	var args []string
	if !sig.IsStatic() {
		if byValue(sig.Receiver) {
			args = append(args, recv+".box.Take()")
		} else {
			args = append(args, recv+".box.Ref()")
		}
	}

	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		name := paramName(i, p.Name)
		switch {
		case byValue(p.Self):
			params[i] = name + " *" + b.proxy
			args = append(args, name+".box.Take()")
		case p.Self.IsIndirect():
			params[i] = name + " *" + b.proxy
			args = append(args, name+".box.Ref()")
		default:
			params[i] = name + " " + p.Type
			args = append(args, name)
		}
	}

	results := make([]string, len(sig.Results))
	for i, r := range sig.Results {
		switch {
		case byValue(r.Self):
			results[i] = b.proxy
		case r.Self.IsIndirect():
			results[i] = "*" + b.proxy
		default:
			results[i] = r.Type
		}
	}

	call := fmt.Sprintf("%s(%s)", sym.Local, strings.Join(args, ", "))
	body := forwardBody(call, sig.Results, func(r verifier.VerifiedResult, value string) (string, bool) {
		switch {
		case byValue(r.Self):
			return fmt.Sprintf("%s{box: %s.Own(%s)}", b.proxy, externAlias, value), true
		case r.Self.IsIndirect():
			// the block returned is one of the borrowed ones, each the first field of its proxy
			b.imports.AddImport("unsafe")
			return fmt.Sprintf("(*%s)(unsafe.Pointer(%s))", b.proxy, value), true
		}
		return value, false
	})

	data := templates.MethodData{
		Name:    sig.Method.Name,
		Params:  strings.Join(params, ", "),
		Results: resultList(results),
		Body:    body,
	}
	if sig.IsStatic() {
		data.Name = b.proxy + sig.Method.Name
	} else {
		data.Receiver = recv + " *" + b.proxy
	}
	data.Doc = methodDoc(b.v.Description.Name, sig, data.Name)
	return data
}
