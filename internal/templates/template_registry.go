package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerProxyTemplates()
	registry.registerStubTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns every registered template name
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	return names
}

// registerProxyTemplates registers the caller side templates
func (tr *TemplateRegistry) registerProxyTemplates() {
	tr.templates["proxy"] = `{{.Header}}

package {{.Package}}

{{.Imports}}
// {{.Proxy}} forwards {{.Interface}} to the implementation linked into the binary.
// It owns at most one implementation value stored in two machine words.
type {{.Proxy}} struct {
	box {{.Extern}}.Box
}
{{range .Externs}}
{{template "link-func" .}}
{{end}}
{{range .Methods}}
{{comment .Doc}}
func {{if .Receiver}}({{.Receiver}}) {{end}}{{.Name}}({{.Params}}){{if .Results}} {{.Results}}{{end}} {
{{.Body}}}
{{end}}
{{- if .Drop}}
// Drop destroys the implementation value. Calling Drop on an empty proxy does nothing.
func (p *{{.Proxy}}) Drop() {
	if !p.box.Owned() {
		return
	}
	{{.Drop}}(p.box.Ref())
	p.box.Release()
}
{{end}}
{{- range .Markers}}
// {{.Method}} certifies {{$.Proxy}} as {{$.Extern}}.{{.Capability}}.
func (*{{$.Proxy}}) {{.Method}}() {}
{{end}}
// {{.Proxy}}FromImpl stores v in a new proxy. It panics unless T is the
// implementation type of {{.Interface}}.
func {{.Proxy}}FromImpl[T any](v T) {{.Proxy}} {
	{{.Extern}}.CheckImpl[T]({{.TypeID}}(), "{{.Interface}}")
	return {{.Proxy}}{box: {{.Extern}}.Own({{.Extern}}.IntoRepr(v))}
}

// {{.Proxy}}IntoImpl moves the implementation value out of p, leaving p empty.
// It panics unless T is the implementation type of {{.Interface}}.
func {{.Proxy}}IntoImpl[T any](p *{{.Proxy}}) T {
	{{.Extern}}.CheckImpl[T]({{.TypeID}}(), "{{.Interface}}")
	return {{.Extern}}.FromRepr[T](p.box.Take())
}

// {{.Proxy}}Downcast returns a pointer to the implementation value stored in p.
// It panics unless T is the implementation type of {{.Interface}}.
func {{.Proxy}}Downcast[T any](p *{{.Proxy}}) *T {
	{{.Extern}}.CheckImpl[T]({{.TypeID}}(), "{{.Interface}}")
	return {{.Extern}}.As[T](p.box.Ref())
}
{{if .Assertions}}
var (
{{- range .Assertions}}
	_ {{.Interface}} = {{.Type}}
{{- end}}
)
{{end}}`

	tr.templates["link-func"] = `//go:linkname {{.Local}} {{.Symbol}}
func {{.Local}}({{.Params}}){{if .Results}} {{.Results}}{{end}}{{if .Body}} {
{{.Body}}}{{end}}`

	tr.templates["asm"] = `{{.Header}}
// Lets the Go compiler accept the body-less declarations of {{.Proxy}}.
`
}

// registerStubTemplates registers the implementer side templates
func (tr *TemplateRegistry) registerStubTemplates() {
	tr.templates["stub"] = `{{.Header}}

package {{.Package}}

{{.Imports}}
{{.SizeAssertion}}
{{- if .Assertions}}
var (
{{- range .Assertions}}
	_ {{.Interface}} = {{.Type}}
{{- end}}
)
{{end}}
{{- range .Funcs}}
{{template "link-func" .}}
{{end}}`
}
