package templates

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/toyz/externgen/internal/errors"
)

// Header is the first line of every generated file
const Header = "// Code generated by externgen. DO NOT EDIT."

var funcs = template.FuncMap{
	"comment": Comment,
}

// Comment renders text as a line comment block. Lines already starting with
// "//" are kept as they are.
func Comment(text string) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "//"):
		case line == "":
			lines[i] = "//"
		default:
			lines[i] = "// " + line
		}
	}
	return strings.Join(lines, "\n")
}

// Renderer executes registry templates
type Renderer struct {
	registry *TemplateRegistry
	root     *template.Template
}

// NewRenderer parses every template of the registry
func NewRenderer(registry *TemplateRegistry) (*Renderer, error) {
	root := template.New("externgen").Funcs(funcs)
	for _, name := range registry.Names() {
		if _, err := root.New(name).Parse(registry.MustGet(name)); err != nil {
			return nil, errors.WrapTemplateError(name, "parse", err)
		}
	}
	return &Renderer{registry: registry, root: root}, nil
}

// MustNewRenderer is NewRenderer for the built-in registry
func MustNewRenderer() *Renderer {
	r, err := NewRenderer(NewTemplateRegistry())
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named template with data
func (r *Renderer) Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.root.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return buf.String(), nil
}
