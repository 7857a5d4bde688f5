// Package generator emits the two halves of the linkage contract: the proxy in
// the package declaring an extern interface and the stubs in the package
// implementing it.
package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/symbols"
	"github.com/toyz/externgen/internal/templates"
	"github.com/toyz/externgen/internal/utils"
	"github.com/toyz/externgen/internal/verifier"
	"github.com/toyz/externgen/pkg/extern"
)

const (
	// DefaultExternImport is the import path of the runtime package
	DefaultExternImport = extern.ImportPath
	// DefaultProxySuffix is appended to the snake cased interface name
	DefaultProxySuffix = "_extern_proxy"
	// DefaultStubSuffix is appended to the snake cased implementation name
	DefaultStubSuffix = "_extern_stub"
)

// Options configures generated output
type Options struct {
	ExternImport string // import path of the runtime package
	ProxySuffix  string
	StubSuffix   string
	GOARCH       string // target used for size verification, empty for the host
}

func (o Options) withDefaults() Options {
	if o.ExternImport == "" {
		o.ExternImport = DefaultExternImport
	}
	if o.ProxySuffix == "" {
		o.ProxySuffix = DefaultProxySuffix
	}
	if o.StubSuffix == "" {
		o.StubSuffix = DefaultStubSuffix
	}
	return o
}

// Generator turns verified descriptions into generated files
type Generator struct {
	opts     Options
	renderer *templates.Renderer
}

// NewGenerator creates a generator with default options
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(Options{})
}

// NewGeneratorWithOptions creates a generator with the given options
func NewGeneratorWithOptions(opts Options) *Generator {
	return &Generator{
		opts:     opts.withDefaults(),
		renderer: templates.MustNewRenderer(),
	}
}

// Options returns the effective options
func (g *Generator) Options() Options {
	return g.opts
}

// ProxyFileName returns the base name of the proxy file of an interface
func (g *Generator) ProxyFileName(iface string) string {
	return strcase.ToSnake(iface) + g.opts.ProxySuffix + ".go"
}

// AsmFileName returns the base name of the assembly companion of a proxy
func (g *Generator) AsmFileName(iface string) string {
	return strcase.ToSnake(iface) + g.opts.ProxySuffix + ".s"
}

// StubFileName returns the base name of the stub file of an implementation
func (g *Generator) StubFileName(typeName string) string {
	return strcase.ToSnake(typeName) + g.opts.StubSuffix + ".go"
}

// IsGenerated reports whether a base name belongs to generated output
func (g *Generator) IsGenerated(name string) bool {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	switch ext {
	case ".go":
		return strings.HasSuffix(stem, g.opts.ProxySuffix) || strings.HasSuffix(stem, g.opts.StubSuffix)
	case ".s":
		return strings.HasSuffix(stem, g.opts.ProxySuffix)
	}
	return false
}

// GenerateInterface verifies an interface description and renders its proxy
// and assembly companion into dir.
func (g *Generator) GenerateInterface(desc *models.InterfaceDescription, dir string) ([]models.GeneratedFile, error) {
	verified, err := verifier.VerifyInterface(desc)
	if err != nil {
		return nil, err
	}
	return g.GenerateProxy(verified, dir)
}

// GenerateProxy renders the proxy of an already verified interface
func (g *Generator) GenerateProxy(v *verifier.VerifiedInterface, dir string) ([]models.GeneratedFile, error) {
	desc := v.Description
	table := symbols.Table(v)

	data, err := newProxyBuilder(g.opts, v, table).build()
	if err != nil {
		return nil, errors.WrapGenerateError("proxy", desc.Name, err)
	}

	proxyPath := filepath.Join(dir, g.ProxyFileName(desc.Name))
	content, err := g.render("proxy", proxyPath, data)
	if err != nil {
		return nil, errors.WrapGenerateError("proxy", desc.Name, err)
	}

	asm, err := g.renderer.Render("asm", templates.AsmData{Header: templates.Header, Proxy: data.Proxy})
	if err != nil {
		return nil, errors.WrapGenerateError("proxy", desc.Name, err)
	}

	return []models.GeneratedFile{
		{Kind: models.ProxyFile, PackageName: desc.PackageName, FilePath: proxyPath, Content: content},
		{Kind: models.AsmFile, PackageName: desc.PackageName, FilePath: filepath.Join(dir, g.AsmFileName(desc.Name)), Content: asm},
	}, nil
}

// GenerateImplementation verifies a binding and renders its stub file into dir
func (g *Generator) GenerateImplementation(b *models.ImplementationBinding, dir string) ([]models.GeneratedFile, error) {
	verified, err := verifier.VerifyBinding(b, g.opts.GOARCH)
	if err != nil {
		return nil, err
	}
	return g.GenerateStub(verified, dir)
}

// GenerateStub renders the stubs of an already verified binding
func (g *Generator) GenerateStub(v *verifier.VerifiedBinding, dir string) ([]models.GeneratedFile, error) {
	b := v.Binding
	table := symbols.Table(v.Interface)

	data, err := newStubBuilder(g.opts, v, table).build()
	if err != nil {
		return nil, errors.WrapGenerateError("stub", b.TypeName, err)
	}

	stubPath := filepath.Join(dir, g.StubFileName(b.TypeName))
	content, err := g.render("stub", stubPath, data)
	if err != nil {
		return nil, errors.WrapGenerateError("stub", b.TypeName, err)
	}

	return []models.GeneratedFile{
		{Kind: models.StubFile, PackageName: b.PackageName, FilePath: stubPath, Content: content},
	}, nil
}

func (g *Generator) render(name, path string, data interface{}) (string, error) {
	source, err := g.renderer.Render(name, data)
	if err != nil {
		return "", err
	}
	formatted, err := utils.FormatGoSource(path, source)
	if err != nil {
		return "", fmt.Errorf("generated %s is not valid Go: %w", filepath.Base(path), err)
	}
	return formatted, nil
}

// Symbols returns the symbol table of an interface description after verifying it
func Symbols(desc *models.InterfaceDescription) (models.SymbolTable, error) {
	verified, err := verifier.VerifyInterface(desc)
	if err != nil {
		return models.SymbolTable{}, err
	}
	return symbols.Table(verified), nil
}
