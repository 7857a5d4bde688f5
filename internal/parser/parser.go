// Package parser is the go/ast front end: it reads annotated Go packages and
// produces interface descriptions and implementation bindings.
package parser

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"

	"github.com/toyz/externgen/internal/annotations"
	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/utils"
)

// Options configures a Parser
type Options struct {
	ExternImport string                // import path of the runtime package
	GOARCH       string                // target used for implementation sizes, empty for the host
	IsGenerated  utils.GeneratedFilter // generator output to skip
}

// Parser extracts extern annotations from Go packages
type Parser struct {
	opts        Options
	reader      *utils.FileReader
	files       *utils.FileProcessor
	modules     *utils.GoModParser
	annotations *annotations.ParticipleParser
	locator     *Locator
}

// NewParser creates a parser with opts. An empty ExternImport means DefaultExternImport.
func NewParser(opts Options) *Parser {
	if opts.ExternImport == "" {
		opts.ExternImport = DefaultExternImport
	}
	reader := utils.NewFileReader()
	modules := utils.NewGoModParser(reader)
	return &Parser{
		opts:        opts,
		reader:      reader,
		files:       utils.NewFileProcessorWithReader(reader, opts.IsGenerated),
		modules:     modules,
		annotations: annotations.NewParticipleParser(),
		locator:     NewLocator(modules),
	}
}

// PackageMetadata is everything the front end found in one package
type PackageMetadata struct {
	PackageName     string
	ImportPath      string
	Dir             string
	Interfaces      []*models.InterfaceDescription
	Implementations []*models.ImplementationBinding
}

// IsEmpty reports whether the package holds no annotated declarations
func (m *PackageMetadata) IsEmpty() bool {
	return len(m.Interfaces) == 0 && len(m.Implementations) == 0
}

// Annotated is one type declaration carrying an extern annotation
type Annotated struct {
	Annotation *annotations.ParsedAnnotation
	Spec       *ast.TypeSpec
	Doc        *ast.CommentGroup
	File       *ast.File
}

// CacheStats returns how many syntax trees and file contents the parser holds
func (p *Parser) CacheStats() (astFiles, contentFiles int) {
	return p.reader.CacheStats()
}

// FileSet returns the file set positions of parsed files belong to
func (p *Parser) FileSet() *token.FileSet {
	return p.reader.FileSet()
}

// ParseDirectory parses the package in dir. The import path is derived from the
// enclosing go.mod.
func (p *Parser) ParseDirectory(dir string) (*PackageMetadata, error) {
	mod, err := p.modules.FindModule(dir)
	if err != nil {
		return nil, errors.WrapConfigurationError("go.mod", "locate", err).
			WithSuggestion("Run externgen inside a Go module")
	}
	importPath, err := mod.ImportPath(dir)
	if err != nil {
		return nil, errors.WrapConfigurationError("go.mod", "resolve", err)
	}

	files, packageName, err := p.files.ParseDirectoryFiles(dir)
	if err != nil {
		return nil, errors.WrapParseError(dir, err)
	}

	return p.parseFiles(files, packageName, importPath, dir)
}

// ParseSource parses a single file held in memory as the package importPath.
// Implementation annotations resolve their interface relative to the working directory.
func (p *Parser) ParseSource(filename, source, importPath string) (*PackageMetadata, error) {
	file, err := p.reader.ParseGoSource(filename, source)
	if err != nil {
		return nil, err
	}
	return p.parseFiles([]*ast.File{file}, file.Name.Name, importPath, filepath.Dir(filename))
}

func (p *Parser) parseFiles(files []*ast.File, packageName, importPath, dir string) (*PackageMetadata, error) {
	metadata := &PackageMetadata{
		PackageName: packageName,
		ImportPath:  importPath,
		Dir:         dir,
	}

	errs := errors.NewMultipleErrors()
	var impls []Annotated

	for _, file := range files {
		found, err := p.ExtractAnnotations(file)
		if err != nil {
			errs.Add(err)
			continue
		}
		for _, a := range found {
			switch a.Annotation.Type {
			case annotations.InterfaceAnnotation:
				desc, err := p.describeInterface(a, packageName, importPath)
				if err != nil {
					errs.Add(err)
					continue
				}
				metadata.Interfaces = append(metadata.Interfaces, desc)
			case annotations.ImplAnnotation:
				impls = append(impls, a)
			}
		}
	}

	for _, a := range impls {
		b, err := p.bindImplementation(a, files, packageName, importPath, dir)
		if err != nil {
			errs.Add(err)
			continue
		}
		metadata.Implementations = append(metadata.Implementations, b)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	sort.SliceStable(metadata.Interfaces, func(i, j int) bool {
		return metadata.Interfaces[i].Name < metadata.Interfaces[j].Name
	})
	sort.SliceStable(metadata.Implementations, func(i, j int) bool {
		return metadata.Implementations[i].TypeName < metadata.Implementations[j].TypeName
	})
	return metadata, nil
}

// ExtractAnnotations returns the annotated type declarations of a file in source order
func (p *Parser) ExtractAnnotations(file *ast.File) ([]Annotated, error) {
	var found []Annotated
	errs := errors.NewMultipleErrors()

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			spec := s.(*ast.TypeSpec)
			doc := spec.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			ann, err := p.annotationOf(doc)
			if err != nil {
				errs.Add(err)
				continue
			}
			if ann == nil {
				continue
			}
			found = append(found, Annotated{Annotation: ann, Spec: spec, Doc: doc, File: file})
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return found, nil
}

// annotationOf parses the single extern annotation of a doc comment, nil when there is none
func (p *Parser) annotationOf(doc *ast.CommentGroup) (*annotations.ParsedAnnotation, error) {
	if doc == nil {
		return nil, nil
	}

	var parsed *annotations.ParsedAnnotation
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		loc := p.reader.Location(c.Pos())
		if parsed != nil {
			return nil, errors.New(errors.SyntaxErrorCode, "a declaration may carry only one extern annotation").
				WithLocation(loc).
				WithContext("annotation", c.Text)
		}
		ann, err := p.annotations.ParseAnnotation(c.Text, loc)
		if err != nil {
			return nil, err
		}
		parsed = ann
	}
	return parsed, nil
}
