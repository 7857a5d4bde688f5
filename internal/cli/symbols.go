package cli

import (
	"fmt"
	"go/token"
	"io"
	"text/tabwriter"

	"golang.org/x/mod/module"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/generator"
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/parser"
	"github.com/toyz/externgen/internal/symbols"
)

// SymbolRequest names an interface by its parts instead of its source
type SymbolRequest struct {
	Module    string
	Interface string
	Methods   []string
	Copy      bool // the interface requests Copy and has no destructor
}

// DeriveSymbols computes the symbol table of req without reading any source
func DeriveSymbols(req SymbolRequest) (models.SymbolTable, error) {
	if err := module.CheckImportPath(req.Module); err != nil {
		return models.SymbolTable{}, errors.Wrap(errors.ConfigurationErrorCode, "invalid module path", err)
	}
	if !token.IsIdentifier(req.Interface) {
		return models.SymbolTable{}, errors.Newf(errors.ConfigurationErrorCode, "%q is not a Go identifier", req.Interface)
	}

	table := models.SymbolTable{
		Module:    req.Module,
		Interface: req.Interface,
		TypeID:    symbols.Derive(models.SymbolTypeID, req.Module, req.Interface, symbols.TypeIDMethod),
	}
	seen := make(map[string]bool)
	for _, method := range req.Methods {
		if !token.IsIdentifier(method) {
			return models.SymbolTable{}, errors.Newf(errors.ConfigurationErrorCode, "%q is not a Go identifier", method)
		}
		if seen[method] {
			return models.SymbolTable{}, errors.Newf(errors.ConfigurationErrorCode, "method %s listed twice", method)
		}
		seen[method] = true
		table.Methods = append(table.Methods, symbols.Derive(models.SymbolMethod, req.Module, req.Interface, method))
	}
	if !req.Copy {
		destructor := symbols.Derive(models.SymbolDestructor, req.Module, req.Interface, symbols.DestructorMethod)
		table.Destructor = &destructor
	}
	return table, nil
}

// DirectorySymbols returns the symbol tables of the extern interfaces declared in dir
func DirectorySymbols(cfg Config, dir string) ([]models.SymbolTable, error) {
	codeGenerator := generator.NewGeneratorWithOptions(cfg.GeneratorOptions())
	meta, err := parser.NewParser(cfg.ParserOptions(codeGenerator.IsGenerated)).ParseDirectory(dir)
	if err != nil {
		return nil, err
	}

	tables := make([]models.SymbolTable, 0, len(meta.Interfaces))
	for _, desc := range meta.Interfaces {
		table, err := generator.Symbols(desc)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// SymbolMismatch is an implementation whose stub would not link against the
// proxy of the interface it names
type SymbolMismatch struct {
	Interface      string
	Implementation string
	OnlyProxy      []models.Symbol // pulled by the proxy, defined by no stub
	OnlyStub       []models.Symbol // defined by the stub, pulled by no proxy
}

// CompareSymbols matches every implementation bound in implDir with the
// interface of the same name declared in dir and reports the pairs whose
// symbol tables differ. An implementation of an interface dir does not declare
// is reported with every stub symbol.
func CompareSymbols(cfg Config, dir, implDir string) ([]SymbolMismatch, error) {
	tables, err := DirectorySymbols(cfg, dir)
	if err != nil {
		return nil, err
	}
	proxies := make(map[string]models.SymbolTable, len(tables))
	for _, table := range tables {
		proxies[table.Interface] = table
	}

	codeGenerator := generator.NewGeneratorWithOptions(cfg.GeneratorOptions())
	meta, err := parser.NewParser(cfg.ParserOptions(codeGenerator.IsGenerated)).ParseDirectory(implDir)
	if err != nil {
		return nil, err
	}

	var mismatches []SymbolMismatch
	for _, binding := range meta.Implementations {
		stub, err := generator.Symbols(&binding.Interface)
		if err != nil {
			return nil, err
		}
		var onlyProxy, onlyStub []models.Symbol
		if proxy, ok := proxies[binding.Interface.Name]; ok {
			onlyProxy, onlyStub = symbols.Diff(proxy, stub)
		} else {
			onlyStub = stub.All()
		}
		if len(onlyProxy) == 0 && len(onlyStub) == 0 {
			continue
		}
		mismatches = append(mismatches, SymbolMismatch{
			Interface:      binding.Interface.Name,
			Implementation: binding.TypeName,
			OnlyProxy:      onlyProxy,
			OnlyStub:       onlyStub,
		})
	}
	return mismatches, nil
}

// WriteSymbolMismatches prints one row per symbol defined on only one side
func WriteSymbolMismatches(w io.Writer, mismatches []SymbolMismatch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IMPLEMENTATION\tINTERFACE\tSIDE\tSYMBOL")
	for _, m := range mismatches {
		for _, s := range m.OnlyProxy {
			fmt.Fprintf(tw, "%s\t%s\tproxy\t%s\n", m.Implementation, m.Interface, s.Name)
		}
		for _, s := range m.OnlyStub {
			fmt.Fprintf(tw, "%s\t%s\tstub\t%s\n", m.Implementation, m.Interface, s.Name)
		}
	}
	return tw.Flush()
}

// WriteSymbolTables prints one row per symbol: kind, interface, method, local
// identifier and link name
func WriteSymbolTables(w io.Writer, tables ...models.SymbolTable) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tINTERFACE\tMETHOD\tLOCAL\tSYMBOL")
	for _, table := range tables {
		for _, s := range table.All() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Kind, s.Interface, s.Method, s.Local, s.Name)
		}
	}
	return tw.Flush()
}
