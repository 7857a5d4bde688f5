package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/generator"
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/parser"
	"github.com/toyz/externgen/internal/utils"
)

// Generator orchestrates the code generation process
type Generator struct {
	config         Config
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	codeGenerator  *generator.Generator
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
}

// NewGenerator creates a new generator for cfg
func NewGenerator(cfg Config, diagnostics *utils.DiagnosticSystem) *Generator {
	codeGenerator := generator.NewGeneratorWithOptions(cfg.GeneratorOptions())
	return &Generator{
		config:         cfg,
		scanner:        NewDirectoryScanner(codeGenerator.IsGenerated),
		moduleResolver: NewModuleResolver(),
		codeGenerator:  codeGenerator,
		reporter:       NewDiagnosticReporter(diagnostics),
		diagnostics:    diagnostics,
	}
}

// Reporter returns the reporter used for errors and the final summary
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// packageResult is the outcome of parsing and rendering one package
type packageResult struct {
	dir      string
	metadata *parser.PackageMetadata
	files    []models.GeneratedFile
	symbols  int
	err      error
}

// Run scans the configured directories and writes, or in check mode compares,
// the generated files of every package. A package that fails produces no
// output; the others are still processed and all failures are returned together.
func (g *Generator) Run(ctx context.Context) (GenerationSummary, error) {
	summary := GenerationSummary{Check: g.config.Check}

	g.diagnostics.Header("link-time interface proxies")
	g.diagnostics.Verbose("configuration: %s", g.config)

	packageDirs, err := g.scanner.ScanDirectories(g.config.Directories)
	if err != nil {
		return summary, err
	}
	if len(packageDirs) == 0 {
		return summary, errors.Newf(errors.ConfigurationErrorCode, "no Go packages found in %s",
			strings.Join(g.config.Directories, ", ")).
			WithSuggestions(
				"Check that the directories contain .go files",
				"Use ./... to scan recursively from the current directory",
			)
	}
	summary.PackagesScanned = len(packageDirs)
	g.diagnostics.Info("Found %d packages", len(packageDirs))

	groups, modules, err := g.moduleResolver.GroupByModule(packageDirs)
	if err != nil {
		return summary, err
	}

	results, err := g.processPackages(ctx, packageDirs)
	if err != nil {
		return summary, err
	}

	roots := make([]string, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	errs := errors.NewMultipleErrors()
	for _, root := range roots {
		g.diagnostics.Section("Module " + modules[root].Path)
		g.diagnostics.Indent()
		for _, dir := range groups[root] {
			res := results[dir]
			if res.err != nil {
				g.diagnostics.Error("%s: generation failed", displayPath(dir))
				errs.Add(res.err)
				continue
			}

			meta := res.metadata
			if meta.IsEmpty() {
				g.diagnostics.Debug("%s: no extern annotations", meta.ImportPath)
			} else {
				summary.PackagesAnnotated++
				summary.Interfaces += len(meta.Interfaces)
				summary.Implementations += len(meta.Implementations)
				summary.Symbols += res.symbols
				g.diagnostics.Item("%s: %d interfaces, %d implementations", meta.ImportPath,
					len(meta.Interfaces), len(meta.Implementations))
			}

			g.diagnostics.Indent()
			if err := g.emit(res, &summary); err != nil {
				errs.Add(err)
			}
			g.diagnostics.Unindent()
		}
		g.diagnostics.Unindent()
	}

	if summary.Check && len(summary.StaleFiles) > 0 {
		sort.Strings(summary.StaleFiles)
		errs.Add(errors.Newf(errors.GenerationErrorCode, "%d generated files are out of date", len(summary.StaleFiles)).
			WithContext("files", strings.Join(summary.StaleFiles, ", ")).
			WithSuggestion("Run `externgen generate` and commit the result"))
	}

	sort.Strings(summary.GeneratedFiles)
	sort.Strings(summary.UnchangedFiles)
	sort.Strings(summary.RemovedFiles)
	return summary, errs.ErrOrNil()
}

// processPackages parses and renders every package, at most Concurrency at a
// time. Per package failures are recorded in the result; the returned error is
// only set when ctx is done.
func (g *Generator) processPackages(ctx context.Context, dirs []string) (map[string]packageResult, error) {
	results := make([]packageResult, len(dirs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Concurrency)
	for i, dir := range dirs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = g.processPackage(dir)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byDir := make(map[string]packageResult, len(results))
	for _, res := range results {
		byDir[res.dir] = res
	}
	return byDir, nil
}

// processPackage runs the front end and the generator for one directory. Each
// call owns its parser so packages share no mutable state.
func (g *Generator) processPackage(dir string) packageResult {
	res := packageResult{dir: dir}

	p := parser.NewParser(g.config.ParserOptions(g.codeGenerator.IsGenerated))
	meta, err := p.ParseDirectory(dir)
	if err != nil {
		res.err = err
		return res
	}
	res.metadata = meta
	trees, sources := p.CacheStats()
	g.diagnostics.Debug("%s: parsed %d files, read %d", displayPath(dir), trees, sources)

	errs := errors.NewMultipleErrors()
	for _, desc := range meta.Interfaces {
		files, err := g.codeGenerator.GenerateInterface(desc, dir)
		if err != nil {
			errs.Add(err)
			continue
		}
		table, err := generator.Symbols(desc)
		if err != nil {
			errs.Add(err)
			continue
		}
		res.files = append(res.files, files...)
		res.symbols += len(table.All())
	}
	for _, b := range meta.Implementations {
		files, err := g.codeGenerator.GenerateImplementation(b, dir)
		if err != nil {
			errs.Add(err)
			continue
		}
		res.files = append(res.files, files...)
	}

	seen := make(map[string]bool)
	for _, f := range res.files {
		if seen[f.FilePath] {
			errs.Add(errors.Newf(errors.GenerationErrorCode, "two declarations in %s generate %s", meta.ImportPath, filepath.Base(f.FilePath)).
				WithContext("path", f.FilePath).
				WithSuggestion("Rename one of the declarations; file names are the snake cased type name"))
		}
		seen[f.FilePath] = true
	}

	if err := errs.ErrOrNil(); err != nil {
		res.err = err
		res.files = nil
	}
	return res
}

// emit writes the generated files of a package and removes generated files no
// declaration produces anymore. In check mode nothing is touched and every
// difference is recorded as stale.
func (g *Generator) emit(res packageResult, summary *GenerationSummary) error {
	expected := make(map[string]bool, len(res.files))

	for _, f := range res.files {
		expected[f.FilePath] = true

		existing, err := os.ReadFile(f.FilePath)
		if err == nil && string(existing) == f.Content {
			summary.UnchangedFiles = append(summary.UnchangedFiles, f.FilePath)
			continue
		}
		if summary.Check {
			summary.StaleFiles = append(summary.StaleFiles, f.FilePath)
			g.diagnostics.Warn("%s is out of date", displayPath(f.FilePath))
			continue
		}

		if err := utils.FormatAndWriteGoFile(f.FilePath, f.Content); err != nil {
			return errors.WrapFileSystemError("write", f.FilePath, err)
		}
		summary.GeneratedFiles = append(summary.GeneratedFiles, f.FilePath)
		g.diagnostics.Written(displayPath(f.FilePath))
	}

	entries, err := os.ReadDir(res.dir)
	if err != nil {
		return errors.WrapFileSystemError("read directory", res.dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(res.dir, entry.Name())
		if entry.IsDir() || !g.codeGenerator.IsGenerated(entry.Name()) || expected[path] {
			continue
		}
		if summary.Check {
			summary.StaleFiles = append(summary.StaleFiles, path)
			g.diagnostics.Warn("%s is no longer generated", displayPath(path))
			continue
		}
		if err := os.Remove(path); err != nil {
			return errors.WrapFileSystemError("remove", path, err)
		}
		summary.RemovedFiles = append(summary.RemovedFiles, path)
		g.diagnostics.Verbose("removed %s", displayPath(path))
	}
	return nil
}

// displayPath shortens path relative to the working directory when possible
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
