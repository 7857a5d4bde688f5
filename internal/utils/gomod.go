package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/toyz/externgen/internal/errors"
)

// Module is a parsed go.mod file
type Module struct {
	Path string // module path
	Root string // directory holding go.mod
	File *modfile.File
}

// ImportPath returns the import path of dir, which must lie inside the module
func (m *Module) ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", dir, err)
	}
	rel, err := filepath.Rel(m.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("directory %s is outside module %s", dir, m.Path)
	}
	if rel == "." {
		return m.Path, nil
	}
	return path.Join(m.Path, filepath.ToSlash(rel)), nil
}

// Dir maps an import path to a package directory using the module itself and
// its local replace directives. It reports false when neither covers importPath.
func (m *Module) Dir(importPath string) (string, bool) {
	if rest, ok := trimModulePrefix(importPath, m.Path); ok {
		return filepath.Join(m.Root, filepath.FromSlash(rest)), true
	}

	if m.File == nil {
		return "", false
	}
	for _, r := range m.File.Replace {
		if !modfile.IsDirectoryPath(r.New.Path) {
			continue
		}
		if rest, ok := trimModulePrefix(importPath, r.Old.Path); ok {
			base := r.New.Path
			if !filepath.IsAbs(base) {
				base = filepath.Join(m.Root, base)
			}
			return filepath.Join(base, filepath.FromSlash(rest)), true
		}
	}
	return "", false
}

func trimModulePrefix(importPath, modulePath string) (string, bool) {
	if importPath == modulePath {
		return "", true
	}
	if strings.HasPrefix(importPath, modulePath+"/") {
		return importPath[len(modulePath)+1:], true
	}
	return "", false
}

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct {
	fileReader *FileReader
	modules    *Cache[string, *Module]
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser(fileReader *FileReader) *GoModParser {
	return &GoModParser{
		fileReader: fileReader,
		modules:    NewCache[string, *Module](),
	}
}

// Parse reads the go.mod file at goModPath
func (p *GoModParser) Parse(goModPath string) (*Module, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	if cached, ok := p.modules.Get(cleanPath, cleanPath); ok {
		return cached, nil
	}

	content, err := p.fileReader.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return nil, fmt.Errorf("no module declaration found in go.mod")
	}
	if err := module.CheckImportPath(modFile.Module.Mod.Path); err != nil {
		return nil, fmt.Errorf("invalid module path in %s: %w", cleanPath, err)
	}

	root, err := filepath.Abs(filepath.Dir(cleanPath))
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", cleanPath, err)
	}

	mod := &Module{Path: modFile.Module.Mod.Path, Root: root, File: modFile}
	_ = p.modules.Set(cleanPath, mod, cleanPath)
	return mod, nil
}

// ParseModuleName extracts the module name from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	mod, err := p.Parse(goModPath)
	if err != nil {
		return "", err
	}
	return mod.Path, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := p.fileReader.ReadFile(goModPath); err == nil && len(content) > 0 {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found")
}

// FindModule returns the module enclosing dir
func (p *GoModParser) FindModule(dir string) (*Module, error) {
	goModPath, err := p.FindGoModFile(dir)
	if err != nil {
		return nil, err
	}
	return p.Parse(goModPath)
}
