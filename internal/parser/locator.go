package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/externgen/internal/utils"
)

// Locator finds the directory of a package from its import path
type Locator struct {
	modules *utils.GoModParser
	load    func(cfg *packages.Config, patterns ...string) ([]*packages.Package, error)

	mu    sync.Mutex
	cache map[string]string
}

// NewLocator creates a locator that consults go.mod files first and falls back
// to the go command
func NewLocator(modules *utils.GoModParser) *Locator {
	return &Locator{
		modules: modules,
		load:    packages.Load,
		cache:   make(map[string]string),
	}
}

// Locate returns the directory of importPath as seen from the module enclosing fromDir
func (l *Locator) Locate(importPath, fromDir string) (string, error) {
	if importPath == "" {
		return "", fmt.Errorf("empty import path")
	}

	if mod, err := l.modules.FindModule(fromDir); err == nil {
		if dir, ok := mod.Dir(importPath); ok && isDir(dir) {
			return dir, nil
		}
	}

	key := fromDir + "\x00" + importPath
	l.mu.Lock()
	dir, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return dir, nil
	}

	dir, err := l.loadDir(importPath, fromDir)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.cache[key] = dir
	l.mu.Unlock()
	return dir, nil
}

func (l *Locator) loadDir(importPath, fromDir string) (string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  fromDir,
	}
	pkgs, err := l.load(cfg, importPath)
	if err != nil {
		return "", fmt.Errorf("failed to locate package %s: %w", importPath, err)
	}
	if len(pkgs) != 1 {
		return "", fmt.Errorf("package %s resolved to %d packages", importPath, len(pkgs))
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return "", fmt.Errorf("failed to locate package %s: %s", importPath, pkg.Errors[0].Msg)
	}
	if len(pkg.GoFiles) == 0 {
		return "", fmt.Errorf("package %s has no Go files", importPath)
	}
	return filepath.Dir(pkg.GoFiles[0]), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
