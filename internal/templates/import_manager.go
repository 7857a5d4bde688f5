package templates

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// ImportManager handles import generation and deduplication
type ImportManager struct {
	standardImports map[string]string // path -> alias, alias may be empty or "_"
	packageImports  map[string]string // path -> alias
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		standardImports: make(map[string]string),
		packageImports:  make(map[string]string),
	}
}

// AddImport adds an import. Paths without a dot in their first element are
// grouped with the standard library.
func (im *ImportManager) AddImport(importPath string) {
	im.AddNamedImport("", importPath)
}

// AddBlankImport adds an import used only for its side effects
func (im *ImportManager) AddBlankImport(importPath string) {
	if _, exists := im.lookup(importPath); !exists {
		im.AddNamedImport("_", importPath)
	}
}

// AddNamedImport adds an import with an explicit alias. A named import replaces
// a blank import of the same path.
func (im *ImportManager) AddNamedImport(alias, importPath string) {
	if importPath == "" {
		return
	}
	target := im.packageImports
	if isStandard(importPath) {
		target = im.standardImports
	}
	if existing, ok := target[importPath]; ok && existing != "_" && alias == "_" {
		return
	}
	if alias == path.Base(importPath) {
		alias = ""
	}
	target[importPath] = alias
}

// Alias returns the alias a path was added with
func (im *ImportManager) Alias(importPath string) (string, bool) {
	return im.lookup(importPath)
}

func (im *ImportManager) lookup(importPath string) (string, bool) {
	if alias, ok := im.standardImports[importPath]; ok {
		return alias, true
	}
	alias, ok := im.packageImports[importPath]
	return alias, ok
}

// Merge merges another import manager into this one
func (im *ImportManager) Merge(other *ImportManager) {
	for p, alias := range other.standardImports {
		im.AddNamedImport(alias, p)
	}
	for p, alias := range other.packageImports {
		im.AddNamedImport(alias, p)
	}
}

// GenerateImports generates the import section
func (im *ImportManager) GenerateImports() string {
	groups := [][]string{render(im.standardImports), render(im.packageImports)}

	var lines []string
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, group...)
	}

	switch len(lines) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("import %s\n", lines[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range lines {
		if line == "" {
			result.WriteString("\n")
			continue
		}
		result.WriteString(fmt.Sprintf("\t%s\n", line))
	}
	result.WriteString(")\n")
	return result.String()
}

func render(imports map[string]string) []string {
	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		if alias := imports[p]; alias != "" {
			lines = append(lines, fmt.Sprintf(`%s "%s"`, alias, p))
		} else {
			lines = append(lines, fmt.Sprintf(`"%s"`, p))
		}
	}
	return lines
}

func isStandard(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
