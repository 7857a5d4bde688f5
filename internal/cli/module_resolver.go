package cli

import (
	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/utils"
)

// ModuleResolver handles resolving Go module information for package directories
type ModuleResolver struct {
	goMod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{goMod: utils.NewGoModParser(utils.NewFileReader())}
}

// ResolveModule returns the module enclosing dir
func (r *ModuleResolver) ResolveModule(dir string) (*utils.Module, error) {
	mod, err := r.goMod.FindModule(dir)
	if err != nil {
		return nil, errors.WrapConfigurationError("go.mod", "locate", err).
			WithContext("directory", dir).
			WithSuggestions(
				"Run externgen inside a Go module",
				"Create one with `go mod init <module-path>`",
			)
	}
	return mod, nil
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(packageDir string) (string, error) {
	mod, err := r.ResolveModule(packageDir)
	if err != nil {
		return "", err
	}
	importPath, err := mod.ImportPath(packageDir)
	if err != nil {
		return "", errors.WrapConfigurationError("go.mod", "resolve import path from", err).
			WithContext("directory", packageDir)
	}
	return importPath, nil
}

// GroupByModule groups package directories by the root of their module. Order
// within a group follows dirs.
func (r *ModuleResolver) GroupByModule(dirs []string) (map[string][]string, map[string]*utils.Module, error) {
	groups := make(map[string][]string)
	modules := make(map[string]*utils.Module)
	for _, dir := range dirs {
		mod, err := r.ResolveModule(dir)
		if err != nil {
			return nil, nil, err
		}
		groups[mod.Root] = append(groups[mod.Root], dir)
		modules[mod.Root] = mod
	}
	return groups, modules, nil
}
