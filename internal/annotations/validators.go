package annotations

import (
	"fmt"
	"go/token"

	"golang.org/x/mod/module"
)

// ValidateIdentifier validates a Go identifier
func ValidateIdentifier(v string) error {
	if !token.IsIdentifier(v) {
		return fmt.Errorf("%q is not a valid Go identifier", v)
	}
	return nil
}

// ValidateImportPath validates a module or package import path
func ValidateImportPath(v string) error {
	return module.CheckImportPath(v)
}

// ValidateQualifiedName validates an import/path.Name reference
func ValidateQualifiedName(v string) error {
	importPath, name := splitQualified(v)
	if importPath == "" {
		return fmt.Errorf("%q must be of the form import/path.Name", v)
	}
	if err := ValidateImportPath(importPath); err != nil {
		return err
	}
	if !token.IsExported(name) || !token.IsIdentifier(name) {
		return fmt.Errorf("%q is not an exported interface name", name)
	}
	return nil
}
