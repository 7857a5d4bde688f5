package parser

import "github.com/toyz/externgen/pkg/extern"

const (
	// DefaultExternImport is the import path of the runtime package
	DefaultExternImport = extern.ImportPath

	// dotImport and blankImport are the import names that bring no qualifier
	dotImport   = "."
	blankImport = "_"

	// dropHook is the optional cleanup method of an implementation type
	dropHook = "Drop"
)

// markerTypes are the runtime types that spell Self occurrences. Their qualifier
// is removed so the descriptions use the bare model syntax.
var markerTypes = []string{"Self", "Ref", "ConstPtr", "MutPtr"}
