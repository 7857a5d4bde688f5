package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportManagerGroups(t *testing.T) {
	im := NewImportManager()
	im.AddBlankImport("unsafe")
	im.AddImport("fmt")
	im.AddNamedImport("extern", "github.com/toyz/externgen/pkg/extern")
	im.AddNamedImport("hello", "example.com/hello")

	expected := "import (\n" +
		"\t\"fmt\"\n" +
		"\t_ \"unsafe\"\n" +
		"\n" +
		"\t\"example.com/hello\"\n" +
		"\t\"github.com/toyz/externgen/pkg/extern\"\n" +
		")\n"
	assert.Equal(t, expected, im.GenerateImports())
}

func TestImportManagerNamedReplacesBlank(t *testing.T) {
	im := NewImportManager()
	im.AddBlankImport("unsafe")
	im.AddImport("unsafe")
	im.AddBlankImport("unsafe")

	assert.Equal(t, "import \"unsafe\"\n", im.GenerateImports())
}

func TestImportManagerAliases(t *testing.T) {
	im := NewImportManager()
	im.AddNamedImport("api", "example.com/hello/v2")

	alias, ok := im.Alias("example.com/hello/v2")
	assert.True(t, ok)
	assert.Equal(t, "api", alias)

	other := NewImportManager()
	other.AddImport("io")
	im.Merge(other)
	assert.Contains(t, im.GenerateImports(), "api \"example.com/hello/v2\"")
	assert.Contains(t, im.GenerateImports(), "\"io\"")
	assert.Empty(t, NewImportManager().GenerateImports())
}
