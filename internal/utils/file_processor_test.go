package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedSuffix(name string) bool {
	return strings.HasSuffix(name, "_extern_proxy.go") || strings.HasSuffix(name, "_extern_proxy.s")
}

func TestScanDirectoriesWithGoFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"go.mod":                           "module example.com/app\n",
		"hello/hello.go":                   "package hello\n",
		"hello/hello_extern_proxy.go":      "package hello\n",
		"only_tests/a_test.go":             "package only\n",
		"only_generated/x_extern_proxy.go": "package x\n",
		"vendor/dep/dep.go":                "package dep\n",
		"_examples/ex/ex.go":               "package ex\n",
		"testdata/fixture.go":              "package fixture\n",
		"nested/go.mod":                    "module example.com/nested\n",
		"nested/n.go":                      "package nested\n",
		"deep/er/pkg.go":                   "package er\n",
	})

	fp := NewFileProcessorWithReader(NewFileReader(), generatedSuffix)
	dirs, err := fp.ScanDirectoriesWithGoFiles([]string{root})
	require.NoError(t, err)

	var rel []string
	for _, d := range dirs {
		r, err := filepath.Rel(root, d)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.ElementsMatch(t, []string{"hello", "deep/er"}, rel)
}

func TestParseDirectoryFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"b.go":              "package hello\n",
		"a.go":              "package hello\n",
		"a_extern_proxy.go": "package hello\n\nnot go\n",
		"a_test.go":         "package hello_test\n",
	})

	fp := NewFileProcessorWithReader(NewFileReader(), generatedSuffix)
	files, name, err := fp.ParseDirectoryFiles(root)
	require.NoError(t, err)
	assert.Equal(t, "hello", name)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "a.go"), fp.FileReader().FileSet().File(files[0].Pos()).Name())
}

func TestParseDirectoryFilesErrors(t *testing.T) {
	fp := NewFileProcessor()

	mixed := writeFiles(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})
	_, _, err := fp.ParseDirectoryFiles(mixed)
	assert.ErrorContains(t, err, "multiple packages")

	_, _, err = fp.ParseDirectoryFiles(t.TempDir())
	assert.ErrorContains(t, err, "no Go files")
}

func TestCleanDirectories(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"hello/hello.go":              "package hello\n",
		"hello/hello_extern_proxy.go": "package hello\n",
		"hello/hello_extern_proxy.s":  "",
		"vendor/v/v_extern_proxy.go":  "package v\n",
	})

	fp := NewFileProcessorWithReader(NewFileReader(), generatedSuffix)
	removed, err := fp.CleanDirectories([]string{root})
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	_, err = os.Stat(filepath.Join(root, "hello", "hello.go"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "hello", "hello_extern_proxy.go"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "vendor", "v", "v_extern_proxy.go"))
	assert.NoError(t, err, "vendored output is left alone")
}
