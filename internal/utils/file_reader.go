package utils

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"github.com/toyz/externgen/internal/errors"
)

// FileReader reads and parses source files, caching results until the file changes.
// A FileReader is safe for concurrent use; all parsed files share one token.FileSet.
type FileReader struct {
	fileSet      *token.FileSet
	astCache     *Cache[string, *ast.File]
	contentCache *Cache[string, []byte]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		fileSet:      token.NewFileSet(),
		astCache:     NewCache[string, *ast.File](),
		contentCache: NewCache[string, []byte](),
	}
}

// ParseGoFile parses a Go source file with comments. Callers must not modify the
// returned tree; it is shared with later readers of the same file.
func (fr *FileReader) ParseGoFile(filePath string) (*ast.File, error) {
	path := filepath.Clean(filePath)

	if cached, ok := fr.astCache.Get(path, path); ok {
		return cached, nil
	}

	file, err := parser.ParseFile(fr.fileSet, path, nil, parser.ParseComments)
	if err != nil {
		return nil, errors.WrapParseError(filepath.Base(path), err)
	}

	_ = fr.astCache.Set(path, file, path)
	return file, nil
}

// ParseGoSource parses Go source held in memory; the result is not cached
func (fr *FileReader) ParseGoSource(filename, source string) (*ast.File, error) {
	file, err := parser.ParseFile(fr.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, errors.WrapParseError(filename, err)
	}
	return file, nil
}

// ReadFile returns the contents of a file
func (fr *FileReader) ReadFile(filePath string) ([]byte, error) {
	path := filepath.Clean(filePath)

	if cached, ok := fr.contentCache.Get(path, path); ok {
		return cached, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	_ = fr.contentCache.Set(path, content, path)
	return content, nil
}

// FileSet returns the token.FileSet positions of parsed files belong to
func (fr *FileReader) FileSet() *token.FileSet {
	return fr.fileSet
}

// Location converts a position into a source location
func (fr *FileReader) Location(pos token.Pos) errors.SourceLocation {
	p := fr.fileSet.Position(pos)
	return errors.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

// Invalidate removes a file from the cache
func (fr *FileReader) Invalidate(filePath string) {
	path := filepath.Clean(filePath)
	fr.astCache.Delete(path)
	fr.contentCache.Delete(path)
}

// CacheStats returns the number of cached trees and contents
func (fr *FileReader) CacheStats() (astFiles, contentFiles int) {
	return fr.astCache.Size(), fr.contentCache.Size()
}
