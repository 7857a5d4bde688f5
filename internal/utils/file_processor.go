package utils

import (
	"fmt"
	"go/ast"
	"go/build"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/externgen/internal/errors"
)

// GeneratedFilter reports whether a file name belongs to generator output
type GeneratedFilter func(name string) bool

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader  *FileReader
	isGenerated GeneratedFilter
}

// NewFileProcessor creates a file processor that treats no file as generated
func NewFileProcessor() *FileProcessor {
	return NewFileProcessorWithReader(NewFileReader(), nil)
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader, generated GeneratedFilter) *FileProcessor {
	if generated == nil {
		generated = func(string) bool { return false }
	}
	return &FileProcessor{
		fileReader:  reader,
		isGenerated: generated,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// SourceFileFilter accepts hand written .go files that build for the host,
// excluding tests and generator output
func (fp *FileProcessor) SourceFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || fp.isGenerated(name) {
			return false
		}
		ok, err := build.Default.MatchFile(filepath.Dir(path), name)
		return err == nil && ok
	}
}

// GeneratedFileFilter accepts generator output
func (fp *FileProcessor) GeneratedFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && fp.isGenerated(info.Name())
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// hidden and underscore directories are ignored by the go tool as well
		if (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// ScanDirectoriesWithGoFiles scans directories and returns those containing Go files
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	var packageDirs []string
	visited := make(map[string]bool)

	for _, rootDir := range rootDirs {
		dirs, err := fp.scanDirectoryRecursive(rootDir, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, dirs...)
	}

	return packageDirs, nil
}

func (fp *FileProcessor) scanDirectoryRecursive(dir string, visited map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", dir, err)
	}

	if visited[absDir] {
		return nil, nil
	}
	visited[absDir] = true

	var packageDirs []string

	hasGoFiles, err := fp.HasGoFiles(dir)
	if err != nil {
		return nil, err
	}
	if hasGoFiles {
		packageDirs = append(packageDirs, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	directoryFilter := DefaultDirectoryFilter()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		entryPath := filepath.Join(dir, entry.Name())
		if !directoryFilter(entryPath, entry) {
			continue
		}
		// nested modules are scanned only when named explicitly
		if _, err := os.Stat(filepath.Join(entryPath, "go.mod")); err == nil {
			continue
		}

		subDirs, err := fp.scanDirectoryRecursive(entryPath, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, subDirs...)
	}

	return packageDirs, nil
}

// HasGoFiles checks if a directory contains any hand written .go files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errors.WrapFileSystemError("read directory", dir, err)
	}

	fileFilter := fp.SourceFileFilter()
	for _, entry := range entries {
		if fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}

	return false, nil
}

// ParseDirectoryFiles parses the hand written Go files of one package directory.
// Files are returned in name order.
func (fp *FileProcessor) ParseDirectoryFiles(dirPath string) ([]*ast.File, string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, "", errors.WrapFileSystemError("read directory", dirPath, err)
	}

	var files []*ast.File
	var packageName string
	fileFilter := fp.SourceFileFilter()

	for _, entry := range entries {
		filePath := filepath.Join(dirPath, entry.Name())
		if !fileFilter(filePath, entry) {
			continue
		}

		file, err := fp.fileReader.ParseGoFile(filePath)
		if err != nil {
			return nil, "", err
		}

		if packageName == "" {
			packageName = file.Name.Name
		} else if file.Name.Name != packageName {
			return nil, "", fmt.Errorf("multiple packages found in directory %s: %s and %s", dirPath, packageName, file.Name.Name)
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, "", fmt.Errorf("no Go files found in directory %s", dirPath)
	}

	sort.Slice(files, func(i, j int) bool {
		return fp.fileReader.FileSet().File(files[i].Pos()).Name() < fp.fileReader.FileSet().File(files[j].Pos()).Name()
	})
	return files, packageName, nil
}

// CleanDirectories removes generator output from the directory trees. Nested
// modules are left alone, as in ScanDirectoriesWithGoFiles.
func (fp *FileProcessor) CleanDirectories(baseDirs []string) ([]string, error) {
	var removedFiles []string
	filter := fp.GeneratedFileFilter()
	directoryFilter := DefaultDirectoryFilter()

	for _, baseDir := range baseDirs {
		startDir := "."
		if baseDir != "" {
			startDir = baseDir
		}

		err := filepath.WalkDir(startDir, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if entry.IsDir() {
				if path == startDir {
					return nil
				}
				if !directoryFilter(path, entry) {
					return filepath.SkipDir
				}
				if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
					return filepath.SkipDir
				}
				return nil
			}
			if !filter(path, entry) {
				return nil
			}
			if err := os.Remove(path); err != nil {
				return errors.WrapFileSystemError("remove", path, err)
			}
			fp.fileReader.Invalidate(path)
			removedFiles = append(removedFiles, path)
			return nil
		})
		if err != nil {
			return removedFiles, err
		}
	}

	return removedFiles, nil
}

// FileReader returns the underlying FileReader
func (fp *FileProcessor) FileReader() *FileReader {
	return fp.fileReader
}
