package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/utils"
)

// DirectoryScanner handles recursive directory scanning for Go packages
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a scanner that skips generated files
func NewDirectoryScanner(generated utils.GeneratedFilter) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessorWithReader(utils.NewFileReader(), generated),
	}
}

// ResolveRoots turns directory arguments into absolute paths. Go-style
// patterns like "./..." are accepted and resolve to their base directory.
func ResolveRoots(rootDirs []string) ([]string, error) {
	var roots []string
	seen := make(map[string]bool)

	for _, rootDir := range rootDirs {
		baseDir := rootDir
		if baseDir == "..." {
			baseDir = "."
		} else if strings.HasSuffix(baseDir, "/...") {
			baseDir = strings.TrimSuffix(baseDir, "/...")
			if baseDir == "" {
				baseDir = "/"
			}
		}

		cleanPath, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, errors.WrapWithOperation("resolve", baseDir, err)
		}
		info, err := os.Stat(cleanPath)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", cleanPath, err)
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.ConfigurationErrorCode, "%s is not a directory", rootDir)
		}
		if !seen[cleanPath] {
			seen[cleanPath] = true
			roots = append(roots, cleanPath)
		}
	}

	return roots, nil
}

// ScanDirectories recursively scans the provided directories for Go packages.
// Returns the directories that contain hand written Go files.
func (s *DirectoryScanner) ScanDirectories(rootDirs []string) ([]string, error) {
	roots, err := ResolveRoots(rootDirs)
	if err != nil {
		return nil, err
	}
	return s.fileProcessor.ScanDirectoriesWithGoFiles(roots)
}
