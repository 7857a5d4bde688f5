package cli

import (
	"github.com/toyz/externgen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a cleaner removing the files accepted by generated
func NewCleaner(generated utils.GeneratedFilter) *Cleaner {
	return &Cleaner{
		fileProcessor: utils.NewFileProcessorWithReader(utils.NewFileReader(), generated),
	}
}

// CleanGeneratedFiles removes generated proxies, assembly companions and stubs
// below the given directories and returns the removed paths
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	roots, err := ResolveRoots(directories)
	if err != nil {
		return nil, err
	}
	return c.fileProcessor.CleanDirectories(roots)
}
