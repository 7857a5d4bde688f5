package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/externgen/internal/cli"
	"github.com/toyz/externgen/internal/generator"
)

func newCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "clean [directories...]",
		Short:   "Delete generated proxies and stubs",
		Example: `  externgen clean ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, args)
			if err != nil {
				return configError(opts, err)
			}

			diagnostics := newDiagnostics(cfg, opts)
			reporter := cli.NewDiagnosticReporter(diagnostics)
			codeGenerator := generator.NewGeneratorWithOptions(cfg.GeneratorOptions())

			removed, err := cli.NewCleaner(codeGenerator.IsGenerated).CleanGeneratedFiles(cfg.Directories)
			for _, path := range removed {
				diagnostics.Verbose("removed %s", path)
			}
			if err != nil {
				reporter.ReportError(err)
				return reportedError{err}
			}
			diagnostics.Success("Removed %d generated files", len(removed))
			return nil
		},
	}
}
