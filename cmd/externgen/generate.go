package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/externgen/internal/cli"
)

func newGenerateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [directories...]",
		Short: "Generate proxies and stubs for annotated packages",
		Long: `Recursively scans the directories for packages with //extern:: annotations and
writes a proxy (.go and .s) next to every extern interface and a stub file next
to every implementation. Generated files no declaration produces anymore are
removed. Directories default to ./... and accept Go-style patterns.`,
		Example: `  externgen generate ./...
  externgen generate --goarch 386 ./internal/...
  externgen generate --check ./...   # fail when generated files are stale`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, args)
			if err != nil {
				return configError(opts, err)
			}

			diagnostics := newDiagnostics(cfg, opts)
			generator := cli.NewGenerator(cfg, diagnostics)
			summary, err := generator.Run(cmd.Context())
			if err != nil {
				generator.Reporter().ReportError(err)
				return reportedError{err}
			}
			generator.Reporter().ReportSuccess(summary)
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "report out of date generated files instead of writing them")
	cmd.Flags().IntP("concurrency", "j", 0, "packages processed in parallel (default is GOMAXPROCS)")
	return cmd
}
