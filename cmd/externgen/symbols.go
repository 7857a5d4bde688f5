package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/externgen/internal/cli"
)

func newSymbolsCmd(opts *options) *cobra.Command {
	var (
		dir     string
		implDir string
		isCopy  bool
	)

	cmd := &cobra.Command{
		Use:   "symbols (--dir <package> [--impl <package>] | <module-path> <interface> <methods...>)",
		Short: "Print the link symbols of an extern interface",
		Long: `Prints the symbol names shared by a proxy and its stubs. With --dir the
interfaces declared in the package directory are read from source; otherwise the
names are derived from a module path, an interface name and method names, which
is what an implementation in another repository would link against.

With --impl the implementations bound in that package are compared with the
interfaces read by --dir; symbols defined on only one side are listed and the
command fails.`,
		Example: `  externgen symbols --dir ./hello
  externgen symbols --dir ./hello --impl ./impl
  externgen symbols example.com/app/hello Hello New Hello`,
		Args: func(cmd *cobra.Command, args []string) error {
			if implDir != "" && dir == "" {
				return fmt.Errorf("--impl requires --dir")
			}
			if dir != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				table, err := cli.DeriveSymbols(cli.SymbolRequest{
					Module:    args[0],
					Interface: args[1],
					Methods:   args[2:],
					Copy:      isCopy,
				})
				if err != nil {
					return configError(opts, err)
				}
				return cli.WriteSymbolTables(opts.stdout, table)
			}

			cfg, err := loadConfig(cmd, opts, []string{dir})
			if err != nil {
				return configError(opts, err)
			}
			tables, err := cli.DirectorySymbols(cfg, dir)
			if err != nil {
				cli.NewDiagnosticReporter(newDiagnostics(cfg, opts)).ReportError(err)
				return reportedError{err}
			}
			if implDir == "" {
				return cli.WriteSymbolTables(opts.stdout, tables...)
			}

			mismatches, err := cli.CompareSymbols(cfg, dir, implDir)
			if err != nil {
				cli.NewDiagnosticReporter(newDiagnostics(cfg, opts)).ReportError(err)
				return reportedError{err}
			}
			if len(mismatches) > 0 {
				if err := cli.WriteSymbolMismatches(opts.stderr, mismatches); err != nil {
					return err
				}
				return reportedError{fmt.Errorf("%d implementations would not link", len(mismatches))}
			}
			return cli.WriteSymbolTables(opts.stdout, tables...)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "package directory declaring extern interfaces")
	cmd.Flags().StringVar(&implDir, "impl", "", "package directory of implementations to check against --dir")
	cmd.Flags().BoolVar(&isCopy, "copy", false, "the interface requests Copy, so no destructor symbol exists")
	return cmd
}
