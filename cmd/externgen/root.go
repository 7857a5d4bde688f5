package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/toyz/externgen/internal/cli"
	"github.com/toyz/externgen/internal/utils"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

// options holds the persistent flags shared by every command
type options struct {
	configFile string
	stdout     io.Writer
	stderr     io.Writer
}

// flagKeys maps config keys to the flags that override them
var flagKeys = map[string]string{
	"verbose":       "verbose",
	"quiet":         "quiet",
	"level":         "level",
	"goarch":        "goarch",
	"extern_import": "extern-import",
	"proxy_suffix":  "proxy-suffix",
	"stub_suffix":   "stub-suffix",
	"concurrency":   "concurrency",
	"check":         "check",
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// reportedError marks an error the diagnostic reporter already printed
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "externgen",
		Short: "Generate link-time resolved interface proxies",
		Long: `externgen lets one package declare an interface and another package implement it
without either importing the other. The declaring package gets a proxy type whose
methods are resolved by the linker; the implementing package gets stubs exporting
those symbols.

Annotate the interface:

  //extern::interface
  type Hello interface {
      New(num int) extern.Self
      Hello(this extern.Ref[extern.Self])
  }

and the implementation, in a different package:

  //extern::impl -Interface=example.com/app/hello.Hello
  type HelloImpl struct{ num int }

then run externgen generate ./...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is ./"+cli.ConfigName+".{toml,yaml,json} when present)")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.BoolP("quiet", "q", false, "only show errors")
	flags.String("level", "info", "diagnostic level: silent, error, warn, info, verbose or debug")
	flags.String("goarch", "", "architecture used to verify implementation sizes (default is the host)")
	flags.String("extern-import", "", "import path of the extern runtime package")
	flags.String("proxy-suffix", "", "file name suffix of generated proxies")
	flags.String("stub-suffix", "", "file name suffix of generated stubs")

	root.AddCommand(
		newGenerateCmd(opts),
		newCleanCmd(opts),
		newSymbolsCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// loadConfig merges defaults, the config file, EXTERNGEN_* variables and the
// flags that were set explicitly, in increasing order of precedence.
func loadConfig(cmd *cobra.Command, opts *options, dirs []string) (cli.Config, error) {
	v := cli.NewViper()
	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return cli.Config{}, err
		}
	}
	if len(dirs) > 0 {
		v.Set("directories", dirs)
	}

	wd, err := os.Getwd()
	if err != nil {
		return cli.Config{}, err
	}
	cfg, _, err := cli.LoadConfig(v, opts.configFile, wd)
	return cfg, err
}

func newDiagnostics(cfg cli.Config, opts *options) *utils.DiagnosticSystem {
	d := utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	d.SetOutput(opts.stdout, opts.stderr)
	return d
}

// configError reports a configuration failure through the reporter at the
// default level
func configError(opts *options, err error) error {
	d := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	d.SetOutput(opts.stdout, opts.stderr)
	cli.NewDiagnosticReporter(d).ReportError(err)
	return reportedError{err}
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the externgen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "externgen %s\n", buildVersion())
		},
	}
}

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
