package cli

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/mod/module"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/generator"
	"github.com/toyz/externgen/internal/layout"
	"github.com/toyz/externgen/internal/parser"
	"github.com/toyz/externgen/internal/utils"
)

const (
	// ConfigName is the base name of the optional project config file
	ConfigName = ".externgen"
	// EnvPrefix prefixes every environment override, e.g. EXTERNGEN_GOARCH
	EnvPrefix = "EXTERNGEN"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan. A trailing /... is accepted
	// and means the same as the bare directory; scanning is always recursive.
	Directories []string `mapstructure:"directories"`

	// GOARCH selects the word size used to verify implementation sizes.
	// Empty means the host architecture.
	GOARCH string `mapstructure:"goarch"`

	// Level is the diagnostic level name; Verbose and Quiet take precedence
	Level   string `mapstructure:"level"`
	Verbose bool   `mapstructure:"verbose"`
	Quiet   bool   `mapstructure:"quiet"`

	ExternImport string `mapstructure:"extern_import"`
	ProxySuffix  string `mapstructure:"proxy_suffix"`
	StubSuffix   string `mapstructure:"stub_suffix"`

	// Concurrency bounds the number of packages processed at once
	Concurrency int `mapstructure:"concurrency"`

	// Check reports stale output instead of writing it
	Check bool `mapstructure:"check"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Directories:  []string{"./..."},
		Level:        "info",
		ExternImport: generator.DefaultExternImport,
		ProxySuffix:  generator.DefaultProxySuffix,
		StubSuffix:   generator.DefaultStubSuffix,
		Concurrency:  runtime.GOMAXPROCS(0),
	}
}

// NewViper returns a viper instance seeded with defaults and EXTERNGEN_* lookup
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("directories", defaults.Directories)
	v.SetDefault("goarch", defaults.GOARCH)
	v.SetDefault("level", defaults.Level)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("quiet", defaults.Quiet)
	v.SetDefault("extern_import", defaults.ExternImport)
	v.SetDefault("proxy_suffix", defaults.ProxySuffix)
	v.SetDefault("stub_suffix", defaults.StubSuffix)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("check", defaults.Check)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file into v and decodes the result. An explicit
// path must exist; otherwise .externgen.{toml,yaml,yml,json} is looked up in
// searchDir and silently skipped when absent. The second result is the file
// that was read, empty when none was.
func LoadConfig(v *viper.Viper, path, searchDir string) (Config, string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(searchDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, "", errors.WrapConfigurationError(configLabel(path), "read", err).
				WithSuggestion("Check that the file exists and contains valid TOML, YAML or JSON")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", errors.WrapConfigurationError(configLabel(v.ConfigFileUsed()), "decode", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

func configLabel(path string) string {
	if path == "" {
		return ConfigName
	}
	return path
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) *errors.BaseError {
		return errors.Newf(errors.ConfigurationErrorCode, format, args...)
	}

	if len(c.Directories) == 0 {
		return invalid("at least one directory is required").
			WithSuggestion("Pass a directory such as ./... or set directories in " + ConfigName + ".toml")
	}
	if c.Verbose && c.Quiet {
		return invalid("verbose and quiet are mutually exclusive")
	}
	if _, err := utils.ParseDiagnosticLevel(c.Level); err != nil {
		return invalid("%v", err).
			WithSuggestion("Use one of silent, error, warn, info, verbose or debug")
	}
	if c.Concurrency < 1 {
		return invalid("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := layout.Sizes(c.GOARCH); err != nil {
		return errors.Wrap(errors.ConfigurationErrorCode, "invalid goarch", err)
	}
	if err := module.CheckImportPath(c.ExternImport); err != nil {
		return errors.Wrap(errors.ConfigurationErrorCode, "invalid extern_import", err)
	}
	for _, s := range []struct{ name, value string }{{"proxy_suffix", c.ProxySuffix}, {"stub_suffix", c.StubSuffix}} {
		if s.value == "" || strings.ContainsAny(s.value, `/\.`) {
			return invalid("%s %q must be a non-empty file name fragment", s.name, s.value)
		}
	}
	if c.ProxySuffix == c.StubSuffix {
		return invalid("proxy_suffix and stub_suffix must differ, both are %q", c.ProxySuffix)
	}
	return nil
}

// DiagnosticLevel returns the effective diagnostic level
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	}
	level, _ := utils.ParseDiagnosticLevel(c.Level)
	return level
}

// GeneratorOptions returns the options of the code generator
func (c Config) GeneratorOptions() generator.Options {
	return generator.Options{
		ExternImport: c.ExternImport,
		ProxySuffix:  c.ProxySuffix,
		StubSuffix:   c.StubSuffix,
		GOARCH:       c.GOARCH,
	}
}

// ParserOptions returns the options of the front end
func (c Config) ParserOptions(generated utils.GeneratedFilter) parser.Options {
	return parser.Options{
		ExternImport: c.ExternImport,
		GOARCH:       c.GOARCH,
		IsGenerated:  generated,
	}
}

// String renders the effective configuration for verbose output
func (c Config) String() string {
	goarch := c.GOARCH
	if goarch == "" {
		goarch = runtime.GOARCH + " (host)"
	}
	return fmt.Sprintf("directories=%v goarch=%s extern_import=%s proxy_suffix=%s stub_suffix=%s concurrency=%d check=%t",
		c.Directories, goarch, c.ExternImport, c.ProxySuffix, c.StubSuffix, c.Concurrency, c.Check)
}
