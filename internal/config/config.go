// Package config defines the compiler's merged configuration: compiled-in
// defaults, an optional project file, and CLI flags, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
)

// DumpFormat selects how a compiled module is written out by the compile
// subcommand's --dump-ir flag.
type DumpFormat string

const (
	DumpText   DumpFormat = "text"
	DumpBinary DumpFormat = "binary"
)

// Config is the compiler's full set of user-tunable knobs. Zero value is
// not meaningful on its own; use Default to get one.
type Config struct {
	NoColor      bool       `yaml:"no_color"`
	DumpFormat   DumpFormat `yaml:"dump_format"`
	Verbose      bool       `yaml:"verbose"`
	Quiet        bool       `yaml:"quiet"`
	EntryProcess string     `yaml:"entry_procedure"`
}

// Default returns the compiled-in baseline, the lowest-precedence layer of
// the merge order this package documents.
func Default() Config {
	return Config{
		NoColor:      false,
		DumpFormat:   DumpText,
		Verbose:      false,
		Quiet:        false,
		EntryProcess: "main",
	}
}

// LoadFile merges a `.dwsconfig.yaml` project file over cfg, returning cfg
// unchanged if path does not exist (the project file is always optional).
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers every Config field as a persistent pflag on fs,
// defaulting each flag to cfg's current value (so the project-file layer
// applied before this call still wins unless the user passes the flag
// explicitly), and returns a closure that reads the parsed flag values
// back into a fresh Config.
func BindFlags(fs *pflag.FlagSet, cfg Config) func() Config {
	noColor := fs.Bool("no-color", cfg.NoColor, "disable colored diagnostic output")
	dumpFormat := fs.String("dump-format", string(cfg.DumpFormat), "IR dump format: text or binary")
	verbose := fs.BoolP("verbose", "v", cfg.Verbose, "verbose implementer-facing tracing")
	quiet := fs.Bool("quiet", cfg.Quiet, "do not print compiler warnings from compile and run")
	entry := fs.String("entry-procedure", cfg.EntryProcess, "override the compiled entry procedure name")

	return func() Config {
		return Config{
			NoColor:      *noColor,
			DumpFormat:   DumpFormat(*dumpFormat),
			Verbose:      *verbose,
			Quiet:        *quiet,
			EntryProcess: *entry,
		}
	}
}
