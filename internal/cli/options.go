// Package cli parses dbml-catalyst command-line flags.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// DefaultConfig is read when -config is not given.
const DefaultConfig = "dbml-catalyst.toml"

// Options holds parsed flags. Empty Out and Target leave the config values
// in place; the boolean switches only ever turn features on.
type Options struct {
	ConfigPath   string
	Out          string
	Target       string
	DryRun       bool
	Check        bool
	StrictConfig bool
	VerifySQL    bool
	Verbose      bool
	Trace        bool
	Args         []string
}

func Parse(args []string) (Options, error) {
	opts := Options{
		ConfigPath: DefaultConfig,
	}

	fs := flag.NewFlagSet("dbml-catalyst", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to configuration file (.toml, .yaml or .yml)")
	fs.StringVar(&opts.ConfigPath, "c", opts.ConfigPath, "Path to configuration file (.toml, .yaml or .yml)")
	fs.StringVar(&opts.Out, "out", "", "Override output directory; relative paths are resolved against the config directory")
	fs.StringVar(&opts.Target, "target", "", "Override emission target: go, csharp, sql or dbml")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Generate without writing files and print the paths")
	fs.BoolVar(&opts.Check, "check", false, "Run the strict grammar check and report its findings")
	fs.BoolVar(&opts.StrictConfig, "strict-config", false, "Treat unknown configuration keys as errors")
	fs.BoolVar(&opts.VerifySQL, "verify-sql", false, "Execute generated SQL against an in-memory SQLite database")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")
	fs.BoolVar(&opts.Trace, "trace", false, "Log every parser decision")

	if err := fs.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage(fs))
	}

	opts.Args = fs.Args()
	if len(opts.Args) > 0 {
		return Options{}, fmt.Errorf("unexpected arguments: %s\n\n%s", strings.Join(opts.Args, " "), Usage(fs))
	}
	return opts, nil
}

// IsHelp reports whether err came from -h or -help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
