// Package main implements the dbml-catalyst CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/electwix/dbml-catalyst/internal/cli"
	"github.com/electwix/dbml-catalyst/internal/fileset"
	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/pipeline"
	"github.com/electwix/dbml-catalyst/internal/schema/diagnostic"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if cli.IsHelp(err) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Trace:   opts.Trace,
		Writer:  stderr,
	})

	env := pipeline.Environment{
		Logger:     logging.NewSlogAdapter(logger),
		FSResolver: fileset.NewOSResolver,
		Writer:     pipeline.NewOSWriter(),
	}

	pipe := pipeline.Pipeline{Env: env}
	summary, runErr := pipe.Run(ctx, pipeline.RunOptions{
		ConfigPath:     opts.ConfigPath,
		OutOverride:    opts.Out,
		TargetOverride: opts.Target,
		DryRun:         opts.DryRun,
		Check:          opts.Check,
		StrictConfig:   opts.StrictConfig,
		VerifySQL:      opts.VerifySQL,
	})

	formatter := &diagnostic.Formatter{ShowContext: opts.Verbose, ContextLines: 1}
	_ = formatter.Write(stderr, summary.Diagnostics)

	if runErr != nil {
		var diagErr *pipeline.DiagnosticsError
		if !errors.As(runErr, &diagErr) {
			_, _ = fmt.Fprintln(stderr, runErr.Error())
		}
		var writeErr *pipeline.WriteError
		if errors.As(runErr, &writeErr) {
			return 2
		}
		return 1
	}

	if opts.DryRun {
		for _, file := range summary.Files {
			_, _ = fmt.Fprintln(stdout, file.Path)
		}
	}
	return 0
}
