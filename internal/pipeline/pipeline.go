// Package pipeline orchestrates configuration loading, parsing, generation and
// writing of artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/electwix/dbml-catalyst/internal/codegen"
	"github.com/electwix/dbml-catalyst/internal/config"
	"github.com/electwix/dbml-catalyst/internal/fileset"
	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/diagnostic"
	"github.com/electwix/dbml-catalyst/internal/schema/grammar"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
	schemaparser "github.com/electwix/dbml-catalyst/internal/schema/parser"
)

// Environment captures external dependencies used by the pipeline.
type Environment struct {
	FSResolver   func(string) (fileset.Resolver, error)
	Logger       logging.Logger
	Writer       Writer
	SchemaParser diagnostic.SchemaParser // injectable schema parser
	Generator    codegen.Generator       // injectable generator
	Hooks        Hooks
}

// Writer writes generated files to persistent storage.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// Resetter is implemented by writers that can discard a previous generation.
// The pipeline resets the output directory before the first write.
type Resetter interface {
	Reset(dir string) error
}

// Pipeline orchestrates configuration loading, parsing, and code generation.
type Pipeline struct {
	Env Environment
}

// Summary captures generated files and diagnostics collected during a run.
type Summary struct {
	Plan        config.JobPlan
	Schema      *model.Schema
	Files       []codegen.File
	Diagnostics []diagnostic.Diagnostic
}

// RunOptions configures a pipeline execution. Zero values defer to the
// configuration file.
type RunOptions struct {
	ConfigPath     string
	OutOverride    string
	TargetOverride string
	DryRun         bool
	Check          bool
	StrictConfig   bool
	VerifySQL      bool
}

// DiagnosticsError indicates that an error-level diagnostic stopped the run.
type DiagnosticsError struct {
	Diagnostic diagnostic.Diagnostic
	Cause      error
}

func (e *DiagnosticsError) Error() string {
	d := e.Diagnostic
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Column, d.Message)
}

func (e *DiagnosticsError) Unwrap() error {
	return e.Cause
}

// WriteError wraps failures encountered while writing generated files.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewOSWriter returns a Writer that performs atomic writes on the local filesystem.
func NewOSWriter() Writer {
	return &osWriter{perm: 0o644}
}

type osWriter struct {
	perm fs.FileMode
}

// Reset removes dir with everything in it and recreates it empty.
func (w *osWriter) Reset(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

func (w *osWriter) WriteFile(path string, data []byte) error {
	if path == "" {
		return errors.New("pipeline: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".dbml-catalyst-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
		_ = tmp.Close()
	}()
	if w.perm != 0 {
		if err := tmp.Chmod(w.perm); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

// Run executes the pipeline according to the provided options.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (summary Summary, err error) {
	logger := logging.OrNop(p.Env.Logger)
	hooks := p.Env.Hooks
	diags := make([]diagnostic.Diagnostic, 0, 8)

	addDiag := func(d diagnostic.Diagnostic) {
		if d.Path == "" {
			d.Path = opts.ConfigPath
		}
		if d.Line <= 0 {
			d.Line = 1
		}
		if d.Column <= 0 {
			d.Column = 1
		}
		diags = append(diags, d)
	}
	fail := func(path string, cause error) error {
		d := diagnostic.Diagnostic{Path: path, Message: cause.Error(), Severity: diagnostic.SeverityError}
		addDiag(d)
		return &DiagnosticsError{Diagnostic: diags[len(diags)-1], Cause: cause}
	}

	defer func() {
		summary.Diagnostics = append([]diagnostic.Diagnostic(nil), diags...)
	}()

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = "dbml-catalyst.toml"
	}
	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		return summary, fail(configPath, fmt.Errorf("resolve config path: %w", err))
	}

	resolverFn := p.Env.FSResolver
	if resolverFn == nil {
		resolverFn = fileset.NewOSResolver
	}
	resolver, err := resolverFn(filepath.Dir(absConfigPath))
	if err != nil {
		return summary, fail(absConfigPath, fmt.Errorf("resolve filesystem: %w", err))
	}

	loadResult, err := config.Load(absConfigPath, config.LoadOptions{
		Strict:   opts.StrictConfig,
		Resolver: &resolver,
		Out:      opts.OutOverride,
		Target:   opts.TargetOverride,
	})
	if err != nil {
		return summary, fail(absConfigPath, err)
	}
	for _, warning := range loadResult.Warnings {
		logger.Warn("configuration warning", "message", warning)
		addDiag(diagnostic.Diagnostic{Path: absConfigPath, Message: warning, Severity: diagnostic.SeverityWarning})
	}

	plan := loadResult.Plan
	plan.Generation.VerifySQL = plan.Generation.VerifySQL || opts.VerifySQL
	plan.Generation.StrictCheck = plan.Generation.StrictCheck || opts.Check
	summary.Plan = plan
	logger.Debug("configuration loaded", "target", string(plan.Target), "inputs", len(plan.Inputs), "out", plan.Out)

	if err := call(ctx, hooks.BeforeParse, plan.Inputs); err != nil {
		return summary, fmt.Errorf("before parse: %w", err)
	}

	schemaParser := p.Env.SchemaParser
	if schemaParser == nil {
		schemaParser = schemaparser.New(schemaparser.WithLogger(logger))
	}
	var checker *grammar.Checker
	if plan.Generation.StrictCheck {
		checker, err = grammar.NewChecker(logger)
		if err != nil {
			return summary, fail(absConfigPath, fmt.Errorf("build grammar: %w", err))
		}
	}

	schema := model.NewSchema()
	for _, inputPath := range plan.Inputs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		contents, readErr := os.ReadFile(filepath.Clean(inputPath))
		if readErr != nil {
			return summary, fail(inputPath, fmt.Errorf("read input: %w", readErr))
		}

		parsed, parseDiags := schemaParser.Parse(inputPath, contents)
		for _, d := range parseDiags {
			addDiag(d)
		}
		if checker != nil {
			for _, d := range checker.Check(inputPath, contents, parsed) {
				addDiag(d)
			}
		}
		logger.Debug("parsed input", "path", inputPath, "tables", len(parsed.Tables), "diagnostics", len(parseDiags))
		schema.Merge(parsed)
	}
	summary.Schema = schema

	if err := call(ctx, hooks.AfterParse, schema); err != nil {
		return summary, fmt.Errorf("after parse: %w", err)
	}

	generator := p.Env.Generator
	if generator == nil {
		factory := codegen.NewGeneratorFactory(codegen.Options{
			Package:    plan.Package,
			Generation: plan.Generation,
			Logger:     logger,
		})
		generator, err = factory.Create(plan.Target)
		if err != nil {
			return summary, fail(absConfigPath, err)
		}
	}

	generated, err := generator.Generate(ctx, schema)
	if err != nil {
		return summary, fmt.Errorf("code generation: %w", err)
	}

	files := make([]codegen.File, 0, len(generated))
	for _, file := range generated {
		if !filepath.IsLocal(file.Path) {
			return summary, fmt.Errorf("code generation: artifact path %q escapes the output directory", file.Path)
		}
		files = append(files, codegen.File{Path: filepath.Join(plan.Out, file.Path), Content: file.Content})
	}
	summary.Files = files

	if err := call(ctx, hooks.AfterGenerate, files); err != nil {
		return summary, fmt.Errorf("after generate: %w", err)
	}

	if opts.DryRun {
		logger.Info("dry run", "files", len(files))
		return summary, nil
	}

	if err := call(ctx, hooks.BeforeWrite, files); err != nil {
		return summary, fmt.Errorf("before write: %w", err)
	}

	writer := p.Env.Writer
	if writer == nil {
		writer = NewOSWriter()
	}
	if resetter, ok := writer.(Resetter); ok {
		if err := resetter.Reset(plan.Out); err != nil {
			return summary, &WriteError{Path: plan.Out, Err: err}
		}
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := writer.WriteFile(file.Path, file.Content); err != nil {
			return summary, &WriteError{Path: file.Path, Err: err}
		}
	}
	logger.Info("generated files", "count", len(files), "out", plan.Out)

	summary.Diagnostics = append([]diagnostic.Diagnostic(nil), diags...)
	if err := call(ctx, hooks.AfterWrite, summary); err != nil {
		return summary, fmt.Errorf("after write: %w", err)
	}
	return summary, nil
}
