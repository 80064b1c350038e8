// Package config loads and validates the dbml-catalyst configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/electwix/dbml-catalyst/internal/fileset"
)

// Target identifies the artifact family to emit.
type Target string

const (
	// TargetGo emits Go structs and registry.go.
	TargetGo Target = "go"
	// TargetCSharp emits Entity Framework classes and a DbContext.
	TargetCSharp Target = "csharp"
	// TargetSQL emits SQLite CREATE TABLE statements.
	TargetSQL Target = "sql"
	// TargetDBML emits normalized DBML.
	TargetDBML Target = "dbml"
)

var validTargets = map[Target]struct{}{
	TargetGo:     {},
	TargetCSharp: {},
	TargetSQL:    {},
	TargetDBML:   {},
}

// ParseTarget validates a target name. The empty string selects TargetGo.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TargetGo, nil
	}
	if _, ok := validTargets[t]; !ok {
		return "", fmt.Errorf("unsupported target %q (want go, csharp, sql or dbml)", s)
	}
	return t, nil
}

// Default names applied when package is omitted.
const (
	DefaultGoPackage       = "models"
	DefaultCSharpNamespace = "Models"
	DefaultContextName     = "DataContext"
)

// GenerationOptions captures the [generation] table.
type GenerationOptions struct {
	EmitJSONTags        bool   `toml:"emit_json_tags" yaml:"emit_json_tags"`
	EmitPointersForNull bool   `toml:"emit_pointers_for_null" yaml:"emit_pointers_for_null"`
	EmitConstructors    *bool  `toml:"emit_constructors" yaml:"emit_constructors"`
	ContextName         string `toml:"context_name" yaml:"context_name"`
	VerifySQL           bool   `toml:"verify_sql" yaml:"verify_sql"`
	StrictCheck         bool   `toml:"strict_check" yaml:"strict_check"`
}

// Config mirrors the configuration file.
type Config struct {
	Inputs     []string          `toml:"inputs" yaml:"inputs"`
	Out        string            `toml:"out" yaml:"out"`
	Target     string            `toml:"target" yaml:"target"`
	Package    string            `toml:"package" yaml:"package"`
	Generation GenerationOptions `toml:"generation" yaml:"generation"`
}

// Generation is the normalized form of GenerationOptions.
type Generation struct {
	EmitJSONTags        bool
	EmitPointersForNull bool
	EmitConstructors    bool
	ContextName         string
	VerifySQL           bool
	StrictCheck         bool
}

// JobPlan is the fully-resolved configuration used by downstream stages.
type JobPlan struct {
	// Package is the Go package or C# namespace of generated code.
	Package string
	// Out is the output directory, joined to the config file's directory.
	Out    string
	Target Target
	// Inputs lists DBML files in merge order.
	Inputs     []string
	Generation Generation
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	// Strict turns unknown keys into errors.
	Strict   bool
	Resolver *fileset.Resolver
	// Out and Target override the file's values when non-empty.
	Out    string
	Target string
}

// Result wraps a loaded job plan alongside any non-fatal warnings.
type Result struct {
	Plan     JobPlan
	Warnings []string
}

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatTOML
	}
}

// Load reads, validates, and resolves a configuration file. The format is
// chosen by extension: .yaml and .yml are YAML, everything else TOML.
func Load(path string, opts LoadOptions) (Result, error) {
	var res Result

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	fmtKind := formatFor(path)

	unknownKeys, err := collectUnknownKeys(fmtKind, data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if len(unknownKeys) > 0 {
		slices.Sort(unknownKeys)
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknownKeys, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	cfg, err := decode(fmtKind, data, opts.Strict)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if opts.Out != "" {
		cfg.Out = opts.Out
	}
	if opts.Target != "" {
		cfg.Target = opts.Target
	}

	target, err := ParseTarget(cfg.Target)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	pkg, err := resolvePackage(path, target, cfg.Package)
	if err != nil {
		return res, err
	}

	out, err := resolveOut(path, cfg.Out)
	if err != nil {
		return res, err
	}

	gen, err := resolveGeneration(path, cfg.Generation)
	if err != nil {
		return res, err
	}

	var resolver fileset.Resolver
	if opts.Resolver != nil {
		resolver = *opts.Resolver
	} else {
		resolver, err = fileset.NewOSResolver(filepath.Dir(path))
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	inputs, err := resolvePatterns(resolver, "inputs", cfg.Inputs)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	res.Plan = JobPlan{
		Package:    pkg,
		Out:        out,
		Target:     target,
		Inputs:     inputs,
		Generation: gen,
	}
	return res, nil
}

func decode(kind format, data []byte, strict bool) (Config, error) {
	var cfg Config
	switch kind {
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, err
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

var knownKeys = map[string]map[string]struct{}{
	"": {
		"inputs":     {},
		"out":        {},
		"target":     {},
		"package":    {},
		"generation": {},
	},
	"generation": {
		"emit_json_tags":         {},
		"emit_pointers_for_null": {},
		"emit_constructors":      {},
		"context_name":           {},
		"verify_sql":             {},
		"strict_check":           {},
	},
}

func collectUnknownKeys(kind format, data []byte) ([]string, error) {
	var raw map[string]any
	switch kind {
	case formatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	unknown := make([]string, 0)
	for key, value := range raw {
		if _, ok := knownKeys[""][key]; !ok {
			unknown = append(unknown, key)
			continue
		}
		nested, ok := knownKeys[key]
		if !ok {
			continue
		}
		record, ok := value.(map[string]any)
		if !ok {
			continue
		}
		for sub := range record {
			if _, ok := nested[sub]; !ok {
				unknown = append(unknown, key+"."+sub)
			}
		}
	}
	return unknown, nil
}

func resolvePackage(path string, target Target, pkg string) (string, error) {
	switch target {
	case TargetCSharp:
		if pkg == "" {
			return DefaultCSharpNamespace, nil
		}
		for _, part := range strings.Split(pkg, ".") {
			if !token.IsIdentifier(part) {
				return "", fmt.Errorf("%s: invalid namespace %q", path, pkg)
			}
		}
		return pkg, nil
	case TargetGo:
		if pkg == "" {
			return DefaultGoPackage, nil
		}
		if !token.IsIdentifier(pkg) || token.Lookup(pkg) != token.IDENT {
			return "", fmt.Errorf("%s: invalid package name %q", path, pkg)
		}
		return pkg, nil
	default:
		return pkg, nil
	}
}

func resolveGeneration(path string, g GenerationOptions) (Generation, error) {
	out := Generation{
		EmitJSONTags:        g.EmitJSONTags,
		EmitPointersForNull: g.EmitPointersForNull,
		EmitConstructors:    true,
		ContextName:         DefaultContextName,
		VerifySQL:           g.VerifySQL,
		StrictCheck:         g.StrictCheck,
	}
	if g.EmitConstructors != nil {
		out.EmitConstructors = *g.EmitConstructors
	}
	if g.ContextName != "" {
		if !token.IsIdentifier(g.ContextName) {
			return out, fmt.Errorf("%s: invalid context_name %q", path, g.ContextName)
		}
		out.ContextName = g.ContextName
	}
	return out, nil
}

func resolveOut(path, out string) (string, error) {
	if out == "" {
		return "", fmt.Errorf("%s: out is required", path)
	}
	if filepath.IsAbs(out) {
		return "", fmt.Errorf("%s: out must be a relative path", path)
	}

	cleaned := filepath.Clean(out)
	if cleaned == "." {
		return "", fmt.Errorf("%s: out must name a subdirectory", path)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: out must not traverse upwards", path)
	}

	return filepath.Join(filepath.Dir(path), cleaned), nil
}

func resolvePatterns(resolver fileset.Resolver, field string, patterns []string) ([]string, error) {
	paths, err := resolver.Resolve(patterns)
	if err != nil {
		switch {
		case errors.Is(err, fileset.ErrNoPatterns):
			return nil, fmt.Errorf("%s must include at least one pattern", field)
		default:
			var noMatchErr fileset.NoMatchError
			if errors.As(err, &noMatchErr) {
				return nil, fmt.Errorf("%s patterns matched no files: %s", field, strings.Join(noMatchErr.Patterns, ", "))
			}

			var patternErr fileset.PatternError
			if errors.As(err, &patternErr) {
				return nil, fmt.Errorf("%s: invalid glob pattern %q: %w", field, patternErr.Pattern, patternErr.Err)
			}

			return nil, fmt.Errorf("%s: %w", field, err)
		}
	}

	return paths, nil
}
