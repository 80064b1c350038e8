// Package fileset expands the input glob patterns of a configuration into the
// ordered list of DBML files to parse.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Resolver resolves glob patterns against an fs.FS and rewrites the discovered
// paths using a join function.
type Resolver struct {
	fsys fs.FS
	join func(name string) string
}

// ErrNoPatterns indicates that Resolve was invoked without any glob patterns.
var ErrNoPatterns = errors.New("fileset: no patterns provided")

// PatternError wraps syntax issues reported while evaluating a glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e PatternError) Unwrap() error { return e.Err }

// NoMatchError describes which patterns failed to yield any results.
type NoMatchError struct {
	Patterns []string
}

// Error implements the error interface.
func (e NoMatchError) Error() string {
	return "patterns matched no files: " + strings.Join(e.Patterns, ", ")
}

// NewResolver constructs a Resolver against the provided filesystem without any
// path rewriting, preserving the original match names. Useful for tests.
func NewResolver(fsys fs.FS) Resolver {
	return Resolver{
		fsys: fsys,
		join: func(name string) string { return name },
	}
}

// NewOSResolver constructs a Resolver rooted at base that returns absolute OS
// paths for each match.
func NewOSResolver(base string) (Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return Resolver{}, fmt.Errorf("resolve base %q: %w", base, err)
	}

	info, err := os.Stat(absBase)
	if err != nil {
		return Resolver{}, fmt.Errorf("stat base %q: %w", absBase, err)
	}
	if !info.IsDir() {
		return Resolver{}, fmt.Errorf("base %q is not a directory", absBase)
	}

	return Resolver{
		fsys: os.DirFS(absBase),
		join: func(name string) string {
			return filepath.Join(absBase, filepath.FromSlash(name))
		},
	}, nil
}

// Resolve evaluates each glob pattern in turn. Matches keep pattern order,
// lexical order within a pattern, and the first position of any path
// matched twice. Tables from several files are merged in this order.
func (r Resolver) Resolve(patterns []string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	joinFn := r.join
	if joinFn == nil {
		joinFn = func(name string) string { return name }
	}

	var (
		combined []string
		missing  []string
		seen     = make(map[string]struct{})
	)
	for _, pattern := range patterns {
		globPattern := path.Clean(filepath.ToSlash(pattern))

		matches, err := fs.Glob(r.fsys, globPattern)
		if err != nil {
			return nil, PatternError{Pattern: pattern, Err: err}
		}

		found := false
		for _, match := range matches {
			if info, err := fs.Stat(r.fsys, match); err == nil && info.IsDir() {
				continue
			}
			found = true
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			combined = append(combined, joinFn(match))
		}
		if !found {
			missing = append(missing, pattern)
		}
	}

	if len(missing) > 0 {
		return nil, NoMatchError{Patterns: missing}
	}
	return combined, nil
}
