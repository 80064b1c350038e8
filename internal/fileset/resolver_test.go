package fileset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestResolverResolveKeepsPatternOrder(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"schema/users.dbml":      &fstest.MapFile{Mode: fs.ModePerm},
		"schema/books.dbml":      &fstest.MapFile{Mode: fs.ModePerm},
		"core/accounts.dbml":     &fstest.MapFile{Mode: fs.ModePerm},
		"core/legacy/old.dbml":   &fstest.MapFile{Mode: fs.ModePerm},
		"schema/readme.md":       &fstest.MapFile{Mode: fs.ModePerm},
		"schema/nested.dbml/x":   &fstest.MapFile{Mode: fs.ModePerm},
		"schema/archive/a.dbml":  &fstest.MapFile{Mode: fs.ModePerm},
		"schema/archive/b.dbml":  &fstest.MapFile{Mode: fs.ModePerm},
		"schema/archive/c.notdb": &fstest.MapFile{Mode: fs.ModePerm},
	}

	paths, err := NewResolver(fsys).Resolve([]string{
		"core/*.dbml",
		"schema/*.dbml",
		"core/accounts.dbml",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := []string{
		"core/accounts.dbml",
		"schema/books.dbml",
		"schema/users.dbml",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverSkipsDirectories(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"schema/nested.dbml/x": &fstest.MapFile{Mode: fs.ModePerm},
	}
	_, err := NewResolver(fsys).Resolve([]string{"schema/*.dbml"})
	var noMatchErr NoMatchError
	if !errors.As(err, &noMatchErr) {
		t.Fatalf("expected NoMatchError for directory-only match, got %v", err)
	}
}

func TestResolverResolveNoMatches(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"schema/users.dbml": &fstest.MapFile{Mode: fs.ModePerm},
	}

	_, err := NewResolver(fsys).Resolve([]string{"models/*.dbml", "schema/nope.dbml"})
	if err == nil {
		t.Fatal("expected error for missing patterns")
	}

	var noMatchErr NoMatchError
	if !errors.As(err, &noMatchErr) {
		t.Fatalf("expected NoMatchError, got %T: %v", err, err)
	}
	if diff := cmp.Diff([]string{"models/*.dbml", "schema/nope.dbml"}, noMatchErr.Patterns); diff != "" {
		t.Fatalf("missing patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverResolveInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(fstest.MapFS{}).Resolve([]string{"["})
	var patternErr PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternError, got %T: %v", err, err)
	}
	if patternErr.Pattern != "[" {
		t.Fatalf("unexpected pattern on error: %q", patternErr.Pattern)
	}
}

func TestResolverResolveNoPatterns(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(fstest.MapFS{}).Resolve(nil)
	if !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("expected ErrNoPatterns, got %v", err)
	}
}

func TestOSResolverReturnsAbsolutePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shop.dbml"), []byte("Table a {\n}\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	resolver, err := NewOSResolver(dir)
	if err != nil {
		t.Fatalf("NewOSResolver() error = %v", err)
	}
	paths, err := resolver.Resolve([]string{"./*.dbml"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []string{filepath.Join(dir, "shop.dbml")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewOSResolver(filepath.Join(dir, "shop.dbml")); err == nil {
		t.Fatal("expected error for non-directory base")
	}
}
