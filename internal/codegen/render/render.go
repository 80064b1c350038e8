// Package render formats generated Go source.
package render

import (
	"fmt"

	"golang.org/x/tools/imports"
)

// File contains the final content for a path.
type File struct {
	Path    string
	Content []byte
}

// Source formats a single Go file with goimports.
func Source(path string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(path, src, nil)
	if err != nil {
		return nil, fmt.Errorf("goimports %s: %w", path, err)
	}
	return formatted, nil
}
