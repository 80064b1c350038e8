// Package codegen selects and drives the per-target emitters.
package codegen

import (
	"context"

	"github.com/electwix/dbml-catalyst/internal/codegen/render"
	"github.com/electwix/dbml-catalyst/internal/config"
	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

// File is a generated artifact, relative to the output directory.
type File = render.File

// Generator turns a schema into artifacts: one per table followed by one
// registry.
type Generator interface {
	Generate(ctx context.Context, schema *model.Schema) ([]File, error)
}

// Options carries the settings shared by every target.
type Options struct {
	// Package is the Go package or C# namespace. Empty selects the target default.
	Package    string
	Generation config.Generation
	Logger     logging.Logger
}
