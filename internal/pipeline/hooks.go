package pipeline

import (
	"context"

	"github.com/electwix/dbml-catalyst/internal/codegen"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

// Hooks provides extension points in the pipeline execution.
// Each hook is called at a specific stage and can modify behavior or perform side effects.
type Hooks struct {
	// BeforeParse is called with the resolved input paths, in merge order.
	// Return an error to abort the pipeline.
	BeforeParse func(ctx context.Context, inputPaths []string) error

	// AfterParse is called with the merged schema of all inputs.
	// Return an error to abort the pipeline.
	AfterParse func(ctx context.Context, schema *model.Schema) error

	// AfterGenerate is called with the artifacts, paths already joined to the
	// output directory.
	// Return an error to abort the pipeline.
	AfterGenerate func(ctx context.Context, files []codegen.File) error

	// BeforeWrite is called before the output directory is cleared.
	// Return an error to abort the pipeline.
	BeforeWrite func(ctx context.Context, files []codegen.File) error

	// AfterWrite is called once every file is written.
	AfterWrite func(ctx context.Context, summary Summary) error
}

// call runs hook when it is set.
func call[T any](ctx context.Context, hook func(context.Context, T) error, arg T) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, arg)
}
