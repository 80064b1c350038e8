package codegen

import (
	"fmt"

	"github.com/electwix/dbml-catalyst/internal/codegen/csharp"
	"github.com/electwix/dbml-catalyst/internal/codegen/dbmlfmt"
	"github.com/electwix/dbml-catalyst/internal/codegen/golang"
	"github.com/electwix/dbml-catalyst/internal/codegen/sqlddl"
	"github.com/electwix/dbml-catalyst/internal/config"
	"github.com/electwix/dbml-catalyst/internal/logging"
)

// GeneratorFactory creates target-specific generators.
type GeneratorFactory struct {
	opts Options
}

// NewGeneratorFactory creates a new generator factory.
func NewGeneratorFactory(opts Options) *GeneratorFactory {
	opts.Logger = logging.OrNop(opts.Logger)
	return &GeneratorFactory{opts: opts}
}

// Create returns a generator for the specified target.
func (f *GeneratorFactory) Create(target config.Target) (Generator, error) {
	logger := f.opts.Logger.With("target", string(target))
	gen := f.opts.Generation

	switch target {
	case config.TargetGo, "":
		g, err := golang.New(golang.Options{
			Package:             f.opts.Package,
			EmitJSONTags:        gen.EmitJSONTags,
			EmitPointersForNull: gen.EmitPointersForNull,
			EmitConstructors:    gen.EmitConstructors,
			Logger:              logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create go generator: %w", err)
		}
		return g, nil
	case config.TargetCSharp:
		g, err := csharp.New(csharp.Options{
			Namespace:   f.opts.Package,
			ContextName: gen.ContextName,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create csharp generator: %w", err)
		}
		return g, nil
	case config.TargetSQL:
		g, err := sqlddl.New(sqlddl.Options{Verify: gen.VerifySQL, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("create sql generator: %w", err)
		}
		return g, nil
	case config.TargetDBML:
		g, err := dbmlfmt.New(dbmlfmt.Options{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("create dbml generator: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported target: %s", target)
	}
}
