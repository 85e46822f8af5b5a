package tenure

import (
	"context"
	"fmt"
)

// NewHybrid builds a lifestyle that delegates, per resolution, to one of two
// inner lifestyles. The selector is re-evaluated on every call — never cached
// — so a registration can move between policies at runtime.
//
// Both branches build their caching factory eagerly when a [Registration] is
// created, one core call each; resolution pays only for the selector and one
// delegate invocation. Branches may themselves be hybrids, which turns nested
// hybrids into a decision tree over any number of policies.
func NewHybrid(selector func(ctx context.Context) bool, whenTrue, whenFalse *Lifestyle) (*Lifestyle, error) {
	return newHybrid(selector, whenTrue, whenFalse, false)
}

// NewScopedHybrid is [NewHybrid] restricted to scoped branches: both inner
// lifestyles must cache per scope, which lets diagnostics treat the hybrid
// itself as scoped.
func NewScopedHybrid(selector func(ctx context.Context) bool, whenTrue, whenFalse *Lifestyle) (*Lifestyle, error) {
	return newHybrid(selector, whenTrue, whenFalse, true)
}

func newHybrid(selector func(ctx context.Context) bool, whenTrue, whenFalse *Lifestyle, needScoped bool) (*Lifestyle, error) {
	if selector == nil {
		return nil, fmt.Errorf("%w: selector is nil", ErrInvalidArgument)
	}
	if whenTrue == nil || whenFalse == nil {
		return nil, fmt.Errorf("%w: hybrid lifestyle is nil", ErrInvalidArgument)
	}
	if needScoped {
		if !whenTrue.scoped {
			return nil, fmt.Errorf("%w: scoped hybrid requires scoped lifestyles, %q is not", ErrInvalidArgument, whenTrue.name)
		}
		if !whenFalse.scoped {
			return nil, fmt.Errorf("%w: scoped hybrid requires scoped lifestyles, %q is not", ErrInvalidArgument, whenFalse.name)
		}
	}
	return &Lifestyle{
		name:             fmt.Sprintf("hybrid %s / %s", whenTrue.name, whenFalse.name),
		componentLength:  min(whenTrue.componentLength, whenFalse.componentLength),
		dependencyLength: min(whenTrue.dependencyLength, whenFalse.dependencyLength),
		scoped:           whenTrue.scoped && whenFalse.scoped,
		core: func(reg *Registration, raw Factory) Factory {
			onTrue := whenTrue.core(reg, raw)
			onFalse := whenFalse.core(reg, raw)
			return func(ctx context.Context) (any, error) {
				if selector(ctx) {
					return onTrue(ctx)
				}
				return onFalse(ctx)
			}
		},
	}, nil
}
