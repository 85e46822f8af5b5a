package tenure

import "fmt"

// NewCustom builds a lifestyle whose caching behavior is supplied by the
// embedder. The applier receives the registration's raw factory and returns
// the caching factory to use in its place; whatever policy it implements —
// pooling, expiry, per-key caches — is opaque to this package.
//
// The applier runs exactly once per [Registration], at registration-creation
// time, so state it closes over (counters, timers, locks) is private to that
// registration:
//
//	perCall, _ := tenure.NewCustom("memoize-pair", func(raw tenure.Factory) tenure.Factory {
//	    var mu sync.Mutex
//	    var cached any
//	    return func(ctx context.Context) (any, error) { ... }
//	})
func NewCustom(name string, applier func(raw Factory) Factory) (*Lifestyle, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: lifestyle name is empty", ErrInvalidArgument)
	}
	if applier == nil {
		return nil, fmt.Errorf("%w: applier is nil", ErrInvalidArgument)
	}
	return &Lifestyle{
		name:             name,
		componentLength:  customLength,
		dependencyLength: customLength,
		core: func(_ *Registration, raw Factory) Factory {
			return applier(raw)
		},
	}, nil
}
