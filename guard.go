package tenure

import (
	"context"
	"reflect"
	"sync"
)

// cycleGuard detects a resolution chain re-entering its own in-progress
// construction. Exactly one guard exists per [Registration], created alongside
// it.
//
// The mutex protects only the in-flight set; it is never held while the
// wrapped factory runs, so unrelated chains constructing the same registration
// concurrently proceed in parallel.
type cycleGuard struct {
	serviceType reflect.Type

	mu sync.Mutex
	// inFlight holds the chains currently inside the wrapped factory. It is
	// allocated on first use and released when the last chain leaves, so a
	// long-lived container with thousands of registrations does not retain
	// guard storage indefinitely.
	inFlight map[chainID]struct{}
}

func newCycleGuard(serviceType reflect.Type) *cycleGuard {
	return &cycleGuard{serviceType: serviceType}
}

// enter records the chain as in flight, failing with [CyclicError] if it
// already is.
func (g *cycleGuard) enter(id chainID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.inFlight[id]; ok {
		return &CyclicError{ServiceType: g.serviceType}
	}
	if g.inFlight == nil {
		g.inFlight = make(map[chainID]struct{})
	}
	g.inFlight[id] = struct{}{}
	return nil
}

// exit removes the chain from the in-flight set and releases the set's
// storage once it empties.
func (g *cycleGuard) exit(id chainID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inFlight, id)
	if len(g.inFlight) == 0 {
		g.inFlight = nil
	}
}

// wrap protects fn against same-chain reentry. The deferred exit keeps the
// enter/exit pairing intact on error and panic paths alike.
func (g *cycleGuard) wrap(fn Factory) Factory {
	return func(ctx context.Context) (any, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		id, ok := ctx.Value(chainKey{}).(chainID)
		if !ok {
			// Producer.GetInstance stamps the chain before invoking the
			// composed factory; a bare context means fn was invoked directly.
			ctx, id = ensureChain(ctx)
		}
		if err := g.enter(id); err != nil {
			return nil, err
		}
		defer g.exit(id)
		return fn(ctx)
	}
}
