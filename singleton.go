package tenure

import (
	"context"
	"sync"
	"sync/atomic"
)

// Singleton caches the first successfully constructed instance for the
// lifetime of the registration's container; every later resolution returns
// that same instance. Caches are keyed per registration — two containers, or
// two registrations in one container, never share an instance.
//
// Concurrent callers during the first construction block until it completes.
// A failed construction is not cached: a later call retries from scratch.
var Singleton = &Lifestyle{
	name:             "singleton",
	componentLength:  singletonLength,
	dependencyLength: singletonLength,
	core: func(reg *Registration, raw Factory) Factory {
		cell := &onceCell{}
		return func(ctx context.Context) (any, error) {
			return cell.get(ctx, raw, reg.instanceCreated)
		}
	},
}

// onceCell computes a value at most once, retrying after failures. It is the
// compute-once slot behind [Singleton] and, per scope, behind [Scoped].
type onceCell struct {
	mu sync.Mutex
	// done is set only after value has been written, so the unlocked fast
	// path below observes a fully published value.
	done  atomic.Bool
	value any
}

// get returns the cached value, or computes it with raw while holding the
// cell's lock. created runs once, after a successful construction.
func (c *onceCell) get(ctx context.Context, raw Factory, created func(any)) (any, error) {
	if c.done.Load() {
		return c.value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done.Load() {
		return c.value, nil
	}

	value, err := raw(ctx)
	if err != nil {
		return nil, err
	}

	c.value = value
	c.done.Store(true)
	if created != nil {
		created(value)
	}
	return value, nil
}
