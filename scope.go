package tenure

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
)

// Scoped caches one instance per [Scope]: every resolution inside the same
// scope returns the same instance, while a different scope — a different
// request, job or transaction — gets its own. Resolving a scoped provider
// from a context without a scope fails with [ErrNoActiveScope].
var Scoped = &Lifestyle{
	name:             "scoped",
	componentLength:  scopedLength,
	dependencyLength: scopedLength,
	scoped:           true,
	core: func(reg *Registration, raw Factory) Factory {
		return func(ctx context.Context) (any, error) {
			scope := ScopeFrom(ctx)
			if scope == nil {
				return nil, fmt.Errorf("%w: resolving %s", ErrNoActiveScope, reg.serviceType)
			}
			return scope.instance(ctx, reg, raw)
		}
	},
}

// scopeKey is the context key under which the ambient scope travels.
type scopeKey struct{}

// WithScope returns a context carrying the scope. [Scoped] registrations
// resolved through it cache their instances in that scope.
func WithScope(ctx context.Context, s *Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Scope is an isolated instance cache for [Scoped] registrations, typically
// one per request or unit of work. Create one with [Container.BeginScope],
// attach it with [WithScope], and call [Scope.End] when the work is done.
type Scope struct {
	container *Container

	mu      sync.Mutex
	cells   map[*Registration]*onceCell
	closers []io.Closer
	ended   bool
}

// instance returns the scope's cached instance for reg, constructing it with
// raw on first request. Only the cell lookup holds the scope's lock;
// construction holds the cell's own lock, so scoped services may depend on
// other scoped services in the same scope.
func (s *Scope) instance(ctx context.Context, reg *Registration, raw Factory) (any, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: resolving %s", ErrScopeEnded, reg.serviceType)
	}
	if s.cells == nil {
		s.cells = make(map[*Registration]*onceCell)
	}
	cell, ok := s.cells[reg]
	if !ok {
		cell = &onceCell{}
		s.cells[reg] = cell
	}
	s.mu.Unlock()

	return cell.get(ctx, raw, func(v any) { s.track(v, reg) })
}

func (s *Scope) track(v any, reg *Registration) {
	if reg.suppressDisposal {
		return
	}
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	s.mu.Lock()
	s.closers = append(s.closers, closer)
	s.mu.Unlock()
}

// End closes every [io.Closer] the scope cached, most recently created first,
// and drops the scope's cache. Later resolutions through the scope and later
// End calls fail with [ErrScopeEnded].
func (s *Scope) End() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrScopeEnded
	}
	s.ended = true
	closers := s.closers
	s.closers = nil
	s.cells = nil
	s.mu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i].Close())
	}
	return err
}
