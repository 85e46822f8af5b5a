// Package tenure implements the lifetime layer of a dependency-injection
// container: pluggable caching policies — lifestyles — that decide how many
// instances of each service exist and when a cached instance may be reused
// instead of constructed, plus the reentrancy guard that turns a construction
// depending on itself into an error instead of a deadlock.
//
// # Quick Start
//
//	c := tenure.New()
//	c.Register(NewConfig, tenure.WithLifestyle(tenure.Singleton))
//	c.Register(NewLogger, tenure.WithLifestyle(tenure.Singleton))
//	c.Register(NewHandler)
//
//	h, err := tenure.Resolve[*Handler](ctx, c)
//
// Resolution is lazy: constructors run on first demand, and cycles in the
// dependency graph surface as [CyclicError] when resolved. Call
// [Container.Verify] to exercise every registration eagerly.
//
// # Lifestyles
//
// [Transient] (default) — a fresh instance on every resolution.
//
// [Singleton] — one instance per registration, constructed at most once for
// the container's lifetime; concurrent first resolutions block until the
// winning construction lands.
//
// [Scoped] — one instance per [Scope], for request- or job-bound state:
//
//	scope := c.BeginScope()
//	ctx = tenure.WithScope(ctx, scope)
//	defer scope.End()
//
// [NewCustom] accepts any factory-transforming function as a policy, and
// [NewHybrid] switches between two policies per call; policies nest freely.
//
// # Cycle Detection
//
// Every resolution chain carries an identity token on its context. A
// registration whose construction re-enters itself on the same chain fails
// with [CyclicError]; the same registration resolved concurrently by
// unrelated chains is untouched — that is ordinary concurrent demand.
package tenure
