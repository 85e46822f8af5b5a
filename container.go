package tenure

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Container wires service registrations to their producers and acts as the
// scope key for singleton caches: every registration belongs to exactly one
// container, and [Singleton] instances are cached per registration, never
// globally.
//
// Resolution is lazy. Nothing is constructed at registration time, and a
// cyclic graph surfaces as [CyclicError] at resolution time rather than as a
// registration failure; use [Container.Verify] to force every registration
// eagerly. All methods are safe for concurrent use.
type Container struct {
	mu sync.RWMutex

	producers map[reflect.Type]*Producer
	named     map[string]*Producer

	// closers holds cached singletons that implement io.Closer, in creation
	// order. Shutdown iterates them in reverse so dependents close before
	// their dependencies.
	closerMu sync.Mutex
	closers  []io.Closer

	shutdown bool

	logger           *zap.Logger
	defaultLifestyle *Lifestyle
}

// New creates an empty [Container] ready for registration.
func New(opts ...ContainerOption) *Container {
	c := &Container{
		producers:        make(map[reflect.Type]*Producer),
		named:            make(map[string]*Producer),
		logger:           zap.NewNop(),
		defaultLifestyle: Transient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Container) newSettings(opts []Option) *settings {
	s := &settings{lifestyle: c.defaultLifestyle}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a constructor to the container. The constructor must be a
// function with the signature func(deps...) T or func(deps...) (T, error);
// dependencies are expressed as parameters and resolved by type through the
// container's other producers when an instance is constructed. The service
// type defaults to T and can be redirected with [As].
func (c *Container) Register(constructor any, opts ...Option) error {
	return c.register("", constructor, opts...)
}

// RegisterNamed adds a named constructor. Named providers live in a separate
// namespace and are resolved via [Container.ResolveNamed] or the generic
// [ResolveNamed] helper.
func (c *Container) RegisterNamed(name string, constructor any, opts ...Option) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidArgument)
	}
	return c.register(name, constructor, opts...)
}

func (c *Container) register(name string, constructor any, opts ...Option) error {
	s := c.newSettings(opts)

	ctor, err := newConstructor(constructor)
	if err != nil {
		return err
	}
	service := s.serviceType
	if service == nil {
		service = ctor.out
	}

	reg, err := s.lifestyle.CreateRegistration(service, constructor, c)
	if err != nil {
		return err
	}
	reg.overrides = s.overrides
	reg.suppressDisposal = s.suppressDisposal

	return c.add(name, service, reg)
}

// RegisterInstance adds a pre-built value as a [Singleton] provider for its
// own type, or the type given with [As]. The value is disposed on shutdown
// like any other singleton unless [SuppressDisposal] is given.
func (c *Container) RegisterInstance(value any, opts ...Option) error {
	if value == nil {
		return fmt.Errorf("%w: instance is nil", ErrInvalidArgument)
	}
	s := c.newSettings(opts)

	service := s.serviceType
	if service == nil {
		service = reflect.TypeOf(value)
	} else if !reflect.TypeOf(value).AssignableTo(service) {
		return fmt.Errorf("%w: %T is not assignable to %s", ErrInvalidArgument, value, service)
	}

	reg, err := Singleton.CreateRegistrationFromFactory(service, func(context.Context) (any, error) {
		return value, nil
	}, c)
	if err != nil {
		return err
	}
	reg.suppressDisposal = s.suppressDisposal

	return c.add("", service, reg)
}

func (c *Container) add(name string, service reflect.Type, reg *Registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrAlreadyShutdown
	}

	p := newProducer(reg)
	if name != "" {
		if _, exists := c.named[name]; exists {
			return fmt.Errorf("%w: named %q", ErrDuplicateProvider, name)
		}
		c.named[name] = p
	} else {
		if _, exists := c.producers[service]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateProvider, service)
		}
		c.producers[service] = p
	}

	c.logger.Debug("provider registered",
		zap.Stringer("service", service),
		zap.Stringer("lifestyle", reg.lifestyle),
		zap.String("name", name),
	)
	return nil
}

// Producer returns the producer registered for t, if any, exposing the
// resolution handle itself rather than an instance.
func (c *Container) Producer(t reflect.Type) (*Producer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.producers[t]
	return p, ok
}

// Resolve returns an instance of the service registered for t under the
// registration's lifestyle. Prefer the generic [Resolve] helper over calling
// this method directly.
func (c *Container) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	p, ok := c.Producer(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, t)
	}
	return p.GetInstance(ctx)
}

// ResolveNamed returns an instance from the named provider. The requested
// type t must be assignable from the provider's service type. Prefer the
// generic [ResolveNamed] helper over calling this method directly.
func (c *Container) ResolveNamed(ctx context.Context, name string, t reflect.Type) (any, error) {
	c.mu.RLock()
	p, ok := c.named[name]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: named %q", ErrProviderNotFound, name)
	}
	if t != nil && !p.registration.implementationType.AssignableTo(t) {
		return nil, fmt.Errorf("%w: named provider %q yields %s, not assignable to %s",
			ErrInvalidArgument, name, p.registration.implementationType, t)
	}
	return p.GetInstance(ctx)
}

// BeginScope opens a new [Scope] for [Scoped] registrations. Attach it to a
// context with [WithScope] and call [Scope.End] when the unit of work
// completes.
func (c *Container) BeginScope() *Scope {
	return &Scope{container: c}
}

// Verify resolves every registered provider once, surfacing construction
// failures, missing dependencies and cycles eagerly instead of at first use.
// Scoped providers resolve inside a throwaway scope that ends when
// verification completes.
func (c *Container) Verify(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.RLock()
	producers := make([]*Producer, 0, len(c.producers)+len(c.named))
	for _, p := range c.producers {
		producers = append(producers, p)
	}
	for _, p := range c.named {
		producers = append(producers, p)
	}
	c.mu.RUnlock()

	scope := c.BeginScope()
	ctx = WithScope(ctx, scope)

	var err error
	for _, p := range producers {
		if _, rerr := p.GetInstance(ctx); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("verifying %s: %w", p.serviceType, rerr))
		}
	}
	err = multierr.Append(err, scope.End())

	if err != nil {
		c.logger.Warn("verification failed", zap.Error(err))
	} else {
		c.logger.Debug("verification passed", zap.Int("providers", len(producers)))
	}
	return err
}

// Shutdown closes all cached singleton instances that implement [io.Closer],
// most recently created first, so dependents close before their dependencies.
// The context bounds the whole shutdown; once it expires, remaining closers
// are skipped and the context error is included in the result.
//
// Shutdown succeeds once; later calls return [ErrAlreadyShutdown]. It is the
// caller's responsibility to stop resolving before shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return ErrAlreadyShutdown
	}
	c.shutdown = true
	c.mu.Unlock()

	c.closerMu.Lock()
	closers := c.closers
	c.closers = nil
	c.closerMu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := ctx.Err(); cerr != nil {
			err = multierr.Append(err, cerr)
			break
		}
		err = multierr.Append(err, closers[i].Close())
	}

	c.logger.Debug("container shut down", zap.Int("closed", len(closers)), zap.Error(err))
	return err
}

func (c *Container) trackCloser(closer io.Closer) {
	c.closerMu.Lock()
	c.closers = append(c.closers, closer)
	c.closerMu.Unlock()
}
