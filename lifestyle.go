package tenure

import (
	"context"
	"fmt"
	"reflect"
)

// Factory produces an instance of a service. The same signature serves both
// roles in the resolution pipeline: the raw creator supplied by the resolution
// layer, and the caching factory a [Lifestyle] builds around it. The context
// carries the chain identity used for cycle detection and, for [Scoped]
// providers, the ambient [Scope].
type Factory func(ctx context.Context) (any, error)

// Lifestyle is a caching policy applied to a service registration: it decides
// how many instances of the service exist and when a cached instance may be
// returned instead of constructing a new one.
//
// A Lifestyle is an immutable value identified by name. The built-in policies
// are [Transient], [Singleton] and [Scoped]; [NewCustom], [NewHybrid] and
// [NewScopedHybrid] derive new ones. Policies nest freely — a hybrid's
// branches may themselves be hybrids.
type Lifestyle struct {
	name string

	// componentLength and dependencyLength rank lifetimes for diagnostic
	// comparison only; they never influence caching behavior.
	componentLength  int
	dependencyLength int

	scoped bool

	// core builds the caching factory for one registration. It runs exactly
	// once per [Registration], so any state it allocates — a singleton cell,
	// a custom policy's counters — is private to that registration.
	core func(reg *Registration, raw Factory) Factory
}

// Diagnostic lifetime ranks for the built-in policies.
const (
	transientLength = 1
	scopedLength    = 500
	customLength    = 500
	singletonLength = 1000
)

// Transient constructs a fresh instance on every resolution. No cache, no
// shared state.
var Transient = &Lifestyle{
	name:             "transient",
	componentLength:  transientLength,
	dependencyLength: transientLength,
	core: func(_ *Registration, raw Factory) Factory {
		return raw
	},
}

// Name returns the lifestyle's identifying name.
func (l *Lifestyle) Name() string { return l.name }

// String returns the lifestyle's name.
func (l *Lifestyle) String() string { return l.name }

// ComponentLength ranks the lifetime of components using this lifestyle; it
// is consulted by diagnostics only.
func (l *Lifestyle) ComponentLength() int { return l.componentLength }

// DependencyLength ranks the lifetime this lifestyle offers to dependents; it
// is consulted by diagnostics only.
func (l *Lifestyle) DependencyLength() int { return l.dependencyLength }

// IsScoped reports whether the lifestyle caches per scope. [NewScopedHybrid]
// requires it of both branches.
func (l *Lifestyle) IsScoped() bool { return l.scoped }

// CompatibleWith reports whether a component with this lifestyle may safely
// depend on a service with the given lifestyle: the dependency must live at
// least as long as the component that captures it. A singleton holding a
// transient is flagged; a transient holding a singleton is fine.
func (l *Lifestyle) CompatibleWith(dependency *Lifestyle) bool {
	return l.componentLength <= dependency.dependencyLength
}

// CreateRegistration binds serviceType to a constructor under this lifestyle.
// The constructor must be a function with the signature func(deps...) T or
// func(deps...) (T, error), with T assignable to serviceType; its parameters
// are resolved through the container's producers each time the raw factory
// runs.
//
// Every call returns a brand-new [Registration] with its own caching state and
// cycle guard, even for identical arguments.
func (l *Lifestyle) CreateRegistration(serviceType reflect.Type, constructor any, c *Container) (*Registration, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: container is nil", ErrInvalidArgument)
	}
	ctor, err := newConstructor(constructor)
	if err != nil {
		return nil, err
	}
	if err := validateServiceType(serviceType, ctor.out); err != nil {
		return nil, err
	}
	reg := newRegistration(l, serviceType, ctor.out, c, false)
	reg.compose(ctor.rawFactory(c, reg))
	return reg, nil
}

// CreateRegistrationFromFactory binds serviceType to a caller-supplied
// creator. The resulting registration is marked as wrapping a creator, which
// downstream diagnostics treat as opaque; caching behaves exactly as for
// constructor registrations.
func (l *Lifestyle) CreateRegistrationFromFactory(serviceType reflect.Type, creator Factory, c *Container) (*Registration, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: container is nil", ErrInvalidArgument)
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: creator is nil", ErrInvalidArgument)
	}
	if err := validateServiceType(serviceType, serviceType); err != nil {
		return nil, err
	}
	reg := newRegistration(l, serviceType, serviceType, c, true)
	reg.compose(creator)
	return reg, nil
}

// CreateProducer wraps a fresh constructor registration in a [Producer].
func (l *Lifestyle) CreateProducer(serviceType reflect.Type, constructor any, c *Container) (*Producer, error) {
	reg, err := l.CreateRegistration(serviceType, constructor, c)
	if err != nil {
		return nil, err
	}
	return newProducer(reg), nil
}

// CreateProducerFromFactory wraps a fresh creator registration in a
// [Producer].
func (l *Lifestyle) CreateProducerFromFactory(serviceType reflect.Type, creator Factory, c *Container) (*Producer, error) {
	reg, err := l.CreateRegistrationFromFactory(serviceType, creator, c)
	if err != nil {
		return nil, err
	}
	return newProducer(reg), nil
}

// referenceCapable reports whether t can stand for a shared instance:
// interface and pointer-like kinds qualify, bare value kinds do not.
func referenceCapable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice:
		return true
	default:
		return false
	}
}

func validateServiceType(service, impl reflect.Type) error {
	if service == nil {
		return fmt.Errorf("%w: service type is nil", ErrInvalidArgument)
	}
	if !referenceCapable(service) {
		return fmt.Errorf("%w: service type %s is not reference-capable", ErrInvalidArgument, service)
	}
	if impl != service && !impl.AssignableTo(service) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrInvalidArgument, impl, service)
	}
	return nil
}
