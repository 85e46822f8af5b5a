package tenure

import (
	"io"
	"reflect"
)

// Override pins the value injected for one dependency type of a constructor,
// bypassing the container's producer for that parameter. The resolution layer
// consults overrides; caching never does.
type Override struct {
	Type  reflect.Type
	Value any
}

// Registration binds one service to its composed caching factory and
// container-scoped metadata. Registrations are created by a [Lifestyle] — a
// fresh one per CreateRegistration call, each with independent caching state
// and its own cycle guard — and are immutable once composed, apart from the
// two explicitly synchronized pieces: the policy's cache cell and the guard's
// in-flight set.
type Registration struct {
	serviceType        reflect.Type
	implementationType reflect.Type
	lifestyle          *Lifestyle
	container          *Container
	guard              *cycleGuard
	factory            Factory

	wrapsCreator     bool
	suppressDisposal bool
	overrides        []Override
}

func newRegistration(l *Lifestyle, service, impl reflect.Type, c *Container, wrapsCreator bool) *Registration {
	return &Registration{
		serviceType:        service,
		implementationType: impl,
		lifestyle:          l,
		container:          c,
		guard:              newCycleGuard(service),
		wrapsCreator:       wrapsCreator,
	}
}

// compose finishes the registration: the lifestyle builds its caching factory
// around the raw creator, and the cycle guard wraps the result so illegal
// same-chain reentry is caught before any cache lock is taken.
func (r *Registration) compose(raw Factory) {
	r.factory = r.guard.wrap(r.lifestyle.core(r, raw))
}

// ServiceType returns the abstraction this registration is bound under.
func (r *Registration) ServiceType() reflect.Type { return r.serviceType }

// ImplementationType returns the constructor's return type, or the service
// type itself for creator-wrapping registrations.
func (r *Registration) ImplementationType() reflect.Type { return r.implementationType }

// Lifestyle returns the caching policy the registration was built with.
func (r *Registration) Lifestyle() *Lifestyle { return r.lifestyle }

// Container returns the container the registration belongs to.
func (r *Registration) Container() *Container { return r.container }

// WrapsCreator reports whether the registration wraps a caller-supplied
// creator rather than a constructor; diagnostics treat such registrations as
// opaque. Caching is unaffected.
func (r *Registration) WrapsCreator() bool { return r.wrapsCreator }

// DisposalSuppressed reports whether instances of this registration are
// excluded from [Container.Shutdown] and [Scope.End].
func (r *Registration) DisposalSuppressed() bool { return r.suppressDisposal }

// Overrides returns the registration's dependency overrides.
func (r *Registration) Overrides() []Override {
	out := make([]Override, len(r.overrides))
	copy(out, r.overrides)
	return out
}

func (r *Registration) overrideFor(t reflect.Type) (any, bool) {
	for _, o := range r.overrides {
		if o.Type == t {
			return o.Value, true
		}
	}
	return nil, false
}

// instanceCreated records a freshly cached singleton with the container so
// Shutdown can dispose of it.
func (r *Registration) instanceCreated(v any) {
	if r.suppressDisposal {
		return
	}
	if closer, ok := v.(io.Closer); ok {
		r.container.trackCloser(closer)
	}
}
