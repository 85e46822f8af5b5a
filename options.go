package tenure

import (
	"reflect"

	"go.uber.org/zap"
)

// settings collects per-registration configuration before the lifestyle
// builds the [Registration].
type settings struct {
	lifestyle        *Lifestyle
	serviceType      reflect.Type
	overrides        []Override
	suppressDisposal bool
}

// Option configures a single registration.
type Option func(*settings)

// WithLifestyle sets the caching policy for the registration. Without it the
// container's default applies — [Transient], unless changed with
// [WithDefaultLifestyle].
func WithLifestyle(l *Lifestyle) Option {
	return func(s *settings) {
		if l != nil {
			s.lifestyle = l
		}
	}
}

// As registers the provider under service type S instead of the constructor's
// return type:
//
//	c.Register(NewPostgresStore, tenure.As[Store]())
func As[S any]() Option {
	return func(s *settings) {
		s.serviceType = reflect.TypeOf((*S)(nil)).Elem()
	}
}

// OverrideDependency pins the value injected for dependency type D of this
// registration's constructor, bypassing the container's producer for that
// parameter.
func OverrideDependency[D any](value D) Option {
	return func(s *settings) {
		s.overrides = append(s.overrides, Override{
			Type:  reflect.TypeOf((*D)(nil)).Elem(),
			Value: value,
		})
	}
}

// SuppressDisposal excludes instances of this registration from
// [Container.Shutdown] and [Scope.End], for values whose closing is owned
// elsewhere.
func SuppressDisposal() Option {
	return func(s *settings) {
		s.suppressDisposal = true
	}
}

// ContainerOption configures a [Container] at construction.
type ContainerOption func(*Container)

// WithLogger sets the logger for container events (registrations,
// verification, shutdown). The default discards everything.
func WithLogger(logger *zap.Logger) ContainerOption {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaultLifestyle sets the lifestyle applied to registrations that do
// not name one. The default is [Transient].
func WithDefaultLifestyle(l *Lifestyle) ContainerOption {
	return func(c *Container) {
		if l != nil {
			c.defaultLifestyle = l
		}
	}
}
