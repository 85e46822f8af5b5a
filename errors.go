package tenure

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidArgument is returned when a public entry point receives a nil,
	// empty or type-invalid argument. It always surfaces before any caching or
	// guard logic runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCyclicDependency is the sentinel that [CyclicError] unwraps to: a
	// resolution chain re-entered its own in-progress construction.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrProviderNotFound is returned when no provider is registered for the
	// requested type or name.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrDuplicateProvider is returned when a provider for the same type or
	// name is registered more than once.
	ErrDuplicateProvider = errors.New("duplicate provider")

	// ErrAlreadyShutdown is returned when the container is used after
	// [Container.Shutdown].
	ErrAlreadyShutdown = errors.New("container already shut down")

	// ErrNoActiveScope is returned when a [Scoped] provider is resolved from a
	// context that carries no scope. Use [WithScope] to attach one.
	ErrNoActiveScope = errors.New("no active scope")

	// ErrScopeEnded is returned when a scope is used after [Scope.End].
	ErrScopeEnded = errors.New("scope already ended")
)

// CyclicError reports that a resolution chain re-entered its own in-progress
// construction: somewhere inside the service's factory, the same service was
// requested again on the same chain. It unwraps to [ErrCyclicDependency].
type CyclicError struct {
	// ServiceType is the service whose construction depends on itself.
	ServiceType reflect.Type
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: construction of %s depends on itself", e.ServiceType)
}

func (e *CyclicError) Unwrap() error { return ErrCyclicDependency }
