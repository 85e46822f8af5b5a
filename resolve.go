package tenure

import (
	"context"
	"fmt"
	"reflect"
)

// ---------------------------------------------------------------------------
// Constructor reflection
// ---------------------------------------------------------------------------

var errType = reflect.TypeOf((*error)(nil)).Elem()

// constructor is the validated shape of a registered constructor function.
type constructor struct {
	fn     reflect.Value
	in     []reflect.Type
	out    reflect.Type
	hasErr bool
}

func newConstructor(fn any) (*constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: constructor is nil", ErrInvalidArgument)
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()

	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: constructor must be a function, got %T", ErrInvalidArgument, fn)
	}
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return nil, fmt.Errorf("%w: constructor must return (T) or (T, error)", ErrInvalidArgument)
	}
	if typ.NumOut() == 2 && !typ.Out(1).Implements(errType) {
		return nil, fmt.Errorf("%w: constructor's second return value must implement error", ErrInvalidArgument)
	}

	in := make([]reflect.Type, typ.NumIn())
	for i := range in {
		in[i] = typ.In(i)
	}

	return &constructor{
		fn:     val,
		in:     in,
		out:    typ.Out(0),
		hasErr: typ.NumOut() == 2,
	}, nil
}

// rawFactory builds the zero-argument creator for this constructor: each call
// resolves the constructor's parameters through the container — honoring the
// registration's dependency overrides — and invokes it. The context flows
// into every nested resolution, carrying the chain identity that trips the
// cycle guard on self-referential graphs.
func (ct *constructor) rawFactory(c *Container, reg *Registration) Factory {
	return func(ctx context.Context) (any, error) {
		args := make([]reflect.Value, len(ct.in))
		for i, depType := range ct.in {
			if v, ok := reg.overrideFor(depType); ok {
				args[i] = reflect.ValueOf(v)
				if !args[i].IsValid() {
					args[i] = reflect.Zero(depType)
				}
				continue
			}

			dep, err := c.Resolve(ctx, depType)
			if err != nil {
				return nil, err
			}
			args[i] = reflect.ValueOf(dep)
			if !args[i].IsValid() {
				args[i] = reflect.Zero(depType)
			}
		}

		results := ct.fn.Call(args)
		if ct.hasErr && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Resolve is a generic helper that resolves a typed provider from the
// container. It is the recommended way to retrieve values:
//
//	db, err := tenure.Resolve[*Database](ctx, c)
func Resolve[T any](ctx context.Context, c *Container) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	v, err := c.Resolve(ctx, t)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: cannot convert %T to %s", ErrInvalidArgument, v, t)
	}
	return out, nil
}

// ResolveNamed is a generic helper that resolves a named provider from the
// container:
//
//	db, err := tenure.ResolveNamed[*Database](ctx, c, "primary")
func ResolveNamed[T any](ctx context.Context, c *Container, name string) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	v, err := c.ResolveNamed(ctx, name, t)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: named %q: cannot convert %T to %s", ErrInvalidArgument, name, v, t)
	}
	return out, nil
}
