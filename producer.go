package tenure

import (
	"context"
	"reflect"
)

// Producer is the externally visible handle for one service registration:
// the thing client code invokes to obtain an instance under the
// registration's lifestyle.
type Producer struct {
	serviceType  reflect.Type
	registration *Registration
}

func newProducer(reg *Registration) *Producer {
	return &Producer{serviceType: reg.serviceType, registration: reg}
}

// ServiceType returns the service the producer resolves.
func (p *Producer) ServiceType() reflect.Type { return p.serviceType }

// Registration returns the producer's registration.
func (p *Producer) Registration() *Registration { return p.registration }

// GetInstance resolves one instance of the service. The context is stamped
// with a chain identity at the root call and inherited by every dependency
// resolved underneath it, which is how self-referential constructions are
// detected. Failures from the underlying factory propagate unchanged.
func (p *Producer) GetInstance(ctx context.Context) (any, error) {
	ctx, _ = ensureChain(ctx)
	return p.registration.factory(ctx)
}
