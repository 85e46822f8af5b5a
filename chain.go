package tenure

import (
	"context"

	"github.com/google/uuid"
)

// chainID identifies one logical resolution chain: the path of nested
// constructions started by a single root [Producer.GetInstance] call.
// Dependencies resolved during a construction inherit the token through the
// context, which lets a registration tell legitimate concurrent demand (two
// chains, two tokens) apart from illegal self-recursion (one token arriving
// twice before the first arrival has finished).
type chainID = uuid.UUID

// chainKey is the context key under which the chain identity travels.
type chainKey struct{}

// ensureChain returns a context carrying a chain identity, minting a fresh
// token for root calls and reusing the existing one for nested calls.
func ensureChain(ctx context.Context) (context.Context, chainID) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := ctx.Value(chainKey{}).(chainID); ok {
		return ctx, id
	}
	id := uuid.New()
	return context.WithValue(ctx, chainKey{}, id), id
}
