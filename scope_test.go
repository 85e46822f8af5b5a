package tenure

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoped_OneInstancePerScope(t *testing.T) {
	c := New()

	var calls atomic.Int32
	mustRegister(t, c, func() *testLogger {
		calls.Add(1)
		return &testLogger{}
	}, WithLifestyle(Scoped))

	s1 := c.BeginScope()
	defer s1.End()
	s2 := c.BeginScope()
	defer s2.End()

	ctx1 := WithScope(context.Background(), s1)
	ctx2 := WithScope(context.Background(), s2)

	a1, err := Resolve[*testLogger](ctx1, c)
	require.NoError(t, err)
	a2, err := Resolve[*testLogger](ctx1, c)
	require.NoError(t, err)
	b1, err := Resolve[*testLogger](ctx2, c)
	require.NoError(t, err)

	assert.Same(t, a1, a2, "same scope reuses the instance")
	assert.NotSame(t, a1, b1, "scopes are isolated from each other")
	assert.EqualValues(t, 2, calls.Load())
}

func TestScoped_RequiresScope(t *testing.T) {
	c := New()
	mustRegister(t, c, newTestLogger, WithLifestyle(Scoped))

	_, err := Resolve[*testLogger](context.Background(), c)
	require.ErrorIs(t, err, ErrNoActiveScope)
	assert.Contains(t, err.Error(), "*tenure.testLogger")
}

func TestScoped_DependsOnScopedInSameScope(t *testing.T) {
	c := New()
	mustRegister(t, c, newTestLogger, WithLifestyle(Scoped))
	mustRegister(t, c, newTestOrderService, WithLifestyle(Scoped))

	scope := c.BeginScope()
	defer scope.End()
	ctx := WithScope(context.Background(), scope)

	svc, err := Resolve[*testOrderService](ctx, c)
	require.NoError(t, err)
	logger, err := Resolve[*testLogger](ctx, c)
	require.NoError(t, err)
	assert.Same(t, logger, svc.Logger, "nested scoped dependency resolves into the same scope")
}

func TestScope_End(t *testing.T) {
	t.Run("closes instances in reverse creation order", func(t *testing.T) {
		var order []string
		c := New()
		mustRegister(t, c, func() *testClosable {
			return &testClosable{Name: "first", Order: &order}
		}, WithLifestyle(Scoped))
		mustRegisterNamed(t, c, "second", func() *testClosable {
			return &testClosable{Name: "second", Order: &order}
		}, WithLifestyle(Scoped))

		scope := c.BeginScope()
		ctx := WithScope(context.Background(), scope)

		_, err := Resolve[*testClosable](ctx, c)
		require.NoError(t, err)
		_, err = ResolveNamed[*testClosable](ctx, c, "second")
		require.NoError(t, err)

		require.NoError(t, scope.End())
		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("ended scope rejects resolution", func(t *testing.T) {
		c := New()
		mustRegister(t, c, newTestLogger, WithLifestyle(Scoped))

		scope := c.BeginScope()
		ctx := WithScope(context.Background(), scope)
		require.NoError(t, scope.End())

		_, err := Resolve[*testLogger](ctx, c)
		assert.ErrorIs(t, err, ErrScopeEnded)
	})

	t.Run("second End fails", func(t *testing.T) {
		scope := New().BeginScope()
		require.NoError(t, scope.End())
		assert.ErrorIs(t, scope.End(), ErrScopeEnded)
	})

	t.Run("close failures surface", func(t *testing.T) {
		c := New()
		mustRegister(t, c, func() *testFailCloser { return &testFailCloser{} }, WithLifestyle(Scoped))

		scope := c.BeginScope()
		ctx := WithScope(context.Background(), scope)
		_, err := Resolve[*testFailCloser](ctx, c)
		require.NoError(t, err)

		err = scope.End()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "close failed")
	})

	t.Run("suppressed registrations are not closed", func(t *testing.T) {
		var order []string
		c := New()
		mustRegister(t, c, func() *testClosable {
			return &testClosable{Name: "kept", Order: &order}
		}, WithLifestyle(Scoped), SuppressDisposal())

		scope := c.BeginScope()
		ctx := WithScope(context.Background(), scope)
		kept, err := Resolve[*testClosable](ctx, c)
		require.NoError(t, err)

		require.NoError(t, scope.End())
		assert.False(t, kept.Closed)
		assert.Empty(t, order)
	})
}

func TestScoped_FailureIsNotCached(t *testing.T) {
	c := New()

	var calls atomic.Int32
	mustRegister(t, c, func() (*testConfig, error) {
		if calls.Add(1) == 1 {
			return nil, assert.AnError
		}
		return &testConfig{DSN: "ok"}, nil
	}, WithLifestyle(Scoped))

	scope := c.BeginScope()
	defer scope.End()
	ctx := WithScope(context.Background(), scope)

	_, err := Resolve[*testConfig](ctx, c)
	require.ErrorIs(t, err, assert.AnError)

	cfg, err := Resolve[*testConfig](ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "ok", cfg.DSN)
	assert.EqualValues(t, 2, calls.Load())
}
