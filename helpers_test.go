package tenure

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test types, constructors and helpers used across test files.

// typeOf is shorthand for the reflect.Type of T.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// mustRegister calls t.Fatal if registration fails.
func mustRegister(t *testing.T, c *Container, constructor any, opts ...Option) {
	t.Helper()
	require.NoError(t, c.Register(constructor, opts...))
}

// mustRegisterNamed calls t.Fatal if named registration fails.
func mustRegisterNamed(t *testing.T, c *Container, name string, constructor any, opts ...Option) {
	t.Helper()
	require.NoError(t, c.RegisterNamed(name, constructor, opts...))
}

// countingCreator returns a creator that counts its invocations and yields a
// fresh value each time.
func countingCreator(calls *atomic.Int32) Factory {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		return &testLogger{Prefix: "counted"}, nil
	}
}

type testLogger struct{ Prefix string }
type testConfig struct{ DSN string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testUserRepo struct {
	DB     *testDatabase
	Logger *testLogger
}

type testService interface {
	Name() string
}

type testUserService struct {
	Repo   *testUserRepo
	Logger *testLogger
}

func (s *testUserService) Name() string { return "user" }

type testOrderService struct{ Logger *testLogger }

func (s *testOrderService) Name() string { return "order" }

type testCircA struct{ B *testCircB }
type testCircB struct{ C *testCircC }
type testCircC struct{ A *testCircA }

type testSelf struct{ Self *testSelf }

func newTestLogger() *testLogger           { return &testLogger{Prefix: "app"} }
func newTestConfig() *testConfig           { return &testConfig{DSN: "postgres://localhost"} }
func newTestCircA(b *testCircB) *testCircA { return &testCircA{B: b} }
func newTestCircB(c *testCircC) *testCircB { return &testCircB{C: c} }
func newTestCircC(a *testCircA) *testCircC { return &testCircC{A: a} }
func newTestSelf(s *testSelf) *testSelf    { return &testSelf{Self: s} }

func newTestDatabase(cfg *testConfig, log *testLogger) *testDatabase {
	return &testDatabase{Config: cfg, Logger: log}
}

func newTestUserRepo(db *testDatabase, log *testLogger) *testUserRepo {
	return &testUserRepo{DB: db, Logger: log}
}

func newTestUserService(repo *testUserRepo, log *testLogger) *testUserService {
	return &testUserService{Repo: repo, Logger: log}
}

func newTestOrderService(log *testLogger) *testOrderService {
	return &testOrderService{Logger: log}
}

// testClosable records that it was closed, and in which order relative to its
// siblings.
type testClosable struct {
	Name   string
	Closed bool
	Order  *[]string // shared slice recording close order
}

func (c *testClosable) Close() error {
	c.Closed = true
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	return nil
}

// testFailCloser implements io.Closer but returns an error.
type testFailCloser struct{}

func (f *testFailCloser) Close() error {
	return errors.New("close failed")
}
