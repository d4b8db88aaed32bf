package container

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/container-harness/internal/testutil"
)

func TestRegistry_PutGetContains(t *testing.T) {
	reg := NewRegistry()
	c := testutil.NewFakeContainer("localhost", nil)

	require.False(t, reg.Contains("pg"))
	_, ok := reg.Get("pg")
	require.False(t, ok)

	require.NoError(t, reg.Put("pg", c))
	require.True(t, reg.Contains("pg"))
	got, ok := reg.Get("pg")
	require.True(t, ok)
	require.Same(t, c, got)
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_PutDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Put("pg", testutil.NewFakeContainer("a", nil)))
	err := reg.Put("pg", testutil.NewFakeContainer("b", nil))
	require.ErrorIs(t, err, ErrDuplicateContainer)
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"redis", "api", "pg"} {
		require.NoError(t, reg.Put(n, &testutil.PlainContainer{}))
	}
	require.Equal(t, []string{"api", "pg", "redis"}, reg.Names())
}

func TestRegistry_CloseAllTerminatesEachOnceDespiteFailures(t *testing.T) {
	reg := NewRegistry(WithTerminateTimeout(time.Second))
	ok1 := testutil.NewFakeContainer("h", nil)
	failing := testutil.NewFakeContainer("h", nil)
	failing.TerminateErr = errors.New("daemon gone")
	panicking := testutil.NewFakeContainer("h", nil)
	panicking.PanicOnTerminate = true
	ok2 := testutil.NewFakeContainer("h", nil)

	require.NoError(t, reg.Put("a", ok1))
	require.NoError(t, reg.Put("b", failing))
	require.NoError(t, reg.Put("c", panicking))
	require.NoError(t, reg.Put("d", ok2))

	require.NotPanics(t, func() { reg.CloseAll(context.Background()) })
	for _, c := range []*testutil.FakeContainer{ok1, failing, panicking, ok2} {
		require.Equal(t, 1, c.Terminates())
	}

	// second close is a no-op
	reg.CloseAll(context.Background())
	require.Equal(t, 1, ok1.Terminates())
	require.Equal(t, 0, reg.Len())
}

func TestRegistry_PutAfterClose(t *testing.T) {
	reg := NewRegistry()
	reg.CloseAll(context.Background())
	err := reg.Put("late", testutil.NewFakeContainer("h", nil))
	require.ErrorIs(t, err, ErrRegistryClosed)
}
