package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fanhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testKey(kind Kind) Key {
	return Key{Kind: kind, GroupID: 7, Address: "0xaa"}
}

// Poll ticks that land while a fetch is in flight must be dropped, not
// queued: one in-flight request per key at a time.
func TestTickCoalescing(t *testing.T) {
	e := New(zap.NewNop())
	defer e.Close()

	var calls atomic.Int32
	proceed := make(chan struct{})
	key := testKey(KindMembership)

	e.Register(key, 0, true, func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-proceed
		return true, nil
	})

	// The mount fetch is in flight; these ticks must all be dropped.
	for i := 0; i < 5; i++ {
		e.tick(key)
	}
	close(proceed)

	require.Eventually(t, func() bool {
		_, ok := e.Value(key)
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	// With nothing in flight a new tick fetches again.
	e.tick(key)
	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

// A stale in-flight response must never overwrite a newer applied value.
func TestStaleResponseDiscarded(t *testing.T) {
	e := New(zap.NewNop())
	defer e.Close()

	key := testKey(KindMembership)
	e.Register(key, 0, false, func(ctx context.Context) (any, error) {
		return nil, nil
	})

	e.apply(key, 2, "newer", nil)
	e.apply(key, 1, "older", nil)

	v, ok := e.Value(key)
	require.True(t, ok)
	assert.Equal(t, "newer", v)
}

// A failed fetch leaves the previous value applied and flags the key.
func TestErrorKeepsStaleValue(t *testing.T) {
	e := New(zap.NewNop())
	defer e.Close()

	key := testKey(KindPendingSelf)
	e.Register(key, 0, false, func(ctx context.Context) (any, error) {
		return nil, nil
	})

	e.apply(key, 1, true, nil)
	e.apply(key, 2, nil, errors.New("rpc unreachable"))

	v, ok := e.Value(key)
	require.True(t, ok)
	assert.Equal(t, true, v)
	assert.Error(t, e.Err(key))

	e.SetEnabled(key, true)
	assert.True(t, e.Degraded())

	// Next successful fetch clears the flag.
	e.apply(key, 3, false, nil)
	assert.NoError(t, e.Err(key))
	assert.False(t, e.Degraded())
}

// Polling the same key twice with no intervening mutation yields the
// same value both times.
func TestRefetchIdempotent(t *testing.T) {
	e := New(zap.NewNop())
	defer e.Close()

	key := testKey(KindMembership)
	e.Register(key, 0, true, func(ctx context.Context) (any, error) {
		return true, nil
	})

	require.NoError(t, e.Refetch(context.Background(), key))
	first, ok := e.Value(key)
	require.True(t, ok)

	require.NoError(t, e.Refetch(context.Background(), key))
	second, ok := e.Value(key)
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestDisabledQueryNeverFetches(t *testing.T) {
	e := New(zap.NewNop())
	defer e.Close()

	var calls atomic.Int32
	key := testKey(KindMembership)
	e.Register(key, 0, false, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return true, nil
	})

	e.tick(key)
	require.NoError(t, e.Refetch(context.Background(), key))

	assert.Equal(t, int32(0), calls.Load())
	_, ok := e.Value(key)
	assert.False(t, ok)
	assert.False(t, e.Loading(key), "disabled query is a precondition, not loading")
}

func TestSubscribeNotifiedOnApply(t *testing.T) {
	e := New(zap.NewNop())
	defer e.Close()

	var notified atomic.Int32
	e.Subscribe(func() { notified.Add(1) })

	key := Key{Kind: KindGroupDetails, GroupID: 7}
	e.Register(key, 0, false, func(ctx context.Context) (any, error) {
		return nil, nil
	})

	e.apply(key, 1, models.GroupDetails{Name: "fans"}, nil)
	assert.Equal(t, int32(1), notified.Load())
}
