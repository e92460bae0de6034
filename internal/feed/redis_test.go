package feed

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisBus(t *testing.T) *RedisBus {
	t.Helper()
	s := miniredis.RunT(t)
	bus, err := NewRedisBus("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestNewRedisBusBadURL(t *testing.T) {
	_, err := NewRedisBus("not-a-url")
	assert.Error(t, err)
}

func TestRedisBusRoundTrip(t *testing.T) {
	bus := setupRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "parties")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, Event{Collection: "users", ID: "u1", Op: OpUpdated}))
	require.NoError(t, bus.Publish(ctx, Event{Collection: "parties", ID: "p1", Op: OpDeleted}))

	ev := receive(t, ch)
	assert.Equal(t, Event{Collection: "parties", ID: "p1", Op: OpDeleted}, ev)
}

func TestRedisBusPatternSubscription(t *testing.T) {
	bus := setupRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, Event{Collection: "notifications", ID: "n1", Op: OpAdded}))
	assert.Equal(t, "n1", receive(t, ch).ID)
}

func TestRedisBusClosesOnCancel(t *testing.T) {
	bus := setupRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "parties")
	require.NoError(t, err)
	cancel()

	for range ch {
	}
}
