package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-checkout/cafe-svc/internal/workflow"
)

func newTestSessions(ttl time.Duration) (*Sessions, *time.Time) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(func() *workflow.Order {
		return workflow.NewOrder(nil, nil, nil)
	}, ttl)
	sessions.now = func() time.Time { return clock }
	return sessions, &clock
}

func TestSessions_Sweep(t *testing.T) {
	sessions, clock := newTestSessions(time.Hour)

	idle, _ := sessions.Create()
	*clock = clock.Add(40 * time.Minute)
	active, _ := sessions.Create()
	*clock = clock.Add(30 * time.Minute)

	_, ok := sessions.Get(active)
	require.True(t, ok)

	assert.Equal(t, 1, sessions.Sweep())
	assert.Equal(t, 1, sessions.Len())
	_, ok = sessions.Get(idle)
	assert.False(t, ok)

	*clock = clock.Add(59 * time.Minute)
	assert.Equal(t, 0, sessions.Sweep())
	_, ok = sessions.Get(active)
	assert.True(t, ok, "reads keep a session alive")
}

func TestSessions_GetExpiredBeforeSweep(t *testing.T) {
	sessions, clock := newTestSessions(time.Minute)

	id, _ := sessions.Create()
	*clock = clock.Add(2 * time.Minute)

	_, ok := sessions.Get(id)
	assert.False(t, ok)
}

func TestSessions_ZeroTTLNeverExpires(t *testing.T) {
	sessions, clock := newTestSessions(0)

	id, _ := sessions.Create()
	*clock = clock.Add(24 * 365 * time.Hour)

	assert.Equal(t, 0, sessions.Sweep())
	_, ok := sessions.Get(id)
	assert.True(t, ok)
}

func TestSessions_Delete(t *testing.T) {
	sessions, _ := newTestSessions(time.Hour)

	id, _ := sessions.Create()

	assert.True(t, sessions.Delete(id))
	assert.False(t, sessions.Delete(id))
	assert.Equal(t, 0, sessions.Len())
}

func TestSessions_RunStopsWithContext(t *testing.T) {
	sessions, _ := newTestSessions(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sessions.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
