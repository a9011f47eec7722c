package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/networth-tracker/internal/feed"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// MockBuilder numbers its reports through GeneratedAt and can be made to block
type MockBuilder struct {
	calls     atomic.Int32
	cancelled atomic.Int32

	mu sync.Mutex
	// block, when set for a call number, holds that call until its context ends
	block map[int32]bool
}

func NewMockBuilder() *MockBuilder {
	return &MockBuilder{block: make(map[int32]bool)}
}

func (m *MockBuilder) ForUser(ctx context.Context, userID string) *models.Report {
	n := m.calls.Add(1)

	m.mu.Lock()
	blocked := m.block[n]
	m.mu.Unlock()

	if blocked {
		<-ctx.Done()
		m.cancelled.Add(1)
	}
	return &models.Report{UserID: userID, GeneratedAt: time.Unix(int64(n), 0)}
}

func (m *MockBuilder) blockCall(n int32) {
	m.mu.Lock()
	m.block[n] = true
	m.mu.Unlock()
}

func next(t *testing.T, ch <-chan *models.Report) *models.Report {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "report channel closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for report")
		return nil
	}
}

func cycle(r *models.Report) int64 {
	return r.GeneratedAt.Unix()
}

func TestManager_InitialAndFeedTriggeredCycles(t *testing.T) {
	hub := feed.NewHub()
	builder := NewMockBuilder()
	m := NewManager(context.Background(), builder, hub, time.Hour, logging.Discard())
	defer m.Close()

	reports, unsubscribe := m.Subscribe("user-1")
	defer unsubscribe()

	first := next(t, reports)
	assert.Equal(t, "user-1", first.UserID)
	assert.Equal(t, int64(1), cycle(first))

	require.Eventually(t, func() bool { return hub.Subscribers("user-1") == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(models.HoldingEvent{EventType: models.EventHoldingUpdated, UserID: "user-1"})

	second := next(t, reports)
	assert.Equal(t, int64(2), cycle(second))
}

func TestManager_TickerCycles(t *testing.T) {
	builder := NewMockBuilder()
	m := NewManager(context.Background(), builder, feed.NewHub(), 20*time.Millisecond, logging.Discard())
	defer m.Close()

	reports, unsubscribe := m.Subscribe("user-1")
	defer unsubscribe()

	last := int64(0)
	for i := 0; i < 3; i++ {
		r := next(t, reports)
		assert.Greater(t, cycle(r), last)
		last = cycle(r)
	}
}

func TestManager_NewCycleCancelsInFlight(t *testing.T) {
	hub := feed.NewHub()
	builder := NewMockBuilder()
	builder.blockCall(1)
	m := NewManager(context.Background(), builder, hub, time.Hour, logging.Discard())
	defer m.Close()

	reports, unsubscribe := m.Subscribe("user-1")
	defer unsubscribe()

	require.Eventually(t, func() bool { return builder.calls.Load() == 1 && hub.Subscribers("user-1") == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(models.HoldingEvent{EventType: models.EventHoldingCreated, UserID: "user-1"})

	r := next(t, reports)
	assert.Equal(t, int64(2), cycle(r), "the cancelled first cycle must not be delivered")
	require.Eventually(t, func() bool { return builder.cancelled.Load() == 1 }, time.Second, 5*time.Millisecond)

	select {
	case extra := <-reports:
		t.Fatalf("unexpected report from cycle %d", cycle(extra))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_TeardownCancelsAndStopsDelivery(t *testing.T) {
	hub := feed.NewHub()
	builder := NewMockBuilder()
	builder.blockCall(1)
	m := NewManager(context.Background(), builder, hub, time.Hour, logging.Discard())

	reports, unsubscribe := m.Subscribe("user-1")
	require.Eventually(t, func() bool { return builder.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	unsubscribe()

	assert.Equal(t, int32(1), builder.cancelled.Load(), "in-flight cycle is cancelled on teardown")
	assert.False(t, m.Watching("user-1"))
	assert.Equal(t, 0, hub.Subscribers("user-1"))

	_, ok := <-reports
	assert.False(t, ok, "channel is closed without a report")
}

func TestManager_SharedRefresher(t *testing.T) {
	builder := NewMockBuilder()
	m := NewManager(context.Background(), builder, feed.NewHub(), time.Hour, logging.Discard())
	defer m.Close()

	a, unsubscribeA := m.Subscribe("user-1")
	first := next(t, a)

	// a late subscriber gets the latest report immediately, without a new cycle
	b, unsubscribeB := m.Subscribe("user-1")
	assert.Equal(t, cycle(first), cycle(next(t, b)))
	assert.Equal(t, int32(1), builder.calls.Load())

	unsubscribeA()
	assert.True(t, m.Watching("user-1"))
	unsubscribeB()
	assert.False(t, m.Watching("user-1"))
}

func TestManager_UsersAreIndependent(t *testing.T) {
	builder := NewMockBuilder()
	m := NewManager(context.Background(), builder, feed.NewHub(), time.Hour, logging.Discard())

	one, _ := m.Subscribe("user-1")
	two, _ := m.Subscribe("user-2")
	assert.Equal(t, "user-1", next(t, one).UserID)
	assert.Equal(t, "user-2", next(t, two).UserID)

	m.Close()
	assert.False(t, m.Watching("user-1"))
	assert.False(t, m.Watching("user-2"))
	_, ok := <-one
	assert.False(t, ok)
}

func TestRefresher_StopsWithContext(t *testing.T) {
	builder := NewMockBuilder()
	var delivered atomic.Int32
	r := NewRefresher("user-1", builder, feed.NewHub(), time.Hour, func(*models.Report) {
		delivered.Add(1)
	}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
