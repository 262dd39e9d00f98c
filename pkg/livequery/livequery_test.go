package livequery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetch returns an incrementing snapshot per fetch so tests can tell
// snapshots apart.
type countingFetch struct {
	mu    sync.Mutex
	count int
	fail  bool
}

func (f *countingFetch) fetch(ctx context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("fetch failed")
	}
	f.count++
	return []int{f.count}, nil
}

func (f *countingFetch) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func receive(t *testing.T, c <-chan []int) []int {
	t.Helper()
	select {
	case snapshot, ok := <-c:
		require.True(t, ok, "subscription channel closed unexpectedly")
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{}
	sub, err := Subscribe(context.Background(), bus, TopicLeaveRequests, f.fetch)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []int{1}, receive(t, sub.C))
}

func TestSubscribeFailedInitialFetch(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{fail: true}
	sub, err := Subscribe(context.Background(), bus, TopicLeaveRequests, f.fetch)
	assert.Error(t, err)
	assert.Nil(t, sub)
}

func TestNotifyTriggersRefetch(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{}
	sub, err := Subscribe(context.Background(), bus, TopicChatMessages, f.fetch)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []int{1}, receive(t, sub.C))

	bus.Notify(TopicChatMessages)
	assert.Equal(t, []int{2}, receive(t, sub.C))
}

func TestNotifyOtherTopicIsIgnored(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{}
	sub, err := Subscribe(context.Background(), bus, TopicChatSessions, f.fetch)
	require.NoError(t, err)
	defer sub.Close()

	receive(t, sub.C)

	bus.Notify(TopicLeaveRequests)

	select {
	case snapshot := <-sub.C:
		t.Fatalf("unexpected snapshot %v for unrelated topic", snapshot)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFailedRefetchSkipsCycle(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{}
	sub, err := Subscribe(context.Background(), bus, TopicLeaveRequests, f.fetch)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []int{1}, receive(t, sub.C))

	// A failed refetch delivers nothing; the next notice recovers.
	f.setFail(true)
	bus.Notify(TopicLeaveRequests)

	select {
	case snapshot := <-sub.C:
		t.Fatalf("unexpected snapshot %v after failed refetch", snapshot)
	case <-time.After(100 * time.Millisecond):
	}

	f.setFail(false)
	bus.Notify(TopicLeaveRequests)
	assert.Equal(t, []int{2}, receive(t, sub.C))
}

func TestSlowConsumerGetsLatestSnapshot(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{}
	sub, err := Subscribe(context.Background(), bus, TopicLeaveRequests, f.fetch)
	require.NoError(t, err)
	defer sub.Close()

	// Do not drain: pile up notices so intermediate snapshots get replaced.
	for i := 0; i < 5; i++ {
		bus.Notify(TopicLeaveRequests)
	}

	// Wait for all refetches to have happened.
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		done := f.count >= 6
		f.mu.Unlock()
		if done || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	// Let the final push land.
	time.Sleep(50 * time.Millisecond)

	snapshot := receive(t, sub.C)
	assert.Equal(t, []int{6}, snapshot, "consumer sees only the newest snapshot")
}

func TestCloseEndsStream(t *testing.T) {
	bus := NewBus(watermill.NopLogger{})
	defer bus.Close()

	f := &countingFetch{}
	sub, err := Subscribe(context.Background(), bus, TopicLeaveRequests, f.fetch)
	require.NoError(t, err)

	receive(t, sub.C)
	sub.Close()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok, "channel should be closed after Close")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close")
	}
}
