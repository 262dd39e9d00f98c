package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studenthub-be/internal/pkg/logger"
)

// quietLogger satisfies ILogger without touching the filesystem.
type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }
func (quietLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (quietLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func newTestHub() *Hub {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)
	return client
}

func TestSendDeliversToRegisteredClient(t *testing.T) {
	hub := newTestHub()
	userID := uuid.New()
	client := registerClient(t, hub, userID, 4)

	hub.Send(userID, "leave_status", map[string]string{"status": "approved"})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), `"type":"leave_status"`)
		assert.Contains(t, string(data), "approved")
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestSendToFullBufferDropsClientWithoutPanic(t *testing.T) {
	hub := newTestHub()
	userID := uuid.New()
	client := registerClient(t, hub, userID, 1)

	// Fill the buffer so the next push cannot be queued.
	client.Send <- []byte("backlog")

	hub.Send(userID, "leave_status", map[string]string{"status": "approved"})
	hub.Send(userID, "leave_status", map[string]string{"status": "rejected"})

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	// The hub must have closed Send exactly once: the backlog drains,
	// then the channel reports closed.
	data, ok := <-client.Send
	require.True(t, ok)
	assert.Equal(t, "backlog", string(data))

	_, ok = <-client.Send
	assert.False(t, ok)
}

func TestUnregisterUnknownClientIsIgnored(t *testing.T) {
	hub := newTestHub()
	userID := uuid.New()
	client := registerClient(t, hub, userID, 1)

	hub.unregister <- client
	hub.unregister <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	_, ok := <-client.Send
	assert.False(t, ok)
}
