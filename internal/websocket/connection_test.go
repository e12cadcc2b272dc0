package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disconnectRecorder struct {
	mu      sync.Mutex
	gone    []string
	handled int
}

func (d *disconnectRecorder) HandleMessage(string, []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handled++
}

func (d *disconnectRecorder) HandleDisconnect(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gone = append(d.gone, connID)
}

func TestConnection_Age(t *testing.T) {
	hub := NewHub(DefaultConfig())
	c := newConnection("c1", nil, hub)

	assert.WithinDuration(t, time.Now(), c.ConnectedAt, time.Second)
	first := c.Age()
	assert.GreaterOrEqual(t, first, time.Duration(0))
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, c.Age(), first)
}

func TestHub_Unregister(t *testing.T) {
	handler := &disconnectRecorder{}
	hub := NewHub(DefaultConfig())
	hub.SetHandler(handler)

	c := newConnection("c1", nil, hub)
	hub.register(c)
	hub.Subscribe("ROOM01", c.ID)
	require.Equal(t, 1, hub.ConnectionCount())

	hub.unregister(c)

	assert.Zero(t, hub.ConnectionCount())
	assert.Empty(t, hub.groups, "empty room groups are dropped")
	assert.Equal(t, []string{"c1"}, handler.gone)

	_, open := <-c.send
	assert.False(t, open, "send buffer is closed")
	assert.True(t, c.enqueue([]byte("late")), "late deliveries are dropped silently")

	// A second unregister is a no-op.
	hub.unregister(c)
	assert.Equal(t, []string{"c1"}, handler.gone)
}
