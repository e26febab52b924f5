package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ReplyAfterShut(t *testing.T) {
	c := newClient(NewHub(), nil)
	c.shut()
	c.shut()

	assert.NotPanics(t, func() { c.handleMessage([]byte(`{"type":"ping"}`)) })
	assert.NotPanics(t, func() { c.handleMessage([]byte(`not json`)) })
	assert.False(t, c.offer([]byte("x")))
}

func TestClient_ReplyQueuesPong(t *testing.T) {
	c := newClient(NewHub(), nil)
	c.handleMessage([]byte(`{"type":"ping"}`))

	require.Len(t, c.outbox, 1)
	var msg Message
	require.NoError(t, json.Unmarshal(<-c.outbox, &msg))
	assert.Equal(t, EventTypePong, msg.Type)
	assert.NotEmpty(t, msg.Timestamp)
}

func TestClient_OfferFullOutbox(t *testing.T) {
	c := newClient(NewHub(), nil)
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.offer([]byte("x")))
	}
	assert.False(t, c.offer([]byte("x")))
	assert.NotPanics(t, func() { c.handleMessage([]byte(`{"type":"ping"}`)) })
}

func TestHub_StopShutsRegisteredClients(t *testing.T) {
	h := NewHub()
	finished := make(chan struct{})
	go func() {
		h.Run()
		close(finished)
	}()

	c := newClient(h, nil)
	h.register <- c
	h.Stop()
	<-finished

	_, open := <-c.outbox
	assert.False(t, open)
	assert.NotPanics(t, func() { c.handleMessage([]byte(`{"type":"ping"}`)) })
	assert.Zero(t, h.ClientCount())
}
