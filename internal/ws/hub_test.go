package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	domain "compliancehub-service/internal/domain/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubBroadcastsToRegisteredClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient(hub, nil, "admin-1")
	hub.Register <- client

	hub.Publish(domain.SessionEvent{
		Type:   domain.SessionEventSignedIn,
		UserID: "u1",
		Email:  "officer@example.com",
		JTI:    "jti-1",
		At:     time.Now(),
	})

	select {
	case data := <-client.send:
		var ev domain.SessionEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, domain.SessionEventSignedIn, ev.Type)
		assert.Equal(t, "u1", ev.UserID)
		assert.Equal(t, "jti-1", ev.JTI)
	case <-time.After(time.Second):
		t.Fatal("no event delivered to registered client")
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// Hub is not running: the buffered channel fills, then drops

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(domain.SessionEvent{Type: domain.SessionEventSignedIn})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a saturated hub")
	}
}

func TestHubDropsSlowConsumerAndStaysLive(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// No WritePump: the slow client's send buffer fills and stays full.
	slow := NewClient(hub, nil, "admin-slow")
	hub.registerClient(slow)

	for i := 0; i < cap(slow.send)+1; i++ {
		hub.broadcast(domain.SessionEvent{Type: domain.SessionEventSignedIn, UserID: "u1"})
	}

	// The overflowing event closes the slow client instead of wedging
	// the loop: its buffered backlog remains readable, then the
	// channel ends.
	for i := 0; i < cap(slow.send); i++ {
		_, ok := <-slow.send
		require.True(t, ok, "buffered event %d missing", i)
	}
	_, ok := <-slow.send
	assert.False(t, ok, "slow consumer should be closed, not left registered")

	// The hub must still register and deliver after the drop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	fresh := NewClient(hub, nil, "admin-fresh")
	select {
	case hub.Register <- fresh:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting registrations after a slow consumer")
	}

	hub.Publish(domain.SessionEvent{Type: domain.SessionEventSignedOut, UserID: "u2"})
	select {
	case data := <-fresh.send:
		var ev domain.SessionEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "u2", ev.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery after dropping a slow consumer")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := NewClient(hub, nil, "admin-1")
	hub.Register <- client

	cancel()

	select {
	case _, ok := <-client.send:
		assert.False(t, ok, "send channel should be closed on shutdown")
	case <-time.After(time.Second):
		t.Fatal("client not closed after hub shutdown")
	}
}
