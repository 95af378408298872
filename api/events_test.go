package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.subscribe()
	ch2 := b.subscribe()
	defer b.unsubscribe(ch1)
	defer b.unsubscribe(ch2)

	b.Broadcast("user_registered", map[string]string{"id": "u1"})

	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			text := string(msg)
			assert.True(t, strings.HasPrefix(text, "event: user_registered\n"), "got %q", text)
			assert.Contains(t, text, `"id":"u1"`)
			assert.True(t, strings.HasSuffix(text, "\n\n"), "SSE frames end with a blank line")
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	// Overflow the subscriber buffer; Broadcast must keep returning.
	for i := 0; i < 100; i++ {
		b.Broadcast("attendance_added", map[string]int{"n": i})
	}

	// The buffer holds the first messages; the rest were dropped.
	require.Len(t, ch, cap(ch))
}

func TestBroadcaster_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	ch := b.subscribe()
	b.unsubscribe(ch)

	b.Broadcast("user_deleted", map[string]string{"id": "u1"})
	assert.Empty(t, ch)
}
