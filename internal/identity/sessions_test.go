package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewSessions()

	var first, second []SessionEvent
	bus.Subscribe(func(ev SessionEvent) { first = append(first, ev) })
	bus.Subscribe(func(ev SessionEvent) { second = append(second, ev) })

	bus.Publish(SessionEvent{Type: EventSignedIn, UserID: "u1", Email: "ada@example.com"})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, EventSignedIn, first[0].Type)
	assert.Equal(t, "u1", second[0].UserID)
}

func TestSessions_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewSessions()

	calls := 0
	unsubscribe := bus.Subscribe(func(SessionEvent) { calls++ })

	bus.Publish(SessionEvent{Type: EventSignedIn, UserID: "u1"})
	unsubscribe()
	bus.Publish(SessionEvent{Type: EventSignedOut, UserID: "u1"})

	assert.Equal(t, 1, calls)
}

func TestSessions_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewSessions()

	unsubscribe := bus.Subscribe(func(SessionEvent) {})
	unsubscribe()
	unsubscribe()

	// Other subscribers are unaffected.
	calls := 0
	bus.Subscribe(func(SessionEvent) { calls++ })
	bus.Publish(SessionEvent{Type: EventDeleted, UserID: "u1"})
	assert.Equal(t, 1, calls)
}

func TestSessions_PublishWithNoSubscribers(t *testing.T) {
	bus := NewSessions()
	assert.NotPanics(t, func() {
		bus.Publish(SessionEvent{Type: EventSignedOut, UserID: "u1"})
	})
}
