package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicAndCatchAllSubscribers(t *testing.T) {
	hub := NewHub("ledger")

	allCh, cleanupAll := hub.Subscribe("ledger")
	defer cleanupAll()
	driverCh, cleanupDriver := hub.Subscribe("driver:Somchai")
	defer cleanupDriver()
	otherCh, cleanupOther := hub.Subscribe("driver:Anan")
	defer cleanupOther()

	hub.Publish("driver:Somchai", Event{Event: "notification", Data: "hello"})

	for _, ch := range []chan Event{allCh, driverCh} {
		select {
		case ev := <-ch:
			assert.Equal(t, "hello", ev.Data)
			assert.Equal(t, "driver:Somchai", ev.Topic)
		default:
			t.Fatal("expected an event")
		}
	}

	select {
	case ev := <-otherCh:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestHub_CatchAllPublishDeliveredOnce(t *testing.T) {
	hub := NewHub("ledger")

	allCh, cleanup := hub.Subscribe("ledger")
	defer cleanup()
	driverCh, cleanupDriver := hub.Subscribe("driver:Somchai")
	defer cleanupDriver()

	hub.Publish("ledger", Event{Event: "notification", Data: 1})

	assert.Len(t, allCh, 1)
	assert.Len(t, driverCh, 0)
}

func TestHub_WithoutCatchAll(t *testing.T) {
	hub := NewHub("")

	allCh, cleanup := hub.Subscribe("")
	defer cleanup()

	hub.Publish("driver:Somchai", Event{Event: "notification"})
	assert.Len(t, allCh, 0)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub("ledger")

	ch, cleanup := hub.Subscribe("ledger")
	require.Equal(t, 1, hub.SubscriberCount("ledger"))
	require.Equal(t, 1, hub.TotalSubscribers())

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("ledger"))
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_PublishCountsDropsOnFullSubscriber(t *testing.T) {
	hub := NewHub("ledger")

	_, cleanup := hub.Subscribe("ledger")
	defer cleanup()

	for i := 0; i < 50; i++ {
		hub.Publish("driver:Somchai", Event{Event: "notification", Data: i})
	}

	assert.Equal(t, uint64(40), hub.Dropped())
}
