package messenger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()
	var mu sync.Mutex
	var got []Event
	done := make(chan struct{}, 1)

	unsub := b.Subscribe("topic.a", false, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		done <- struct{}{}
	})
	defer unsub()

	b.Publish("topic.a", "hello")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Payload)
	assert.Equal(t, uint64(1), got[0].Epoch)
}

func TestSubscribeReplaySendsLastValue(t *testing.T) {
	b := New()
	b.Publish("topic.b", 42)

	received := make(chan Event, 1)
	unsub := b.Subscribe("topic.b", true, func(e Event) {
		received <- e
	})
	defer unsub()

	select {
	case e := <-received:
		assert.Equal(t, 42, e.Payload)
	default:
		t.Fatal("expected synchronous replay on subscribe")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	var mu sync.Mutex
	unsub := b.Subscribe("topic.c", false, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	unsub()

	b.Publish("topic.c", "x")
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestPublishIfChangedDedupes(t *testing.T) {
	b := New()
	assert.True(t, b.PublishIfChanged("topic.d", []int{1, 2, 3}))
	assert.False(t, b.PublishIfChanged("topic.d", []int{1, 2, 3}))
	assert.True(t, b.PublishIfChanged("topic.d", []int{1, 2, 4}))
}

func TestCloseDrainsSubscriptions(t *testing.T) {
	b := New()
	calls := 0
	var mu sync.Mutex
	b.Subscribe("topic.e", false, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	b.Close()
	b.Publish("topic.e", "ignored")
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}
