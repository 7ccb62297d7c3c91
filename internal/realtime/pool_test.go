package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/domain"
)

func receiveEvent(t *testing.T, sub *Subscriber) domain.Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPool_PublishReachesAllSubscribers(t *testing.T) {
	pool := NewPool()
	sub1 := pool.Subscribe()
	sub2 := pool.Subscribe()

	pool.Publish(domain.ContentSubmitted{ID: 7, Title: "Draft", AuthorID: 3})

	for _, sub := range []*Subscriber{sub1, sub2} {
		event := receiveEvent(t, sub)
		submitted, ok := event.(domain.ContentSubmitted)
		require.True(t, ok)
		assert.Equal(t, int64(7), submitted.ID)
	}
}

func TestPool_FIFOPerSubscriber(t *testing.T) {
	pool := NewPool()
	sub := pool.Subscribe()

	const n = 20
	for i := 0; i < n; i++ {
		pool.Publish(domain.ContentSubmitted{ID: int64(i)})
	}

	for i := 0; i < n; i++ {
		event := receiveEvent(t, sub)
		submitted := event.(domain.ContentSubmitted)
		assert.Equal(t, int64(i), submitted.ID)
	}
}

func TestPool_UnsubscribeIsIdempotent(t *testing.T) {
	pool := NewPool()
	sub := pool.Subscribe()
	require.Equal(t, 1, pool.Len())

	pool.Unsubscribe(sub)
	assert.Equal(t, 0, pool.Len())

	// Second unsubscribe is a no-op, not a double-close.
	pool.Unsubscribe(sub)
	assert.Equal(t, 0, pool.Len())

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestPool_StalledSubscriberIsPruned(t *testing.T) {
	pool := NewPool()
	stalled := pool.Subscribe()

	// Fill the queue without draining; the publish that finds it full
	// removes the subscriber as part of the call.
	for i := 0; i < subscriberBufferSize+1; i++ {
		pool.Publish(domain.ContentSubmitted{ID: 1})
	}
	assert.Equal(t, 0, pool.Len())

	// The pruned subscriber's channel ends after the buffered events.
	drained := 0
	for range stalled.Events() {
		drained++
	}
	assert.Equal(t, subscriberBufferSize, drained)

	// New subscribers are unaffected.
	fresh := pool.Subscribe()
	pool.Publish(domain.ContentApproved{ID: 2, Title: "Live"})
	event := receiveEvent(t, fresh)
	assert.Equal(t, domain.EventContentApproved, event.EventKind())
}

func TestPool_PublishWithNoSubscribersIsNoop(t *testing.T) {
	pool := NewPool()
	pool.Publish(domain.ContentSubmitted{ID: 1})
	assert.Equal(t, 0, pool.Len())
}

func TestPool_CloseEndsStreamsAndRejectsNewOnes(t *testing.T) {
	pool := NewPool()
	sub := pool.Subscribe()

	pool.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Subscribing after close yields an already-ended stream.
	late := pool.Subscribe()
	_, ok = <-late.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, pool.Len())
}

func TestPool_ConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	pool := NewPool()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := pool.Subscribe()
				pool.Publish(domain.ContentSubmitted{ID: 1})
				pool.Unsubscribe(sub)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, pool.Len())
}

func TestPool_PublishOrderAcrossKinds(t *testing.T) {
	pool := NewPool()
	sub := pool.Subscribe()

	pool.Publish(domain.ContentSubmitted{ID: 1})
	pool.Publish(domain.ContentApproved{ID: 1})
	pool.Publish(domain.ContentRejected{ID: 2, Reason: "duplicate"})

	assert.Equal(t, domain.EventContentSubmitted, receiveEvent(t, sub).EventKind())
	assert.Equal(t, domain.EventContentApproved, receiveEvent(t, sub).EventKind())

	rejected := receiveEvent(t, sub).(domain.ContentRejected)
	assert.Equal(t, "duplicate", rejected.Reason)
}
