package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event[T]{}
	}
}

func requireClosed[T any](t *testing.T, ch <-chan Event[T]) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.False(t, ok, "expected closed channel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestBroker_FansOutToEverySubscriber(t *testing.T) {
	for name, b := range map[string]*Broker[string]{
		"lossy":   NewBroker[string](),
		"ordered": NewOrderedBroker[string](),
	} {
		t.Run(name, func(t *testing.T) {
			defer b.Close()
			ctx := context.Background()
			a, c := b.Subscribe(ctx), b.Subscribe(ctx)
			require.Equal(t, 2, b.SubscriberCount())

			b.Publish(LogEntryEvent, "opened Foo")

			for _, ch := range []<-chan Event[string]{a, c} {
				e := receive(t, ch)
				require.Equal(t, LogEntryEvent, e.Type)
				require.Equal(t, "opened Foo", e.Payload)
				require.False(t, e.Timestamp.IsZero())
			}
		})
	}
}

func TestBroker_CancelledSubscriberLeaves(t *testing.T) {
	for name, b := range map[string]*Broker[int]{
		"lossy":   NewBroker[int](),
		"ordered": NewOrderedBroker[int](),
	} {
		t.Run(name, func(t *testing.T) {
			defer b.Close()
			ctx, cancel := context.WithCancel(context.Background())
			ch := b.Subscribe(ctx)

			cancel()
			requireClosed(t, ch)
			require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
			b.Publish(NotificationEvent, 1)
		})
	}
}

func TestBroker_LossyDropsWhenFull(t *testing.T) {
	b := newBroker[int](2)
	defer b.Close()
	ch := b.Subscribe(context.Background())

	for i := range 5 {
		b.Publish(NotificationEvent, i)
	}

	require.Equal(t, 0, receive(t, ch).Payload)
	require.Equal(t, 1, receive(t, ch).Payload)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %v", e.Payload)
	default:
	}
}

func TestBroker_CloseIsIdempotentAndEndsStreams(t *testing.T) {
	b := NewBroker[string]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()
	requireClosed(t, ch)
	requireClosed(t, b.Subscribe(context.Background()))
	b.Publish(LogEntryEvent, "ignored")
}

func TestOrderedBroker_CloseFlushesPending(t *testing.T) {
	b := NewOrderedBroker[string]()
	ch := b.Subscribe(context.Background())

	b.Publish(NotificationEvent, "started")
	b.Publish(NotificationEvent, "finished")
	b.Close()

	require.Equal(t, "started", receive(t, ch).Payload)
	require.Equal(t, "finished", receive(t, ch).Payload)
	requireClosed(t, ch)
}

// Every subscriber of an ordered broker sees every event in publish order,
// however far it lags behind.
func TestOrderedBroker_LosslessInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 300).Draw(t, "events")
		subscribers := rapid.IntRange(1, 4).Draw(t, "subscribers")

		b := NewOrderedBroker[int]()
		ctx := context.Background()
		chans := make([]<-chan Event[int], subscribers)
		for i := range chans {
			chans[i] = b.Subscribe(ctx)
		}
		for _, e := range events {
			b.Publish(NotificationEvent, e)
		}
		b.Close()

		for _, ch := range chans {
			var got []int
			for e := range ch {
				got = append(got, e.Payload)
			}
			if len(got) != len(events) {
				t.Fatalf("got %d events, want %d", len(got), len(events))
			}
			for i := range got {
				if got[i] != events[i] {
					t.Fatalf("event %d: got %d, want %d", i, got[i], events[i])
				}
			}
		}
	})
}
