package hub

import (
	"fmt"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesRoomSubscribers(t *testing.T) {
	t.Parallel()

	h := New()
	a, cancelA := h.Subscribe(SessionRoom("s1"))
	defer cancelA()
	b, cancelB := h.Subscribe(SessionRoom("s1"))
	defer cancelB()
	other, cancelO := h.Subscribe(SessionRoom("s2"))
	defer cancelO()

	h.Publish(SessionClosed("s1", "inactive"), SessionRoom("s1"))

	for _, ch := range []<-chan Event{a, b} {
		ev := recv(t, ch)
		if ev.Name != "session.closed" {
			t.Fatalf("event=%s, want session.closed", ev.Name)
		}
	}
	select {
	case ev := <-other:
		t.Fatalf("other room got %s", ev.Name)
	default:
	}
}

func TestPublishToMultipleRooms(t *testing.T) {
	t.Parallel()

	h := New()
	sess, cancel1 := h.Subscribe(SessionRoom("s1"))
	defer cancel1()
	kitchen, cancel2 := h.Subscribe(KitchenRoom("v1"))
	defer cancel2()

	h.Publish(OrderCreated(map[string]any{"id": "o1"}), SessionRoom("s1"), KitchenRoom("v1"))

	if ev := recv(t, sess); ev.Name != "order.created" {
		t.Fatalf("session got %s", ev.Name)
	}
	if ev := recv(t, kitchen); ev.Name != "order.created" {
		t.Fatalf("kitchen got %s", ev.Name)
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	t.Parallel()

	h := New()
	ch, cancel := h.Subscribe(WaitersRoom("v1"))
	cancel()
	cancel() // idempotent

	if _, open := <-ch; open {
		t.Fatal("channel should be closed after cancel")
	}
	if n := h.Subscribers(WaitersRoom("v1")); n != 0 {
		t.Fatalf("subscribers=%d, want 0", n)
	}
	// publishing into an empty room must not panic
	h.Publish(MenuUpdated("v2"), WaitersRoom("v1"))
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	h := New()
	_, cancel := h.Subscribe(SessionRoom("s1"))
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subBuffer*3; i++ {
			h.Publish(MenuUpdated(fmt.Sprintf("v%d", i)), SessionRoom("s1"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestRoomNames(t *testing.T) {
	t.Parallel()

	if SessionRoom("abc") != "tableSession:abc" {
		t.Fatalf("session room = %s", SessionRoom("abc"))
	}
	if KitchenRoom("v") != "venue:v:kitchen" {
		t.Fatalf("kitchen room = %s", KitchenRoom("v"))
	}
	if WaitersRoom("v") != "venue:v:waiters" {
		t.Fatalf("waiters room = %s", WaitersRoom("v"))
	}
}
