package eventbus

import (
	"testing"
	"time"
)

const waitTimeout = 100 * time.Millisecond

func TestBus_PublishAndSubscribe(t *testing.T) {
	t.Parallel()

	bus := New()
	ch := bus.Subscribe("analysis.completed")

	bus.Publish("analysis.completed", "payload")

	select {
	case evt := <-ch:
		if evt.Topic != "analysis.completed" {
			t.Errorf("expected topic 'analysis.completed', got %q", evt.Topic)
		}
		if evt.Payload != "payload" {
			t.Errorf("expected payload 'payload', got %v", evt.Payload)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timeout waiting for event")
	}
}

func TestBus_FanOutAndTopicIsolation(t *testing.T) {
	t.Parallel()

	bus := New()
	first := bus.Subscribe("analysis.completed")
	second := bus.Subscribe("analysis.completed")
	other := bus.Subscribe("other.topic")

	bus.Publish("analysis.completed", 7)

	for i, ch := range []<-chan Event{first, second} {
		select {
		case evt := <-ch:
			if evt.Payload != 7 {
				t.Errorf("subscriber %d: expected payload 7, got %v", i, evt.Payload)
			}
		case <-time.After(waitTimeout):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}

	select {
	case evt := <-other:
		t.Errorf("other.topic received unexpected event: %v", evt)
	default:
	}
}

func TestBus_FullBuffer_DropsWithoutBlocking(t *testing.T) {
	t.Parallel()

	bus := New()
	_ = bus.Subscribe("analysis.completed")

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBufferSize+10; i++ {
			bus.Publish("analysis.completed", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked on a full buffer")
	}
	if got := bus.Dropped(); got != 10 {
		t.Errorf("expected 10 dropped deliveries, got %d", got)
	}
}

func TestBus_Close_ClosesSubscribers(t *testing.T) {
	t.Parallel()

	bus := New()
	ch := bus.Subscribe("analysis.completed")
	bus.Close()
	bus.Close() // idempotent

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(waitTimeout):
		t.Fatal("subscriber channel was not closed")
	}

	bus.Publish("analysis.completed", "ignored")

	late := bus.Subscribe("analysis.completed")
	if _, ok := <-late; ok {
		t.Error("expected subscription on closed bus to be closed")
	}
}
