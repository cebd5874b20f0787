package server

import (
	"testing"
	"time"
)

func TestQueueStateLatestWins(t *testing.T) {
	sub := newSubscriber("s1", nil, time.Second)

	if sub.queueState("frame-1") {
		t.Fatalf("first queue reported a drop")
	}
	if !sub.queueState("frame-2") {
		t.Fatalf("overwriting an unsent frame was not reported")
	}

	sub.stateMu.Lock()
	pending := sub.pendingState
	sub.stateMu.Unlock()
	if pending != "frame-2" {
		t.Fatalf("pending frame = %v, want frame-2", pending)
	}
}

func TestQueueControlReportsBacklog(t *testing.T) {
	sub := newSubscriber("s1", nil, time.Second)

	for i := 0; i < controlQueueDepth; i++ {
		if !sub.queueControl(i) {
			t.Fatalf("queue rejected message %d below capacity", i)
		}
	}
	if sub.queueControl("overflow") {
		t.Fatalf("full control queue accepted another message")
	}

	sub.close()
	if !sub.queueControl("after close") {
		t.Fatalf("closed subscriber should swallow control messages")
	}
}

func TestPumpStopsOnStateMarshalError(t *testing.T) {
	sub := newSubscriber("s1", nil, time.Second)
	errCh := make(chan error, 1)
	go sub.run(func(err error) { errCh <- err })

	sub.queueState(make(chan int)) // channels cannot be marshalled

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("pump reported nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pump never surfaced the marshal failure")
	}
}

func TestPumpStopsOnControlMarshalError(t *testing.T) {
	sub := newSubscriber("s1", nil, time.Second)
	errCh := make(chan error, 1)
	go sub.run(func(err error) { errCh <- err })

	if !sub.queueControl(make(chan int)) {
		t.Fatalf("control queue rejected the message")
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("pump reported nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pump never surfaced the marshal failure")
	}
}

func TestPumpStopsOnClose(t *testing.T) {
	sub := newSubscriber("s1", nil, time.Second)
	done := make(chan struct{})
	go func() {
		sub.run(nil)
		close(done)
	}()

	sub.close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("pump did not stop after close")
	}
}
