package stats

import (
	"testing"
	"time"
)

func TestChannelCollectorDelivers(t *testing.T) {
	c := NewChannelCollector(2)
	defer c.Close()

	ev := ViewEvent{Code: "abc", ViewedAt: time.Now(), IP: "1.2.3.4"}
	c.Collect(ev)

	select {
	case got := <-c.Events():
		if got.Code != "abc" || got.IP != "1.2.3.4" {
			t.Fatalf("unexpected event: %+v", got)
		}
	default:
		t.Fatal("event not delivered")
	}
}

func TestChannelCollectorDropsWhenFull(t *testing.T) {
	c := NewChannelCollector(1)
	defer c.Close()

	c.Collect(ViewEvent{Code: "first"})
	// Buffer full: this must not block.
	done := make(chan struct{})
	go func() {
		c.Collect(ViewEvent{Code: "second"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Collect blocked on full buffer")
	}

	got := <-c.Events()
	if got.Code != "first" {
		t.Fatalf("kept %q, want first", got.Code)
	}
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected second event: %+v", ev)
	default:
	}
}

func TestChannelCollectorCloseIgnoresLateEvents(t *testing.T) {
	c := NewChannelCollector(1)
	c.Close()
	// Must not panic on a closed channel.
	c.Collect(ViewEvent{Code: "late"})
}
