package stats

import "time"

// ViewEvent is one successful share-link view.
type ViewEvent struct {
	Code      string
	ViewedAt  time.Time
	IP        string
	UserAgent string
	Referer   string
}

// Collector accepts view events off the request path. Implementations must
// never block the caller.
type Collector interface {
	Collect(event ViewEvent)
	Close()
}

type ChannelCollector struct {
	ch     chan ViewEvent
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch: make(chan ViewEvent, bufferSize),
	}
}

// Collect drops the event when the buffer is full; view detail is lossy by
// contract, the click counter is maintained synchronously elsewhere.
func (c *ChannelCollector) Collect(event ViewEvent) {
	if c.closed {
		return
	}
	select {
	case c.ch <- event:
	default:
	}
}

func (c *ChannelCollector) Events() <-chan ViewEvent {
	return c.ch
}

func (c *ChannelCollector) Close() {
	c.closed = true
	close(c.ch)
}
