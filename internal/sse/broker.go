// Package sse implements a Server-Sent Events broker for live post updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types broadcast to clients.
const (
	EventConnected   = "connected"
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
	EventFeedUpdated = "feed.updated"
)

// DefaultHeartbeatInterval is how often idle streams receive a comment line.
const DefaultHeartbeatInterval = 30 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type postEventReq struct {
	kind string
	path string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the feed throttle
// timestamp; public methods talk to it over channels.
type Broker struct {
	feedMin   time.Duration
	heartbeat time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	postEventCh   chan postEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits feed.updated at most once per
// feedThrottle.
func NewBroker(feedThrottle time.Duration) *Broker {
	if feedThrottle <= 0 {
		feedThrottle = 2 * time.Second
	}

	b := &Broker{
		feedMin:       feedThrottle,
		heartbeat:     DefaultHeartbeatInterval,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		postEventCh:   make(chan postEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// SetHeartbeat changes the idle keep-alive interval for new streams.
func (b *Broker) SetHeartbeat(d time.Duration) {
	if d > 0 {
		b.heartbeat = d
	}
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastFeed time.Time

	broadcast := func(event Event) {
		raw, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.postEventCh:
			typ, ok := postEventType(req.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"path": req.path}})

			now := time.Now()
			if now.Sub(lastFeed) >= b.feedMin {
				lastFeed = now
				broadcast(Event{Type: EventFeedUpdated, Data: map[string]string{"latest": req.path}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func postEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return EventPostCreated, true
	case "updated":
		return EventPostUpdated, true
	case "deleted":
		return EventPostDeleted, true
	}
	return "", false
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishPostEvent broadcasts post.<kind> for path, followed by a throttled
// feed.updated. kind is "created", "updated" or "deleted"; anything else is
// ignored.
func (b *Broker) PublishPostEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.postEventCh <- postEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if hello, err := encode(Event{Type: EventConnected, Data: map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}}); err == nil {
		_, _ = w.Write(hello)
	}
	flusher.Flush()

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": heartbeat %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
