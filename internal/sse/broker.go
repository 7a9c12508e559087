// Package sse streams mood-log changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeCheckinCreated   = "checkin.created"
	TypeCheckinReplaced  = "checkin.replaced"
	TypeLogReloaded      = "log.reloaded"
	TypeDashboardUpdated = "dashboard.updated"
)

// DefaultKeepAlive is the interval between comment frames on idle streams.
const DefaultKeepAlive = 30 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// CheckinData is the payload of checkin.* events.
type CheckinData struct {
	Date   string `json:"date"`
	Streak int    `json:"streak"`
}

// DashboardData is the payload of dashboard.updated and log.reloaded events.
type DashboardData struct {
	Streak int `json:"streak"`
}

// change is a mood-log mutation; every change eventually yields a
// dashboard.updated carrying the newest streak.
type change struct {
	event  Event
	streak int
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the idle ping interval of ServeHTTP. d <= 0 disables pings.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

// WithStreakSource makes every dashboard.updated carry streak() as read at
// emit time instead of the streak attached to the triggering change.
// Changes published out of order then cannot leave clients on a stale value.
func WithStreakSource(streak func() int) Option {
	return func(b *Broker) {
		b.streak = streak
	}
}

// Broker fans events out to SSE clients.
//
// A single goroutine owns the client set, the dashboard throttle and the last
// dashboard frame; public methods talk to it over channels.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration
	streak    func() int

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. dashboard.updated goes out at most once per
// throttle interval; changes inside the window are folded into one trailing
// event so clients always end up with the latest streak.
func NewBroker(throttle time.Duration, opts ...Option) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		throttle:      throttle,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})

	var (
		lastDashboard time.Time
		lastFrame     []byte // most recent dashboard.updated, replayed to new clients
		pending       *DashboardData
		trailing      *time.Timer
		trailingCh    <-chan time.Time
	)

	send := func(raw []byte) {
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	emitDashboard := func(data DashboardData) {
		if b.streak != nil {
			data.Streak = b.streak()
		}
		raw, err := encode(Event{Type: TypeDashboardUpdated, Data: data})
		if err != nil {
			return
		}
		lastDashboard = time.Now()
		lastFrame = raw
		send(raw)
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if lastFrame != nil {
				ch <- lastFrame
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changeCh:
			if raw, err := encode(c.event); err == nil {
				send(raw)
			}

			data := DashboardData{Streak: c.streak}
			wait := b.throttle - time.Since(lastDashboard)
			if wait <= 0 {
				pending = nil
				emitDashboard(data)
				continue
			}
			pending = &data
			if trailing == nil {
				trailing = time.NewTimer(wait)
				trailingCh = trailing.C
			}

		case <-trailingCh:
			trailing, trailingCh = nil, nil
			if pending != nil {
				emitDashboard(*pending)
				pending = nil
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), event.Type, payload)), nil
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed on Unsubscribe or Close.
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

// PublishCheckin announces a recorded entry. A dashboard.updated follows,
// subject to the throttle.
func (b *Broker) PublishCheckin(date string, streak int, replaced bool) {
	typ := TypeCheckinCreated
	if replaced {
		typ = TypeCheckinReplaced
	}
	b.publishChange(change{
		event:  Event{Type: typ, Data: CheckinData{Date: date, Streak: streak}},
		streak: streak,
	})
}

// PublishReload announces that the log was reloaded from storage.
func (b *Broker) PublishReload(streak int) {
	b.publishChange(change{
		event:  Event{Type: TypeLogReloaded, Data: DashboardData{Streak: streak}},
		streak: streak,
	})
}

func (b *Broker) publishChange(c change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- c:
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
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var ping <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		ping = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
