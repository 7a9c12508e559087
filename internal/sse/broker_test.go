package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCheckin("2024-01-01", 1, false)

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "id: ") {
			t.Errorf("missing event id in %q", s)
		}
		if !strings.Contains(s, "event: checkin.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"date":"2024-01-01"`) || !strings.Contains(s, `"streak":1`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishCheckin_DashboardThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger dashboard.updated.
	b.PublishCheckin("2024-01-01", 1, false)
	// Second event immediately should NOT trigger another dashboard.updated.
	b.PublishCheckin("2024-01-01", 1, true)

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	dashboardCount, createdCount, replacedCount := 0, 0, 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			switch {
			case strings.Contains(s, "event: "+TypeDashboardUpdated):
				dashboardCount++
			case strings.Contains(s, "event: "+TypeCheckinCreated):
				createdCount++
			case strings.Contains(s, "event: "+TypeCheckinReplaced):
				replacedCount++
			}
		default:
			break loop
		}
	}

	if createdCount != 1 || replacedCount != 1 {
		t.Errorf("created = %d, replaced = %d, want 1 each", createdCount, replacedCount)
	}
	if dashboardCount != 1 {
		t.Errorf("dashboard events = %d, want 1 (throttled)", dashboardCount)
	}
}

func TestPublishReload(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishReload(4)

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: log.reloaded") || !strings.Contains(s, `"streak":4`) {
			t.Errorf("unexpected reload frame %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reload event")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishCheckin("2024-01-02", 2, true)
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: checkin.replaced") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

// next reads frames from ch until one of type typ arrives.
func next(t *testing.T, ch chan []byte, typ string, timeout time.Duration) string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: "+typ+"\n") {
				return string(msg)
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", typ)
			return ""
		}
	}
}

func TestDashboardThrottle_TrailingEventCarriesLatestStreak(t *testing.T) {
	b := NewBroker(150 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCheckin("2024-01-01", 1, false)
	if msg := next(t, ch, TypeDashboardUpdated, time.Second); !strings.Contains(msg, `"streak":1`) {
		t.Fatalf("first dashboard frame = %q", msg)
	}

	b.PublishCheckin("2024-01-02", 2, false)
	b.PublishCheckin("2024-01-03", 3, false)

	msg := next(t, ch, TypeDashboardUpdated, time.Second)
	if !strings.Contains(msg, `"streak":3`) {
		t.Errorf("trailing dashboard frame = %q, want streak 3", msg)
	}

	select {
	case extra := <-ch:
		if strings.Contains(string(extra), TypeDashboardUpdated) {
			t.Errorf("unexpected extra dashboard frame %q", extra)
		}
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSubscribeReplaysLastDashboard(t *testing.T) {
	b := NewBroker(10 * time.Millisecond)
	defer b.Close()

	first := b.Subscribe()
	b.PublishCheckin("2024-01-01", 5, false)
	next(t, first, TypeDashboardUpdated, time.Second)
	b.Unsubscribe(first)

	late := b.Subscribe()
	defer b.Unsubscribe(late)
	msg := next(t, late, TypeDashboardUpdated, time.Second)
	if !strings.Contains(msg, `"streak":5`) {
		t.Errorf("replayed frame = %q", msg)
	}
}

func TestSSEHandler_KeepAlive(t *testing.T) {
	b := NewBroker(time.Second, WithKeepAlive(20*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(w.Body.String(), ": ping\n\n") {
		t.Errorf("expected keep-alive ping, got %q", w.Body.String())
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.PublishCheckin("2024-01-01", i, false)
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishCheckin("2024-01-01", 1, false)
	b.PublishReload(0)
}

func TestDashboard_StreakSourceWinsOverStaleChange(t *testing.T) {
	var current atomic.Int64
	current.Store(2)
	b := NewBroker(time.Millisecond, WithStreakSource(func() int { return int(current.Load()) }))
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// A check-in that lost the race publishes the older streak last.
	b.PublishCheckin("2024-01-01", 1, false)

	msg := next(t, ch, TypeDashboardUpdated, time.Second)
	if !strings.Contains(msg, `"streak":2`) {
		t.Errorf("dashboard frame = %q, want the current streak 2", msg)
	}
}
