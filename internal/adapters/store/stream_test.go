package store

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
)

func TestReadEvents(t *testing.T) {
	body := strings.Join([]string{
		"event: put",
		`data: {"path": "/", "data": null}`,
		"",
		": comment lines are ignored",
		"event: keep-alive",
		"",
		`data: {"a": 1}`,
		"",
		"event: patch",
		`data: {"path": "/-A",`,
		`data:  "data": {"status": "completed"}}`,
		"",
	}, "\n")

	var got []Event
	require.NoError(t, ReadEvents(strings.NewReader(body), func(ev Event) {
		got = append(got, ev)
	}))

	want := []Event{
		{Type: "put", Data: `{"path": "/", "data": null}`},
		{Type: "message", Data: `{"a": 1}`},
		{Type: "patch", Data: "{\"path\": \"/-A\",\n\"data\": {\"status\": \"completed\"}}"},
	}
	assert.Equal(t, want, got)
}

func TestReadEventsDropsUnterminatedBlock(t *testing.T) {
	var n int
	require.NoError(t, ReadEvents(strings.NewReader("event: put\ndata: {}"), func(Event) { n++ }))
	assert.Zero(t, n)
}

func TestListenDeliversFullOrderList(t *testing.T) {
	mem := NewMemoryStore()
	_, err := mem.CreateOrder(context.Background(), &domain.Order{CreatedAt: "2026-01-01T08:00:00"})
	require.NoError(t, err)
	_, err = mem.CreateOrder(context.Background(), &domain.Order{CreatedAt: "2026-01-02T08:00:00"})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders.json", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: put\ndata: {\"path\": \"/\", \"data\": {}}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type call struct {
		orders    []*domain.Order
		payload   map[string]any
		eventType string
	}
	calls := make(chan call, 1)

	stream := NewOrderStream(srv.URL, mem, time.Second, 10*time.Millisecond, zap.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		stream.Listen(ctx, func(orders []*domain.Order, payload map[string]any, eventType string) {
			calls <- call{orders, payload, eventType}
		}, nil)
	}()

	select {
	case c := <-calls:
		assert.Equal(t, "put", c.eventType)
		assert.Equal(t, "/", c.payload["path"])
		require.Len(t, c.orders, 2)
		assert.Equal(t, "2026-01-02T08:00:00", c.orders[0].CreatedAt)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestListenReconnectsAfterFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "event: put\ndata: null\n\n")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		errs   []error
		events int
	)
	stream := NewOrderStream(srv.URL, NewMemoryStore(), time.Second, 10*time.Millisecond, zap.NewNop(), nil)
	go stream.Listen(ctx, func(orders []*domain.Order, payload map[string]any, _ string) {
		mu.Lock()
		defer mu.Unlock()
		events++
		assert.Empty(t, payload)
		assert.Empty(t, orders)
	}, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return events > 0
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "503")
}

func TestListenSurvivesCallbackPanicAndBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: put\ndata: {not json\n\n")
		fmt.Fprint(w, "event: patch\ndata: {}\n\n")
		fmt.Fprint(w, "event: put\ndata: {}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		seen  []string
		fails []error
	)
	stream := NewOrderStream(srv.URL, NewMemoryStore(), time.Second, time.Second, zap.NewNop(), nil)
	go stream.Listen(ctx, func(_ []*domain.Order, _ map[string]any, eventType string) {
		mu.Lock()
		seen = append(seen, eventType)
		mu.Unlock()
		if eventType == "patch" {
			panic("boom")
		}
	}, func(err error) {
		mu.Lock()
		fails = append(fails, err)
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"patch", "put"}, seen)
	require.Len(t, fails, 2)
	assert.Contains(t, fails[0].Error(), "decode put event payload")
	assert.Contains(t, fails[1].Error(), "panicked")
}

func TestListenReconnectsWhenStreamGoesSilent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		errs []error
	)
	stream := NewOrderStream(srv.URL, NewMemoryStore(), 200*time.Millisecond, 10*time.Millisecond, zap.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		stream.Listen(ctx, func([]*domain.Order, map[string]any, string) {}, func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "silent for 200ms")
}

func TestListenKeepsStreamAliveWhileLinesArrive(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 8; i++ {
			fmt.Fprint(w, "event: keep-alive\ndata: null\n\n")
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events atomic.Int32
	stream := NewOrderStream(srv.URL, NewMemoryStore(), 200*time.Millisecond, 10*time.Millisecond, zap.NewNop(), nil)
	go stream.Listen(ctx, func([]*domain.Order, map[string]any, string) { events.Add(1) }, func(error) {})

	require.Eventually(t, func() bool { return events.Load() == 8 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), hits.Load())
}
