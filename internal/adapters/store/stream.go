package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
	"github.com/spad0604/robot-delivery/internal/ports"
)

const (
	DefaultStreamTimeout    = 60 * time.Second
	DefaultStreamRetryDelay = 5 * time.Second
	defaultEventType        = "message"
)

// ChangeFunc receives the full order list (newest first), the decoded
// event payload and the event type.
type ChangeFunc func(orders []*domain.Order, payload map[string]any, eventType string)

// Event is one server-sent event block.
type Event struct {
	Type string
	Data string
}

// OrderStream subscribes to live changes of the orders node.
//
// Every event triggers a full re-read of the orders rather than applying
// the payload incrementally.
type OrderStream struct {
	session    *http.Client
	url        string
	store      ports.OrderStore
	idle       time.Duration
	retryDelay time.Duration
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewOrderStream listens on <baseURL>/orders.json and re-reads orders
// through s. timeout bounds the wait for the stream to open and the
// silence allowed between lines once it is open; the server sends a
// keep-alive every 30s.
func NewOrderStream(
	baseURL string,
	s ports.OrderStore,
	timeout time.Duration,
	retryDelay time.Duration,
	log *zap.Logger,
	m *metrics.Metrics,
) *OrderStream {
	if timeout <= 0 {
		timeout = DefaultStreamTimeout
	}
	if retryDelay <= 0 {
		retryDelay = DefaultStreamRetryDelay
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &OrderStream{
		session:    &http.Client{Transport: transport},
		url:        strings.TrimRight(baseURL, "/") + "/" + ordersPath + ".json",
		store:      s,
		idle:       timeout,
		retryDelay: retryDelay,
		log:        log,
		metrics:    m,
	}
}

// Listen blocks, reconnecting after every failure or disconnect, until
// ctx is cancelled. onError may be nil, in which case errors are logged.
func (s *OrderStream) Listen(ctx context.Context, onChange ChangeFunc, onError func(error)) {
	emit := func(err error) {
		if onError != nil {
			onError(err)
			return
		}
		s.log.Error("order stream error", zap.Error(err))
	}

	for {
		err := s.listenOnce(ctx, onChange, emit)
		if ctx.Err() != nil {
			s.log.Info("stopped listening for orders")
			return
		}
		if err == nil {
			err = errors.New("order stream closed by server")
		}
		emit(err)

		timer := time.NewTimer(s.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("stopped listening for orders")
			return
		case <-timer.C:
		}
		s.log.Info("reconnecting order stream", zap.String("url", s.url))
	}
}

func (s *OrderStream) listenOnce(ctx context.Context, onChange ChangeFunc, emit func(error)) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stalled atomic.Bool
	idle := time.AfterFunc(s.idle, func() {
		stalled.Store(true)
		cancel()
	})
	defer idle.Stop()

	req, err := http.NewRequestWithContext(connCtx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.session.Do(req)
	if err != nil {
		return fmt.Errorf("open order stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	s.log.Info("listening for order changes", zap.String("url", s.url))

	err = ReadEvents(&idleReader{r: resp.Body, timer: idle, idle: s.idle}, func(ev Event) {
		idle.Stop()
		s.handle(ctx, ev, onChange, emit)
		idle.Reset(s.idle)
	})
	if stalled.Load() && ctx.Err() == nil {
		return fmt.Errorf("order stream silent for %s", s.idle)
	}
	return err
}

// idleReader re-arms timer whenever the body yields data.
type idleReader struct {
	r     io.Reader
	timer *time.Timer
	idle  time.Duration
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.timer.Reset(r.idle)
	}
	return n, err
}

func (s *OrderStream) handle(ctx context.Context, ev Event, onChange ChangeFunc, emit func(error)) {
	payload := map[string]any{}
	if data := strings.TrimSpace(ev.Data); data != "" && data != "null" {
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			emit(fmt.Errorf("decode %s event payload: %w", ev.Type, err))
			return
		}
	}
	s.metrics.StreamEvent(ev.Type)

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		emit(fmt.Errorf("refresh orders: %w", err))
		orders = map[string]*domain.Order{}
	}

	defer func() {
		if r := recover(); r != nil {
			emit(fmt.Errorf("order change callback panicked: %v", r))
		}
	}()
	onChange(domain.SortNewestFirst(orders), payload, ev.Type)
}

// ReadEvents parses a text/event-stream body, calling fn for every block
// that carried data. It returns when r is exhausted or fails.
func ReadEvents(r io.Reader, fn func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		eventType string
		data      []string
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			if len(data) > 0 {
				typ := eventType
				if typ == "" {
					typ = defaultEventType
				}
				fn(Event{Type: typ, Data: strings.Join(data, "\n")})
			}
			eventType = ""
			data = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	return scanner.Err()
}
