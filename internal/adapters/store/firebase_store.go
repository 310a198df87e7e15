package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/obs"
)

const (
	DefaultTimeout = 10 * time.Second

	robotPath  = "robot"
	ordersPath = "orders"
)

// FirebaseStore implements OrderStore over the Firebase Realtime Database
// REST API, where every node is addressed as <base>/<path>.json and a
// literal "null" body means the node is empty.
//
// The store is safe for concurrent use.
type FirebaseStore struct {
	session *http.Client
	baseURL string
	log     *zap.Logger
}

func NewFirebaseStore(baseURL string, timeout time.Duration, log *zap.Logger) (*FirebaseStore, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("firebase store: base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("firebase store: parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &FirebaseStore{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
		log:     log,
	}, nil
}

func (f *FirebaseStore) BaseURL() string { return f.baseURL }

func (f *FirebaseStore) nodeURL(path string) string {
	if path == "" {
		return f.baseURL + "/.json"
	}
	return f.baseURL + "/" + path + ".json"
}

func (f *FirebaseStore) GetRobotPosition(ctx context.Context) (_ *domain.RobotPosition, err error) {
	defer obs.Time(ctx, f.log, "store.GetRobotPosition")(&err)

	var pos domain.RobotPosition
	found, err := f.request(ctx, http.MethodGet, robotPath, nil, &pos)
	if err != nil {
		return nil, &StoreError{Op: "read", Path: robotPath, Err: err}
	}
	if !found {
		return nil, nil
	}
	return &pos, nil
}

func (f *FirebaseStore) SetRobotPosition(ctx context.Context, pos domain.RobotPosition) (err error) {
	defer obs.Time(ctx, f.log, "store.SetRobotPosition")(&err)

	if _, err := f.request(ctx, http.MethodPut, robotPath, pos, nil); err != nil {
		return &StoreError{Op: "write", Path: robotPath, Err: err}
	}
	return nil
}

// CreateOrder POSTs the order without its identifier; Firebase answers
// with {"name": "<generated key>"}.
func (f *FirebaseStore) CreateOrder(ctx context.Context, order *domain.Order) (_ string, err error) {
	defer obs.Time(ctx, f.log, "store.CreateOrder")(&err)

	payload := *order
	payload.ID = ""

	var created struct {
		Name string `json:"name"`
	}
	found, err := f.request(ctx, http.MethodPost, ordersPath, payload, &created)
	if err != nil {
		return "", &StoreError{Op: "write", Path: ordersPath, Err: err}
	}
	if !found || created.Name == "" {
		return "", &StoreError{Op: "write", Path: ordersPath, Err: errors.New("response carried no generated name")}
	}
	return created.Name, nil
}

func (f *FirebaseStore) ListOrders(ctx context.Context) (_ map[string]*domain.Order, err error) {
	defer obs.Time(ctx, f.log, "store.ListOrders")(&err)

	raw := map[string]json.RawMessage{}
	found, err := f.request(ctx, http.MethodGet, ordersPath, nil, &raw)
	if err != nil {
		return nil, &StoreError{Op: "read", Path: ordersPath, Err: err}
	}

	orders := make(map[string]*domain.Order, len(raw))
	if !found {
		return orders, nil
	}

	for id, body := range raw {
		var o domain.Order
		if err := json.Unmarshal(body, &o); err != nil {
			// One malformed record written by another client should not
			// hide the rest.
			f.log.Warn("skipping unparseable order", zap.String("order_id", id), zap.Error(err))
			continue
		}
		o.ID = id
		orders[id] = &o
	}
	return orders, nil
}

func (f *FirebaseStore) GetOrder(ctx context.Context, id string) (_ *domain.Order, err error) {
	defer obs.Time(ctx, f.log, "store.GetOrder")(&err)

	if err := domain.ValidateOrderID(id); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	path := ordersPath + "/" + id
	var o domain.Order
	found, err := f.request(ctx, http.MethodGet, path, nil, &o)
	if err != nil {
		return nil, &StoreError{Op: "read", Path: path, Err: err}
	}
	if !found {
		return nil, nil
	}
	o.ID = id
	return &o, nil
}

// request performs one REST call. found is false when the body was the
// literal null. out may be nil when the response is not needed.
func (f *FirebaseStore) request(ctx context.Context, method, path string, in any, out any) (found bool, err error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.nodeURL(path), body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.session.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
