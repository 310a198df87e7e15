package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
)

func newFirebase(t *testing.T, h http.HandlerFunc) *FirebaseStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	fs, err := NewFirebaseStore(srv.URL+"/", time.Second, zap.NewNop())
	require.NoError(t, err)
	return fs
}

func TestGetRobotPosition(t *testing.T) {
	cases := []struct {
		name string
		body string
		want *domain.RobotPosition
	}{
		{"lon key", `{"lat": 21.0285, "lon": 105.8542}`, &domain.RobotPosition{Lat: 21.0285, Lon: 105.8542}},
		{"legacy lng key", `{"lat": 21.0285, "lng": 105.8542}`, &domain.RobotPosition{Lat: 21.0285, Lon: 105.8542}},
		{"null means absent", `null`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/robot.json", r.URL.Path)
				_, _ = w.Write([]byte(tc.body))
			})

			got, err := fs.GetRobotPosition(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetRobotPositionFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`},
		{"permission denied", http.StatusUnauthorized, `{"error": "Permission denied"}`},
		{"malformed", http.StatusOK, `{"lat": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			got, err := fs.GetRobotPosition(context.Background())
			assert.Nil(t, got)

			var se *StoreError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "read", se.Op)
			assert.Equal(t, "robot", se.Path)
		})
	}
}

func TestSetRobotPosition(t *testing.T) {
	var got map[string]float64
	fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/robot.json", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		_, _ = w.Write(b)
	})

	err := fs.SetRobotPosition(context.Background(), domain.RobotPosition{Lat: 20.982903, Lon: 105.836822})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"lat": 20.982903, "lon": 105.836822}, got)
}

func TestCreateOrderOmitsID(t *testing.T) {
	var payload map[string]any
	fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders.json", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"name": "-OdiO9pdXUIykq5vwqyL"}`))
	})

	order := &domain.Order{
		ID:             "should-not-be-sent",
		CreatedAt:      "2026-01-01T08:00:00+07:00",
		DestinationLat: 21.03,
		DestinationLng: 105.79,
		Status:         domain.OrderStatusPending,
		RoutePoints:    domain.NewRoutePoints([]domain.Coordinates{{Lat: 1, Lon: 2}}),
	}
	id, err := fs.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "-OdiO9pdXUIykq5vwqyL", id)

	assert.NotContains(t, payload, "id")
	assert.Equal(t, "pending", payload["status"])
	assert.Equal(t, "should-not-be-sent", order.ID, "caller's order must not be modified")
}

func TestCreateOrderWithoutGeneratedName(t *testing.T) {
	fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	id, err := fs.CreateOrder(context.Background(), &domain.Order{})
	assert.Empty(t, id)
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "write", se.Op)
}

func TestListOrders(t *testing.T) {
	fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders.json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"-A": {"createdAt": "2026-01-01T08:00:00", "receiverName": "Lê Hoa", "status": "pending",
			       "routePoints": [{"lat": 1, "lng": 2, "order": 0}], "weight": 1.5},
			"-B": {"createdAt": "2026-01-02T08:00:00", "receiverName": "Vũ Nam", "status": "completed"},
			"-C": "not an order"
		}`))
	})

	orders, err := fs.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "-A", orders["-A"].ID)
	assert.Equal(t, "Lê Hoa", orders["-A"].ReceiverName)
	assert.Equal(t, domain.OrderStatusCompleted, orders["-B"].Status)
	assert.Len(t, orders["-A"].RoutePoints, 1)
}

func TestListOrdersNull(t *testing.T) {
	fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	orders, err := fs.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestGetOrder(t *testing.T) {
	fs := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/-A.json":
			_, _ = w.Write([]byte(`{"createdAt": "2026-01-01T08:00:00", "goods": "Hoa tươi", "status": "pending"}`))
		default:
			_, _ = w.Write([]byte(`null`))
		}
	})

	o, err := fs.GetOrder(context.Background(), "-A")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "-A", o.ID)
	assert.Equal(t, "Hoa tươi", o.Goods)

	missing, err := fs.GetOrder(context.Background(), "-Z")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, id := range []string{"../robot", "a.b", " "} {
		_, err = fs.GetOrder(context.Background(), id)
		_, invalid := domain.IsValidationError(err)
		assert.True(t, invalid, "id %q: %v", id, err)
	}
}

func TestNewFirebaseStoreRequiresURL(t *testing.T) {
	_, err := NewFirebaseStore("  ", time.Second, zap.NewNop())
	assert.Error(t, err)
}
