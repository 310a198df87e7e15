package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() Order {
	return Order{
		CreatedAt:      "2026-01-01T08:00:00+07:00",
		DestinationLat: 21.034317,
		DestinationLng: 105.7932251,
		Goods:          "Hoa tươi",
		PhoneNumber:    "0901234567",
		ReceiverAge:    30,
		ReceiverName:   "Nguyễn Anh",
		RoutePoints: NewRoutePoints([]Coordinates{
			{Lat: 21.0285, Lon: 105.8542},
			{Lat: 21.034317, Lon: 105.7932251},
		}),
		Status: OrderStatusPending,
		Weight: 2.5,
	}
}

func TestOrderValidate(t *testing.T) {
	o := validOrder()
	assert.NoError(t, o.Validate())
}

func TestOrderValidateRejectsBrokenInvariants(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(o *Order)
		field  string
	}{
		{"age too low", func(o *Order) { o.ReceiverAge = 17 }, "receiverAge"},
		{"age too high", func(o *Order) { o.ReceiverAge = 66 }, "receiverAge"},
		{"weight too light", func(o *Order) { o.Weight = 0.4 }, "weight"},
		{"weight two decimals", func(o *Order) { o.Weight = 1.25 }, "weight"},
		{"unknown status", func(o *Order) { o.Status = "lost" }, "status"},
		{"too many points", func(o *Order) {
			o.RoutePoints = NewRoutePoints(make([]Coordinates, MaxRoutePoints+1))
		}, "routePoints"},
		{"gap in point order", func(o *Order) { o.RoutePoints[1].Order = 5 }, "routePoints"},
		{"destination off globe", func(o *Order) { o.DestinationLat = 120 }, "destination"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validOrder()
			tc.mutate(&o)

			ve, ok := IsValidationError(o.Validate())
			require.True(t, ok)
			assert.Equal(t, tc.field, ve.Details[0].Field)
		})
	}
}

func TestOrderJSONOmitsEmptyID(t *testing.T) {
	o := validOrder()
	b, err := json.Marshal(o)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "id")
	assert.Equal(t, "pending", fields["status"])
	assert.Contains(t, fields, "routePoints")
}

func TestOrderCreatedTime(t *testing.T) {
	o := validOrder()
	got, err := o.CreatedTime()
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)))

	// Timestamps without a zone, as written by other clients.
	o.CreatedAt = "2025-11-20T10:15:30.123456"
	_, err = o.CreatedTime()
	assert.NoError(t, err)

	o.CreatedAt = "yesterday"
	_, err = o.CreatedTime()
	assert.Error(t, err)
}

func TestNewRoutePointsNumbersContiguously(t *testing.T) {
	points := NewRoutePoints([]Coordinates{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 5, Lon: 6}})
	for i, p := range points {
		assert.Equal(t, i, p.Order)
	}
	assert.Equal(t, RoutePoint{Lat: 3, Lng: 4, Order: 1}, points[1])
	assert.Equal(t, Coordinates{Lat: 5, Lon: 6}, RouteCoordinates(points)[2])
}

func TestRobotPositionUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		body string
		want RobotPosition
	}{
		{"lon key", `{"lat": 21.0285, "lon": 105.8542}`, RobotPosition{Lat: 21.0285, Lon: 105.8542}},
		{"legacy lng key", `{"lat": 21.0285, "lng": 105.8542}`, RobotPosition{Lat: 21.0285, Lon: 105.8542}},
		{"lon wins over lng", `{"lat": 1, "lon": 2, "lng": 3}`, RobotPosition{Lat: 1, Lon: 2}},
		{"no longitude", `{"lat": 1}`, RobotPosition{Lat: 1, Lon: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got RobotPosition
			require.NoError(t, json.Unmarshal([]byte(tc.body), &got))
			assert.Equal(t, tc.want, got)
		})
	}

	var missing RobotPosition
	assert.Error(t, json.Unmarshal([]byte(`{"lon": 1}`), &missing))
}

func TestSortNewestFirst(t *testing.T) {
	orders := map[string]*Order{
		"-A": {ID: "-A", CreatedAt: "2026-01-01T08:00:00"},
		"-B": {ID: "-B", CreatedAt: "2026-01-03T08:00:00"},
		"-C": {ID: "-C", CreatedAt: "2026-01-02T08:00:00"},
		"-D": {ID: "-D", CreatedAt: "2026-01-02T08:00:00"},
	}

	got := SortNewestFirst(orders)
	ids := make([]string, 0, len(got))
	for _, o := range got {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"-B", "-C", "-D", "-A"}, ids)
	assert.Empty(t, SortNewestFirst(nil))
}

func TestSortNewestFirstWithinOneSecond(t *testing.T) {
	orders := map[string]*Order{
		"-A": {ID: "-A", CreatedAt: "2026-01-02T03:04:05.1Z"},
		"-B": {ID: "-B", CreatedAt: "2026-01-02T03:04:05.12Z"},
		"-C": {ID: "-C", CreatedAt: "2026-01-02T10:04:05.05+07:00"},
		"-D": {ID: "-D", CreatedAt: "not a time"},
	}

	got := SortNewestFirst(orders)
	ids := make([]string, 0, len(got))
	for _, o := range got {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"-B", "-A", "-C", "-D"}, ids)
}

func TestCreatedAtLayoutIsFixedWidth(t *testing.T) {
	a := time.Date(2026, 1, 2, 3, 4, 5, 100_000_000, time.UTC).Format(CreatedAtLayout)
	b := time.Date(2026, 1, 2, 3, 4, 5, 120_000_000, time.UTC).Format(CreatedAtLayout)
	assert.Equal(t, "2026-01-02T03:04:05.100000Z", a)
	assert.Len(t, b, len(a))
	assert.Less(t, a, b)

	parsed, err := (&Order{CreatedAt: b}).CreatedTime()
	assert.NoError(t, err)
	assert.Equal(t, 120*time.Millisecond, time.Duration(parsed.Nanosecond()))
}

func TestValidateOrderID(t *testing.T) {
	assert.NoError(t, ValidateOrderID("-Nx3kQ2"))
	for _, id := range []string{"", "  ", "a.b", "a/b", "x#", "$y", "[0]"} {
		err := ValidateOrderID(id)
		_, invalid := IsValidationError(err)
		assert.True(t, invalid, "id %q", id)
	}
}
