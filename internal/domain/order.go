package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// CreatedAtLayout is fixed-width so timestamps written by this service
// also order correctly as text.
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z07:00"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

const (
	MinReceiverAge = 18
	MaxReceiverAge = 65
	MinWeightKg    = 0.5
	MaxWeightKg    = 20.0
)

// Represents a delivery order as stored in the realtime database.
// ID is assigned by the store on creation and is empty until then; it is
// never part of the create payload.
type Order struct {
	ID             string       `json:"id,omitempty"`
	CreatedAt      string       `json:"createdAt"`
	DestinationLat float64      `json:"destinationLat"`
	DestinationLng float64      `json:"destinationLng"`
	Goods          string       `json:"goods"`
	PhoneNumber    string       `json:"phoneNumber"`
	ReceiverAge    int          `json:"receiverAge"`
	ReceiverName   string       `json:"receiverName"`
	RoutePoints    []RoutePoint `json:"routePoints"`
	Status         OrderStatus  `json:"status"`
	Weight         float64      `json:"weight"`
}

func (o *Order) Destination() Coordinates {
	return Coordinates{Lat: o.DestinationLat, Lon: o.DestinationLng}
}

// CreatedTime parses CreatedAt; orders written by other clients may carry
// timestamps without a zone, which are read as local time.
func (o *Order) CreatedTime() (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, o.CreatedAt, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("order %q: unparseable createdAt %q", o.ID, o.CreatedAt)
}

// Validate checks the invariants every persisted order must satisfy.
func (o *Order) Validate() error {
	var details []ValidationDetail
	add := func(field, format string, args ...any) {
		details = append(details, ValidationDetail{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if o.CreatedAt == "" {
		add("createdAt", "must not be empty")
	}
	if err := o.Destination().Validate(); err != nil {
		add("destination", "%v", err)
	}
	if o.ReceiverName == "" {
		add("receiverName", "must not be empty")
	}
	if o.ReceiverAge < MinReceiverAge || o.ReceiverAge > MaxReceiverAge {
		add("receiverAge", "%d out of range [%d, %d]", o.ReceiverAge, MinReceiverAge, MaxReceiverAge)
	}
	if o.PhoneNumber == "" {
		add("phoneNumber", "must not be empty")
	}
	if o.Weight < MinWeightKg || o.Weight > MaxWeightKg {
		add("weight", "%.1f out of range [%.1f, %.1f]", o.Weight, MinWeightKg, MaxWeightKg)
	} else if math.Abs(o.Weight*10-math.Round(o.Weight*10)) > 1e-9 {
		add("weight", "%v must have at most one decimal", o.Weight)
	}
	if len(o.RoutePoints) > MaxRoutePoints {
		add("routePoints", "%d points exceeds maximum %d", len(o.RoutePoints), MaxRoutePoints)
	}
	for i, p := range o.RoutePoints {
		if p.Order != i {
			add("routePoints", "point %d has order %d", i, p.Order)
			break
		}
	}
	if !o.Status.Valid() {
		add("status", "unknown status %q", o.Status)
	}

	if len(details) > 0 {
		return NewValidationError("invalid order", details...)
	}
	return nil
}

// ValidateOrderID rejects ids that are empty or would address a different
// node of the store's key space.
func ValidateOrderID(id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError("invalid order id", ValidationDetail{Field: "id", Message: "must not be empty"})
	}
	if strings.ContainsAny(id, "/.#$[]") {
		return NewValidationError("invalid order id", ValidationDetail{Field: "id", Message: fmt.Sprintf("%q contains a reserved character", id)})
	}
	return nil
}

// SortNewestFirst orders by parsed createdAt, most recent first, with the
// id as tiebreak. Orders whose timestamp does not parse go last, newest
// first by text.
func SortNewestFirst(orders map[string]*Order) []*Order {
	type keyed struct {
		o      *Order
		at     time.Time
		parsed bool
	}
	list := make([]keyed, 0, len(orders))
	for _, o := range orders {
		at, err := o.CreatedTime()
		list = append(list, keyed{o: o, at: at, parsed: err == nil})
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed && !a.at.Equal(b.at) {
			return a.at.After(b.at)
		}
		if !a.parsed && a.o.CreatedAt != b.o.CreatedAt {
			return a.o.CreatedAt > b.o.CreatedAt
		}
		return a.o.ID < b.o.ID
	})

	out := make([]*Order, len(list))
	for i, k := range list {
		out[i] = k.o
	}
	return out
}
