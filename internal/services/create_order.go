package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
	"github.com/spad0604/robot-delivery/internal/platform/obs"
	"github.com/spad0604/robot-delivery/internal/ports"
)

var (
	// ErrRobotPositionUnavailable aborts order creation before any routing
	// call when the store holds no usable robot position.
	ErrRobotPositionUnavailable = errors.New("robot position unavailable")
	ErrOrderNotCreated          = errors.New("order was not created")
)

// OrderCreator assembles synthetic orders and persists them.
//
// Log, Events and Archive are optional; failures there are logged and
// never undo a created order.
type OrderCreator struct {
	Store          ports.OrderStore
	Routes         ports.RouteProvider
	Receivers      *ReceiverGenerator
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	MaxRoutePoints int
	Now            func() time.Time

	OrderLog ports.OrderLog
	Events   ports.OrderEventPublisher
	Archive  ports.RouteArchive
}

// CreateFromURL resolves the destination from a map link and creates an
// order to it.
func (c *OrderCreator) CreateFromURL(ctx context.Context, mapURL string) (string, error) {
	dest, err := ResolveMapURL(mapURL)
	if err != nil {
		return "", fmt.Errorf("create order from url: %w", err)
	}
	c.Log.Info("parsed destination from map link",
		zap.Float64("lat", dest.Lat), zap.Float64("lng", dest.Lon))

	return c.Create(ctx, dest)
}

// Create builds an order from the robot's current position to destination
// and writes it to the store, returning the generated identifier.
func (c *OrderCreator) Create(ctx context.Context, destination domain.Coordinates) (_ string, err error) {
	defer obs.Time(ctx, c.Log, "orders.Create")(&err)
	defer func() {
		if err != nil {
			c.Metrics.OrderCreated("failure")
		} else {
			c.Metrics.OrderCreated("success")
		}
	}()

	if err := destination.Validate(); err != nil {
		return "", fmt.Errorf("create order: destination: %w", err)
	}

	robot, err := c.Store.GetRobotPosition(ctx)
	if err != nil {
		return "", fmt.Errorf("create order: %w: %w", ErrRobotPositionUnavailable, err)
	}
	if robot == nil {
		return "", fmt.Errorf("create order: %w: no position stored", ErrRobotPositionUnavailable)
	}
	origin := robot.Coordinates()
	c.Log.Info("robot location",
		zap.Float64("lat", origin.Lat), zap.Float64("lng", origin.Lon))

	c.Log.Info("requesting route",
		zap.Stringer("from", origin), zap.Stringer("to", destination))
	path, ok := c.Routes.FetchRoute(ctx, origin, destination)
	if !ok || len(path) == 0 {
		c.Log.Warn("routing failed, using straight path")
		path = []domain.Coordinates{origin, destination}
	}

	order, err := c.assemble(destination, path)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}

	id, err := c.Store.CreateOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("create order: %w: %w", ErrOrderNotCreated, err)
	}
	if id == "" {
		return "", fmt.Errorf("create order: %w: store returned no identifier", ErrOrderNotCreated)
	}
	order.ID = id
	c.Log.Info("order created", zap.String("order_id", id))

	c.afterCreate(ctx, order)
	return id, nil
}

func (c *OrderCreator) assemble(destination domain.Coordinates, path []domain.Coordinates) (*domain.Order, error) {
	max := c.MaxRoutePoints
	if max <= 0 || max > domain.MaxRoutePoints {
		max = domain.MaxRoutePoints
	}
	sampled := Downsample(path, max)
	if len(sampled) < len(path) {
		c.Log.Info("downsampled route",
			zap.Int("from_points", len(path)), zap.Int("to_points", len(sampled)))
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	r := c.Receivers.Generate()
	order := &domain.Order{
		CreatedAt:      now().Format(domain.CreatedAtLayout),
		DestinationLat: destination.Lat,
		DestinationLng: destination.Lon,
		Goods:          r.Goods,
		PhoneNumber:    r.Phone,
		ReceiverAge:    r.Age,
		ReceiverName:   r.Name,
		RoutePoints:    domain.NewRoutePoints(sampled),
		Status:         domain.OrderStatusPending,
		Weight:         r.Weight,
	}

	c.Log.Info("generated order details",
		zap.String("receiver", order.ReceiverName),
		zap.Int("age", order.ReceiverAge),
		zap.String("phone", order.PhoneNumber),
		zap.String("goods", order.Goods),
		zap.Float64("weight_kg", order.Weight),
		zap.Int("route_points", len(order.RoutePoints)),
	)

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *OrderCreator) afterCreate(ctx context.Context, order *domain.Order) {
	if c.OrderLog != nil {
		if err := c.OrderLog.Record(ctx, order); err != nil {
			c.Log.Warn("order log write failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	if c.Events != nil {
		if err := c.Events.PublishOrderCreated(ctx, order); err != nil {
			c.Log.Warn("order event publish failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	if c.Archive != nil {
		key, err := c.Archive.ArchiveRoute(ctx, order)
		if err != nil {
			c.Log.Warn("route archive failed", zap.String("order_id", order.ID), zap.Error(err))
		} else {
			c.Log.Debug("route archived", zap.String("order_id", order.ID), zap.String("key", key))
		}
	}
}

// BatchSummary reports the outcome of CreateBatch.
type BatchSummary struct {
	Requested int
	Succeeded int
	Failed    int
	OrderIDs  []string
}

// CreateBatch creates count orders, each to a destination picked at random
// from destinations, pausing delay between orders. It stops early when
// ctx is cancelled; individual failures are counted, not returned.
func (c *OrderCreator) CreateBatch(
	ctx context.Context,
	count int,
	delay time.Duration,
	destinations []domain.Destination,
	rng *rand.Rand,
) (BatchSummary, error) {
	summary := BatchSummary{Requested: count}
	if count <= 0 {
		return summary, errors.New("create batch: count must be positive")
	}
	if len(destinations) == 0 {
		return summary, errors.New("create batch: no destinations available")
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	for i := 0; i < count; i++ {
		dest := destinations[rng.IntN(len(destinations))]
		c.Log.Info("creating batch order",
			zap.Int("n", i+1), zap.Int("of", count), zap.String("destination", dest.Name))

		id, err := c.Create(ctx, dest.Coordinates())
		if err != nil {
			summary.Failed++
			c.Log.Error("batch order failed", zap.Int("n", i+1), zap.Error(err))
		} else {
			summary.Succeeded++
			summary.OrderIDs = append(summary.OrderIDs, id)
		}

		if i == count-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return summary, ctx.Err()
		case <-timer.C:
		}
	}

	return summary, nil
}
