package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
)

// DefaultEndpoints are public OSRM mirrors, tried in order.
var DefaultEndpoints = []string{
	"https://router.project-osrm.org",
	"https://routing.openstreetmap.de/routed-car",
}

const DefaultTimeout = 30 * time.Second

var errNoRoute = errors.New("no route found")

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// OSRMRouteProvider implements RouteProvider against one or more OSRM
// servers, falling back to the next endpoint whenever one fails.
//
// The provider is safe for concurrent use.
type OSRMRouteProvider struct {
	session   *http.Client
	endpoints []string
	userAgent string
	log       *zap.Logger
	metrics   *metrics.Metrics
}

type Option func(*OSRMRouteProvider)

func WithHTTPClient(c *http.Client) Option {
	return func(o *OSRMRouteProvider) { o.session = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *OSRMRouteProvider) { o.metrics = m }
}

func NewOSRMRouteProvider(endpoints []string, timeout time.Duration, log *zap.Logger, opts ...Option) (*OSRMRouteProvider, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("osrm: at least one endpoint is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cleaned := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e = strings.TrimRight(strings.TrimSpace(e), "/"); e != "" {
			cleaned = append(cleaned, e)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("osrm: at least one endpoint is required")
	}

	provider := &OSRMRouteProvider{
		session:   &http.Client{Timeout: timeout},
		endpoints: cleaned,
		userAgent: "robot-delivery/1.0",
		log:       log,
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider, nil
}

// FetchRoute asks each endpoint in turn for a driving route and returns
// the first one found, converted from OSRM's [lng, lat] pairs. ok is false
// when every endpoint failed.
func (o *OSRMRouteProvider) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) ([]domain.Coordinates, bool) {
	for _, endpoint := range o.endpoints {
		if ctx.Err() != nil {
			break
		}

		o.log.Debug("trying OSRM server", zap.String("endpoint", endpoint))
		path, err := o.fetchFrom(ctx, endpoint, origin, destination)
		if err != nil {
			o.metrics.RouteFetch(endpoint, "failure")
			o.log.Warn("OSRM server failed", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}

		o.metrics.RouteFetch(endpoint, "ok")
		return path, true
	}

	o.log.Warn("all OSRM servers failed", zap.Int("endpoints", len(o.endpoints)))
	return nil, false
}

func (o *OSRMRouteProvider) routeURL(endpoint string, origin, destination domain.Coordinates) string {
	return fmt.Sprintf(
		"%s/route/v1/driving/%s,%s;%s,%s?overview=full&geometries=geojson",
		endpoint,
		formatCoord(origin.Lon), formatCoord(origin.Lat),
		formatCoord(destination.Lon), formatCoord(destination.Lat),
	)
}

func (o *OSRMRouteProvider) fetchFrom(
	ctx context.Context,
	endpoint string,
	origin domain.Coordinates,
	destination domain.Coordinates,
) ([]domain.Coordinates, error) {
	req, err := o.newRequest(ctx, o.routeURL(endpoint, origin, destination))
	if err != nil {
		return nil, err
	}

	resp, err := o.do(req)
	if err != nil {
		return nil, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}

	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("%w: code=%q message=%q", errNoRoute, decoded.Code, decoded.Message)
	}

	route := decoded.Routes[0]
	path := make([]domain.Coordinates, 0, len(route.Geometry.Coordinates))
	for i, pair := range route.Geometry.Coordinates {
		if len(pair) < 2 {
			return nil, fmt.Errorf("invalid coordinate at index %d", i)
		}
		path = append(path, domain.Coordinates{Lat: pair[1], Lon: pair[0]})
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty geometry", errNoRoute)
	}

	o.log.Info("OSRM route found",
		zap.String("endpoint", endpoint),
		zap.Int("points", len(path)),
		zap.String("distance", fmt.Sprintf("%.2f km", route.Distance/1000)),
		zap.String("duration", fmt.Sprintf("%.1f minutes", route.Duration/60)),
	)
	return path, nil
}

// formatCoord renders a coordinate with the shortest exact representation.
func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
