package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/spad0604/robot-delivery/internal/domain"
)

type Config struct {
	Store    StoreConfig
	Routing  RoutingConfig
	Walk     WalkConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Minio    MinioConfig
	Server   ServerConfig
	Log      LogConfig
}

type StoreConfig struct {
	Driver           string
	FirebaseURL      string
	Timeout          time.Duration
	StreamTimeout    time.Duration
	StreamRetryDelay time.Duration
}

type RoutingConfig struct {
	Endpoints      []string
	Timeout        time.Duration
	MaxRoutePoints int
}

type WalkConfig struct {
	Interval       time.Duration
	MaxDistanceM   float64
	Bounds         domain.BoundingBox
	BatchDelay     time.Duration
	DefaultLat     float64
	DefaultLon     float64
	InitialLat     float64
	InitialLon     float64
	InitialDefined bool
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	SeedPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	RouteTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type ServerConfig struct {
	Port        string
	MetricsAddr string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (when present) and the process environment into a
// Config. v may carry flag bindings; nil uses a fresh viper instance.
func Load(v *viper.Viper) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()
	setDefaults(v)

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"STORE_TIMEOUT", "STREAM_TIMEOUT", "STREAM_RETRY_DELAY",
		"ROUTE_TIMEOUT", "WALK_INTERVAL", "BATCH_DELAY", "ROUTE_CACHE_TTL",
	} {
		d, err := parseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", key, err)
		}
		durations[key] = d
	}

	bounds, err := parseBounds(v.GetString("WALK_BOUNDS"))
	if err != nil {
		return nil, fmt.Errorf("config: WALK_BOUNDS: %w", err)
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:           strings.ToLower(v.GetString("STORE_DRIVER")),
			FirebaseURL:      strings.TrimRight(v.GetString("FIREBASE_URL"), "/"),
			Timeout:          durations["STORE_TIMEOUT"],
			StreamTimeout:    durations["STREAM_TIMEOUT"],
			StreamRetryDelay: durations["STREAM_RETRY_DELAY"],
		},
		Routing: RoutingConfig{
			Endpoints:      splitList(v.GetString("OSRM_ENDPOINTS")),
			Timeout:        durations["ROUTE_TIMEOUT"],
			MaxRoutePoints: v.GetInt("MAX_ROUTE_POINTS"),
		},
		Walk: WalkConfig{
			Interval:       durations["WALK_INTERVAL"],
			MaxDistanceM:   v.GetFloat64("WALK_MAX_DISTANCE"),
			Bounds:         bounds,
			BatchDelay:     durations["BATCH_DELAY"],
			DefaultLat:     v.GetFloat64("WALK_DEFAULT_LAT"),
			DefaultLon:     v.GetFloat64("WALK_DEFAULT_LON"),
			InitialLat:     v.GetFloat64("WALK_INITIAL_LAT"),
			InitialLon:     v.GetFloat64("WALK_INITIAL_LON"),
			InitialDefined: v.IsSet("WALK_INITIAL_LAT") && v.IsSet("WALK_INITIAL_LON"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DATABASE_DRIVER"),
			URL:      v.GetString("DATABASE_URL"),
			SeedPath: v.GetString("SEED_PATH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			RouteTTL: durations["ROUTE_CACHE_TTL"],
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			MetricsAddr: v.GetString("METRICS_ADDR"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE_DRIVER", "firebase")
	v.SetDefault("FIREBASE_URL", "https://robot-delivery-cbdcf-default-rtdb.firebaseio.com")
	v.SetDefault("STORE_TIMEOUT", "10s")
	v.SetDefault("STREAM_TIMEOUT", "60s")
	v.SetDefault("STREAM_RETRY_DELAY", "5s")
	v.SetDefault("OSRM_ENDPOINTS", "https://router.project-osrm.org,https://routing.openstreetmap.de/routed-car")
	v.SetDefault("ROUTE_TIMEOUT", "30s")
	v.SetDefault("MAX_ROUTE_POINTS", domain.MaxRoutePoints)
	v.SetDefault("WALK_INTERVAL", "10s")
	v.SetDefault("WALK_MAX_DISTANCE", 200.0)
	v.SetDefault("WALK_BOUNDS", "20.9,21.1,105.7,105.9")
	v.SetDefault("WALK_DEFAULT_LAT", 21.0285)
	v.SetDefault("WALK_DEFAULT_LON", 105.8542)
	v.SetDefault("BATCH_DELAY", "2s")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "data/app.db")
	v.SetDefault("SEED_PATH", "data/seeds/destinations.json")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ROUTE_CACHE_TTL", "24h")
	v.SetDefault("KAFKA_TOPIC", "robot-delivery.orders")
	v.SetDefault("MINIO_BUCKET", "robot-delivery-routes")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "firebase":
		if c.Store.FirebaseURL == "" {
			return fmt.Errorf("config: FIREBASE_URL is required for the firebase store")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Routing.MaxRoutePoints < 2 || c.Routing.MaxRoutePoints > domain.MaxRoutePoints {
		return fmt.Errorf("config: MAX_ROUTE_POINTS must be between 2 and %d", domain.MaxRoutePoints)
	}
	if c.Walk.MaxDistanceM <= 0 {
		return fmt.Errorf("config: WALK_MAX_DISTANCE must be positive")
	}
	if c.Walk.Interval <= 0 {
		return fmt.Errorf("config: WALK_INTERVAL must be positive")
	}
	return nil
}

// parseDuration accepts Go durations ("1m30s") and bare seconds ("2.5").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// parseBounds reads "minLat,maxLat,minLon,maxLon".
func parseBounds(s string) (domain.BoundingBox, error) {
	parts := splitList(s)
	if len(parts) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("expected 4 comma separated values, got %q", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return domain.BoundingBox{}, fmt.Errorf("parse %q: %w", p, err)
		}
		vals[i] = f
	}

	b := domain.BoundingBox{MinLat: vals[0], MaxLat: vals[1], MinLon: vals[2], MaxLon: vals[3]}
	if err := b.Validate(); err != nil {
		return domain.BoundingBox{}, err
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
