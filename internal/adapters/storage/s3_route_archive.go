package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/obs"
)

// ObjectStore is the subset of *minio.Client used by the archive.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Options configures the connection to an S3-compatible endpoint.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// S3RouteArchive stores each order's route as a GeoJSON Feature in an
// S3-compatible bucket, under routes/<yyyy-mm-dd>/<order id>.geojson.
type S3RouteArchive struct {
	client ObjectStore
	bucket string
	log    *zap.Logger

	once      sync.Once
	bucketErr error
}

func NewS3RouteArchive(opts S3Options, log *zap.Logger) (*S3RouteArchive, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("route archive: endpoint, access key and secret key are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("route archive: create minio client: %w", err)
	}
	return NewS3RouteArchiveWithClient(client, opts.Bucket, log), nil
}

func NewS3RouteArchiveWithClient(client ObjectStore, bucket string, log *zap.Logger) *S3RouteArchive {
	return &S3RouteArchive{client: client, bucket: bucket, log: log}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *S3RouteArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("route archive: check bucket %q: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("route archive: make bucket %q: %w", a.bucket, err)
	}
	a.log.Info("created route archive bucket", zap.String("bucket", a.bucket))
	return nil
}

func (a *S3RouteArchive) ArchiveRoute(ctx context.Context, order *domain.Order) (_ string, err error) {
	defer obs.Time(ctx, a.log, "storage.ArchiveRoute")(&err)

	if order == nil || order.ID == "" {
		return "", errors.New("archive route: order has no id")
	}

	a.once.Do(func() { a.bucketErr = a.EnsureBucket(ctx) })
	if a.bucketErr != nil {
		return "", a.bucketErr
	}

	data, err := json.Marshal(RouteFeature(order))
	if err != nil {
		return "", fmt.Errorf("archive route: marshal geojson: %w", err)
	}

	key := ObjectKey(order)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/geo+json"})
	if err != nil {
		return "", fmt.Errorf("archive route: put object %q: %w", key, err)
	}
	return key, nil
}

// ObjectKey groups archived routes by the order's creation day.
func ObjectKey(order *domain.Order) string {
	day := "undated"
	if t, err := order.CreatedTime(); err == nil {
		day = t.Format("2006-01-02")
	}
	return fmt.Sprintf("routes/%s/%s.geojson", day, sanitizeKey(order.ID))
}

func sanitizeKey(s string) string {
	return strings.NewReplacer("/", "-", " ", "-", "\\", "-").Replace(s)
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   LineString     `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type LineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// RouteFeature renders the order's route points as a GeoJSON LineString
// in [lon, lat] order.
func RouteFeature(order *domain.Order) Feature {
	coords := make([][]float64, 0, len(order.RoutePoints))
	for _, c := range domain.RouteCoordinates(order.RoutePoints) {
		coords = append(coords, c.CoordsToList())
	}

	return Feature{
		Type: "Feature",
		Geometry: LineString{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: map[string]any{
			"orderId":        order.ID,
			"createdAt":      order.CreatedAt,
			"status":         string(order.Status),
			"destinationLat": order.DestinationLat,
			"destinationLng": order.DestinationLng,
			"points":         len(coords),
		},
	}
}
