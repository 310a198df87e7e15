package services

import (
	"math"
	"math/rand/v2"

	"github.com/spad0604/robot-delivery/internal/domain"
)

const (
	DefaultMaxStepMeters = 200.0
	defaultWalkAttempts  = 50
	metersPerDegreeLat   = 111000.0
)

// WalkStep is one move of the random walk.
type WalkStep struct {
	Position       domain.Coordinates
	DistanceMeters float64
	// Fallback is set when no sampled candidate met the distance bound
	// and the position came from the half-range sample, which is not
	// re-checked against the bound.
	Fallback bool
}

// RandomWalker produces positions that wander inside a bounding box,
// each within a maximum great-circle distance of the previous one.
// It is not safe for concurrent use.
type RandomWalker struct {
	maxStep  float64
	bounds   domain.BoundingBox
	attempts int
	rng      *rand.Rand
}

// NewRandomWalker returns a walker; a nil rng uses a randomly seeded source.
func NewRandomWalker(maxStepMeters float64, bounds domain.BoundingBox, rng *rand.Rand) *RandomWalker {
	if maxStepMeters <= 0 {
		maxStepMeters = DefaultMaxStepMeters
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomWalker{
		maxStep:  maxStepMeters,
		bounds:   bounds,
		attempts: defaultWalkAttempts,
		rng:      rng,
	}
}

func (w *RandomWalker) MaxStepMeters() float64 { return w.maxStep }

// Next picks the position following current.
//
// Step limits are converted to degrees with a local flat-earth
// approximation (111 km per degree of latitude, scaled by cos(lat) for
// longitude). Candidates are clamped into the bounding box and accepted
// when their haversine distance is within the limit.
func (w *RandomWalker) Next(current domain.Coordinates) WalkStep {
	maxLatDelta := w.maxStep / metersPerDegreeLat
	maxLonDelta := w.maxStep / (metersPerDegreeLat * math.Cos(current.Lat*math.Pi/180))

	for i := 0; i < w.attempts; i++ {
		candidate := w.bounds.Clamp(domain.Coordinates{
			Lat: current.Lat + w.uniform(maxLatDelta),
			Lon: current.Lon + w.uniform(maxLonDelta),
		})

		if d := domain.HaversineMeters(current, candidate); d <= w.maxStep {
			return WalkStep{Position: candidate, DistanceMeters: d}
		}
	}

	candidate := w.bounds.Clamp(domain.Coordinates{
		Lat: current.Lat + w.uniform(maxLatDelta*0.5),
		Lon: current.Lon + w.uniform(maxLonDelta*0.5),
	})
	return WalkStep{
		Position:       candidate,
		DistanceMeters: domain.HaversineMeters(current, candidate),
		Fallback:       true,
	}
}

// uniform samples from [-limit, limit).
func (w *RandomWalker) uniform(limit float64) float64 {
	return (w.rng.Float64()*2 - 1) * limit
}
