package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
	"github.com/spad0604/robot-delivery/internal/ports"
)

// RobotSimulator periodically moves the robot by a bounded random step and
// writes the new position to the store.
//
// The local position always advances to the generated point, even when the
// write fails, so the walk can drift from what the store last recorded.
type RobotSimulator struct {
	Store    ports.OrderStore
	Walker   *RandomWalker
	Interval time.Duration
	Log      *zap.Logger
	Metrics  *metrics.Metrics

	// Initial, when set, overrides the stored position as the start point.
	Initial *domain.Coordinates
	// Default is used when neither Initial nor a stored position exist.
	Default domain.Coordinates
}

// SimulationResult summarizes a finished run.
type SimulationResult struct {
	Ticks    int
	Updates  int
	Failures int
	Last     domain.Coordinates
}

// Run walks until ctx is cancelled. Cancellation is the only way out and
// is not reported as an error.
func (s *RobotSimulator) Run(ctx context.Context) SimulationResult {
	s.Log.Info("starting periodic robot updates",
		zap.Duration("interval", s.Interval),
		zap.Float64("max_distance_m", s.Walker.MaxStepMeters()))

	current := s.start(ctx)
	res := SimulationResult{Last: current}

	// Set after a failed write until one succeeds again.
	diverged := false

	for {
		step := s.Walker.Next(current)
		err := s.Store.SetRobotPosition(ctx, domain.NewRobotPosition(step.Position))
		res.Ticks++

		switch {
		case ctx.Err() != nil:
			// The write raced with shutdown; do not count it.
		case err != nil:
			res.Failures++
			s.Metrics.PositionUpdate("failure")
			s.Log.Error("robot position update failed",
				zap.Int("tick", res.Ticks), zap.Error(err))
			if !diverged {
				s.Log.Warn("local robot position now differs from the stored one")
				diverged = true
			}
		default:
			res.Updates++
			diverged = false
			s.Metrics.PositionUpdate("success")
			s.Log.Info("robot position updated",
				zap.Int("update", res.Updates),
				zap.Float64("lat", step.Position.Lat),
				zap.Float64("lon", step.Position.Lon),
				zap.Float64("distance_m", step.DistanceMeters),
				zap.Bool("fallback", step.Fallback))
		}

		current = step.Position
		res.Last = current

		timer := time.NewTimer(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Log.Info("stopped periodic robot updates",
				zap.Int("updates", res.Updates),
				zap.Float64("last_lat", res.Last.Lat),
				zap.Float64("last_lon", res.Last.Lon))
			return res
		case <-timer.C:
		}
	}
}

func (s *RobotSimulator) start(ctx context.Context) domain.Coordinates {
	if s.Initial != nil {
		s.Log.Info("using configured start position", zap.Stringer("position", *s.Initial))
		s.writeStart(ctx, *s.Initial)
		return *s.Initial
	}

	pos, err := s.Store.GetRobotPosition(ctx)
	if err == nil && pos != nil {
		c := pos.Coordinates()
		s.Log.Info("using stored start position", zap.Stringer("position", c))
		return c
	}
	if err != nil {
		s.Log.Warn("could not read robot position", zap.Error(err))
	}

	s.Log.Info("using default start position", zap.Stringer("position", s.Default))
	s.writeStart(ctx, s.Default)
	return s.Default
}

func (s *RobotSimulator) writeStart(ctx context.Context, c domain.Coordinates) {
	if err := s.Store.SetRobotPosition(ctx, domain.NewRobotPosition(c)); err != nil {
		s.Log.Warn("could not write start position", zap.Error(err))
	}
}
