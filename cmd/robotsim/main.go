// Command robotsim moves the robot by a bounded random step on a fixed
// interval until interrupted.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/app"
	"github.com/spad0604/robot-delivery/internal/platform/graceful"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("robotsim", pflag.ContinueOnError)
	fs.String("interval", "", "time between updates, e.g. 10s (env WALK_INTERVAL)")
	fs.Float64("max-distance", 0, "maximum step in meters (env WALK_MAX_DISTANCE)")
	fs.Float64("lat", 0, "start latitude; overrides the stored position (env WALK_INITIAL_LAT)")
	fs.Float64("lon", 0, "start longitude; overrides the stored position (env WALK_INITIAL_LON)")
	fs.String("metrics-addr", "", "serve /metrics on this address (env METRICS_ADDR)")
	if err := fs.Parse(args); err != nil {
		return 0
	}

	v := viper.New()
	bindings := map[string]string{
		"WALK_INTERVAL":     "interval",
		"WALK_MAX_DISTANCE": "max-distance",
		"WALK_INITIAL_LAT":  "lat",
		"WALK_INITIAL_LON":  "lon",
		"METRICS_ADDR":      "metrics-addr",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	a, err := app.New(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	ctx, cancel := graceful.Context(context.Background(), a.Log)
	defer cancel()
	a.ServeMetrics(ctx)

	sim, err := a.RobotSimulator()
	if err != nil {
		a.Log.Error("setup failed", zap.Error(err))
		return 1
	}

	res := sim.Run(ctx)
	fmt.Printf("Stopped after %d updates (%d failed). Last position %s\n", res.Updates, res.Failures, res.Last)
	return 0
}
