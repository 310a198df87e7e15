// Command createorder creates one delivery order to the place a map link
// points at, routed from the robot's current position.
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

const usage = `Usage:
  createorder "<map link>"

Example:
  createorder "https://www.google.com/maps/place/21%C2%B002'03.5%22N+105%C2%B047'44.9%22E/@21.034317,105.7932251,17z/"
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("createorder", pflag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 0
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 0
	}

	a, err := app.New(viper.New())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	ctx, cancel := graceful.Context(context.Background(), a.Log)
	defer cancel()

	creator, err := a.OrderCreator(ctx)
	if err != nil {
		a.Log.Error("setup failed", zap.Error(err))
		return 1
	}

	id, err := creator.CreateFromURL(ctx, fs.Arg(0))
	if err != nil {
		a.Log.Error("order was not created", zap.Error(err))
		return 0
	}

	fmt.Printf("Order created: %s\n", id)
	return 0
}
