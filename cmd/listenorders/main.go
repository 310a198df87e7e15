// Command listenorders prints the order list every time it changes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/app"
	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/graceful"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("listenorders", pflag.ContinueOnError)
	fs.String("metrics-addr", "", "serve /metrics on this address (env METRICS_ADDR)")
	if err := fs.Parse(args); err != nil {
		return 0
	}

	v := viper.New()
	if err := v.BindPFlag("METRICS_ADDR", fs.Lookup("metrics-addr")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
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

	stream, err := a.OrderStream()
	if err != nil {
		a.Log.Error("setup failed", zap.Error(err))
		return 1
	}

	fmt.Println("Listening for order changes (Ctrl+C to stop)...")
	stream.Listen(ctx, func(orders []*domain.Order, payload map[string]any, eventType string) {
		printOrders(os.Stdout, orders, eventType)
	}, func(err error) {
		a.Log.Warn("order stream error", zap.Error(err))
	})
	return 0
}

func printOrders(w io.Writer, orders []*domain.Order, eventType string) {
	fmt.Fprintf(w, "\n[%s] %d orders\n", eventType, len(orders))
	for i, o := range orders {
		fmt.Fprintf(w, "%3d. %-22s %-11s %-24s %-30s %5.1f kg  %s\n",
			i+1, o.ID, o.Status, o.ReceiverName, o.Goods, o.Weight, o.CreatedAt)
	}
}
