// Command batchorders creates several orders to random Hanoi landmarks.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/app"
	"github.com/spad0604/robot-delivery/internal/platform/graceful"
)

const (
	usage = `Usage:
  batchorders <count> [delay-seconds]

Examples:
  batchorders 5        # 5 orders, default delay
  batchorders 10 1.5   # 10 orders, 1.5 s apart
`
	confirmAbove = 100
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

func run(args []string, stdin io.Reader) int {
	fs := pflag.NewFlagSet("batchorders", pflag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 0
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 0
	}

	count, err := strconv.Atoi(fs.Arg(0))
	if err != nil || count <= 0 {
		fmt.Fprintln(os.Stderr, "count must be a positive integer")
		return 0
	}

	v := viper.New()
	if fs.NArg() >= 2 {
		secs, err := strconv.ParseFloat(fs.Arg(1), 64)
		if err != nil || secs < 0 {
			fmt.Fprintln(os.Stderr, "delay must be a non-negative number of seconds")
			return 0
		}
		v.Set("BATCH_DELAY", fs.Arg(1))
	}

	if count > confirmAbove && !confirm(stdin, fmt.Sprintf("Create %d orders? (y/n): ", count)) {
		fmt.Println("Cancelled.")
		return 0
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

	creator, err := a.OrderCreator(ctx)
	if err != nil {
		a.Log.Error("setup failed", zap.Error(err))
		return 1
	}
	destinations, err := a.Destinations(ctx)
	if err != nil {
		a.Log.Error("no destinations available", zap.Error(err))
		return 1
	}

	start := time.Now()
	summary, err := creator.CreateBatch(ctx, count, a.Config.Walk.BatchDelay, destinations, nil)
	if err != nil {
		a.Log.Warn("batch stopped early", zap.Error(err))
	}

	fmt.Printf("Requested: %d  Succeeded: %d  Failed: %d  Took: %s\n",
		summary.Requested, summary.Succeeded, summary.Failed, time.Since(start).Round(time.Millisecond))
	for _, id := range summary.OrderIDs {
		fmt.Println("  " + id)
	}
	return 0
}

func confirm(r io.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
