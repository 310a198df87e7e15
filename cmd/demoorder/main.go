// Command demoorder creates one order to a seeded landmark, chosen by
// index or interactively.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/app"
	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/graceful"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

func run(args []string, stdin io.Reader) int {
	fs := pflag.NewFlagSet("demoorder", pflag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, "Usage:\n  demoorder [index]\n") }
	if err := fs.Parse(args); err != nil {
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

	destinations, err := a.Destinations(ctx)
	if err != nil || len(destinations) == 0 {
		a.Log.Error("no destinations available", zap.Error(err))
		return 1
	}

	printDestinations(os.Stdout, destinations)

	choice := fs.Arg(0)
	if choice == "" {
		fmt.Printf("\nPick a destination (1-%d): ", len(destinations))
		line, _ := bufio.NewReader(stdin).ReadString('\n')
		choice = strings.TrimSpace(line)
	}

	idx, ok := parseChoice(choice, len(destinations))
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid choice %q\n", choice)
		return 0
	}
	dest := destinations[idx]

	creator, err := a.OrderCreator(ctx)
	if err != nil {
		a.Log.Error("setup failed", zap.Error(err))
		return 1
	}

	fmt.Printf("Creating order to %s %s\n", dest.Name, dest.Coordinates())
	id, err := creator.Create(ctx, dest.Coordinates())
	if err != nil {
		a.Log.Error("order was not created", zap.Error(err))
		return 0
	}

	fmt.Printf("Order created: %s\n", id)
	return 0
}

func printDestinations(w io.Writer, destinations []domain.Destination) {
	fmt.Fprintln(w, "Destinations:")
	for i, d := range destinations {
		fmt.Fprintf(w, "  %2d. %s %s\n", i+1, d.Name, d.Coordinates())
	}
}

// parseChoice maps a 1-based choice to a slice index.
func parseChoice(s string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}
