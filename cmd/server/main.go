package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/api"
	"github.com/spad0604/robot-delivery/internal/app"
	"github.com/spad0604/robot-delivery/internal/platform/graceful"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
)

// main is the application composition root.
// It wires the configured adapters behind ports and starts the HTTP server.
func main() {
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	fs.String("port", "", "listen port (env PORT)")
	_ = fs.Parse(os.Args[1:])

	v := viper.New()
	if err := v.BindPFlag("PORT", fs.Lookup("port")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a, err := app.New(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := graceful.Context(context.Background(), a.Log)
	defer cancel()

	if err := serve(ctx, a); err != nil {
		a.Log.Error("server error", zap.Error(err))
		_ = a.Close()
		os.Exit(1)
	}
}

func serve(ctx context.Context, a *app.App) error {
	s, err := a.Store()
	if err != nil {
		return err
	}
	creator, err := a.OrderCreator(ctx)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Store:          s,
		Creator:        creator,
		OrderLog:       creator.OrderLog,
		Log:            a.Log,
		Metrics:        a.Metrics,
		MetricsHandler: metrics.Handler(a.Registry),
	})

	// Order creation waits on the routing service, so writes get the
	// routing timeout plus headroom.
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      a.Config.Routing.Timeout + a.Config.Store.Timeout*2 + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.Log.Info("server stopped gracefully")
	return nil
}
