package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"redhope/internal/platform/config"
	"redhope/internal/platform/httpserver"
	"redhope/internal/platform/logger"
)

// main wires dependencies, serves HTTP and relays the audit outbox until a
// signal arrives, then drains in reverse order.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	if cfg.IsProduction() && cfg.UsesDevSigningKey() {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := connectInfra(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect backing services: %w", err)
	}
	defer in.close()

	auditor, relay := buildAudit(cfg.Kafka, in, log)
	defer auditor.Close()

	srv := httpserver.New(cfg.Addr, cfg.HTTP, buildRouter(ctx, cfg, in, auditor, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting redhope", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
