package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/writeclean/config"
	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/clients"
	"github.com/spacesedan/writeclean/internal/logging"
	"github.com/spacesedan/writeclean/internal/monitoring"
	"github.com/spacesedan/writeclean/internal/server"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := analyzer.NewFromConfig(config.GetAnalyzerConfig())
	if err != nil {
		slog.Error("[Main] Failed to build analyzer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var opts []server.Option
	if config.CacheEnabled() {
		vc := clients.InitValkey()
		defer clients.CloseValkey()

		healthy := &atomic.Bool{}
		healthy.Store(true)
		go monitoring.MonitorValkeyHealth(ctx, vc, healthy)

		opts = append(opts, server.WithCache(vc, healthy))
	}

	if err := server.New(engine, config.GetServerConfig(), opts...).ListenAndServe(ctx); err != nil {
		slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
