package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/writeclean/config"
	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/clients"
	"github.com/spacesedan/writeclean/internal/clients/kafka_client"
	"github.com/spacesedan/writeclean/internal/consumers"
	"github.com/spacesedan/writeclean/internal/db"
	"github.com/spacesedan/writeclean/internal/logging"
	"github.com/spacesedan/writeclean/internal/monitoring"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := kafka_client.GetKafkaConfig()

	switch cfg.Topic {
	case kafka_client.KAFKA_TOPIC_ANALYSIS_REQUEST:
		registerRequestConsumer(ctx, cfg)
		defer kafka_client.CloseKafkaProducer()
		if config.CacheEnabled() {
			defer clients.CloseValkey()
		}
	case kafka_client.KAFKA_TOPIC_ANALYSIS_RESULTS:
		db.InitDynamoDB()
		initProducer(ctx, cfg)
		defer kafka_client.CloseKafkaProducer()

		results := consumers.NewResultsConsumer(nil)
		kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_ANALYSIS_RESULTS,
			func(ctx context.Context, c *kafka.Consumer) { results.Start(ctx, c) })
	}

	if err := kafka_client.StartConsumer(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func registerRequestConsumer(ctx context.Context, cfg kafka_client.KafkaConfig) {
	engine, err := analyzer.NewFromConfig(config.GetAnalyzerConfig())
	if err != nil {
		slog.Error("[Main] Failed to build analyzer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	initProducer(ctx, cfg)

	opts := []consumers.HandlerOption{
		consumers.WithTimeout(config.GetServerConfig().AnalyzeTimeout),
	}
	cacheHealthy := &atomic.Bool{}
	cacheHealthy.Store(true)

	if config.CacheEnabled() {
		vc := clients.InitValkey()
		go monitoring.MonitorValkeyHealth(ctx, vc, cacheHealthy)
		opts = append(opts, consumers.WithDeduper(vc))
	}

	handler := consumers.NewAnalysisRequestHandler(engine, opts...)
	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_ANALYSIS_REQUEST,
		consumers.WrapConsumer(handler.Start).WithHealthCheck(cacheHealthy).Handler())
}

// initProducer retries until the producer is up or ctx is done.
func initProducer(ctx context.Context, cfg kafka_client.KafkaConfig) {
	for {
		err := kafka_client.InitKafkaProducer(cfg)
		if err == nil {
			return
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			os.Exit(1)
		case <-time.After(5 * time.Second):
		}
	}
}
