// The shopping-cart-service consumes customer lifecycle and
// orchestration events from Kafka, maintains carts in Postgres, and
// emits notification and inventory saga commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/cart"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/config"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/messaging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/messaging/handlers"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/storage"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/telemetry"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/transport"
	_ "github.com/omnixys/omnixys-shopping-cart-service/internal/transport/channel"
	_ "github.com/omnixys/omnixys-shopping-cart-service/internal/transport/kafka"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shopping-cart-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	baseHandler := slog.NewJSONHandler(os.Stdout, nil)
	logger := logging.NewSlogServiceLogger(slog.New(baseHandler))
	logger.Info("starting", logging.Fields{"version": version, "config": cfg.String()})

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", err, nil)
		}
	}()

	tr, err := transport.Build(ctx, cfg, logging.NewWatermillAdapter(logger))
	if err != nil {
		return fmt.Errorf("build transport: %w", err)
	}

	producer, err := messaging.NewProducer(tr.Publisher, cfg.ServiceName, logger)
	if err != nil {
		return err
	}

	// Mirror log records onto the central log-stream topic.
	if cfg.LogStreamEnabled {
		stream := logging.NewStreamHandler(producer, slog.LevelInfo)
		logger = logging.NewSlogServiceLogger(slog.New(logging.NewTeeHandler(baseHandler, stream)))
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DBConnectTimeout)
	pool, err := storage.NewPool(connectCtx, cfg.PostgresURL, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	store := storage.NewCartStore(pool)
	reader := cart.NewReadService(store, logger)
	writer := cart.NewWriteService(store, reader, producer, logger)

	var metrics *messaging.ConsumerMetrics
	if cfg.MetricsEnabled {
		metrics = messaging.NewConsumerMetrics(prometheus.DefaultRegisterer)
		go serveMetrics(cfg.MetricsPort, logger)
	}

	registry := messaging.NewRegistry()
	dispatcher := messaging.NewDispatcher(registry, logger)
	consumer, err := messaging.NewConsumer(tr.Subscriber, dispatcher, logger, metrics)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	registry.RegisterHandler(handlers.NewPersonHandler(writer, logger))
	registry.RegisterHandler(handlers.NewOrchestratorHandler(&lifecycle{stop: stop, logger: logger}, logger))

	consumer.Consume(messaging.TopicsBy("person", "orchestrator"))

	logger.Info("consuming", logging.Fields{"service": cfg.ServiceName})
	return consumer.Run(ctx)
}

func serveMetrics(port int, logger logging.ServiceLogger) {
	addr := fmt.Sprintf(":%d", port)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics server listening", logging.Fields{"address": addr})
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", err, logging.Fields{"address": addr})
	}
}

// lifecycle maps orchestrator commands onto the process. Start and
// Restart acknowledge only; the fleet supervisor restarts the process
// after a shutdown.
type lifecycle struct {
	stop   context.CancelFunc
	logger logging.ServiceLogger
}

func (l *lifecycle) Start(context.Context) error {
	l.logger.Info("orchestrator start acknowledged, already running", nil)
	return nil
}

func (l *lifecycle) Restart(context.Context) error {
	l.logger.Info("restart requested, shutting down for supervisor restart", nil)
	l.stop()
	return nil
}

func (l *lifecycle) Shutdown(context.Context) error {
	l.logger.Info("shutdown requested", nil)
	l.stop()
	return nil
}
