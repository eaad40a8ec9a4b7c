package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/wikimedia-consumer/config"
	"github.com/andreyxaxa/wikimedia-consumer/internal/codec"
	kafkactrl "github.com/andreyxaxa/wikimedia-consumer/internal/controller/kafka"
	"github.com/andreyxaxa/wikimedia-consumer/internal/controller/restapi"
	infrakafka "github.com/andreyxaxa/wikimedia-consumer/internal/infrastructure/kafka"
	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase/event"
	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase/ingest"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/httpserver"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/kafka/consumer"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/metrics"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const _meterName = "github.com/andreyxaxa/wikimedia-consumer"

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	metricsReader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricsReader))
	otel.SetMeterProvider(meterProvider)
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			l.Error(fmt.Errorf("app - Run - meterProvider.Shutdown: %w", err))
		}
	}()

	recorder, err := metrics.New(otel.Meter(_meterName))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - metrics.New: %w", err))
	}

	// Repository
	eventRepo, closeRepo, err := newEventRepo(ctx, cfg)
	if err != nil {
		l.Fatal(err)
	}
	defer closeRepo()

	// Dead-letter channel
	deadLetters, err := newDeadLetterSender(ctx, cfg)
	if err != nil {
		l.Fatal(err)
	}
	defer func() {
		if err := deadLetters.Close(); err != nil {
			l.Error(fmt.Errorf("app - Run - deadLetters.Close: %w", err))
		}
	}()

	// Use-Case
	eventUseCase := event.New(eventRepo)

	ingestUseCase := ingest.New(
		codec.New(),
		eventRepo,
		deadLetters,
		cfg.RetryPolicy(),
		recorder,
		l,
		ingest.StoreTimeout(cfg.Ingest.StoreTimeout),
		ingest.DeadLetterTimeout(cfg.Ingest.DeadLetterTimeout),
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic,
		consumer.MaxWait(cfg.Kafka.MaxWait),
		consumer.StartFromLatest(cfg.Kafka.StartFromLatest),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	workers := cfg.KafkaController.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		ingestUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		workers,
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
	)
	restapi.NewRouter(httpServer.App, eventUseCase, metricsReader, l)

	// Start Components
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	l.Info("app - Run - consuming: topic=%s group=%s workers=%d store=%s dead_letter=%s",
		cfg.Kafka.Topic, cfg.Kafka.GroupID, workers, cfg.Store.Driver, cfg.DeadLetter.Backend)

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown: stop consuming first, then the API, then the sinks via defers
	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}

	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}
}
