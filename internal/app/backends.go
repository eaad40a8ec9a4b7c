package app

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/wikimedia-consumer/config"
	"github.com/andreyxaxa/wikimedia-consumer/internal/infrastructure"
	infrakafka "github.com/andreyxaxa/wikimedia-consumer/internal/infrastructure/kafka"
	infras3 "github.com/andreyxaxa/wikimedia-consumer/internal/infrastructure/s3"
	"github.com/andreyxaxa/wikimedia-consumer/internal/repo"
	"github.com/andreyxaxa/wikimedia-consumer/internal/repo/persistent"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/kafka/producer"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/postgres"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/s3client"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/sqlite"
)

// newEventRepo opens the configured store. The returned func releases it.
func newEventRepo(ctx context.Context, cfg *config.Config) (repo.EventRepo, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLite.DSN, sqlite.BusyTimeout(cfg.SQLite.BusyTimeout))
		if err != nil {
			return nil, nil, fmt.Errorf("app - newEventRepo - sqlite.New: %w", err)
		}

		r := persistent.NewEventSQLiteRepo(db)
		if err = r.Migrate(ctx); err != nil {
			_ = db.Close()

			return nil, nil, fmt.Errorf("app - newEventRepo - r.Migrate: %w", err)
		}

		return r, func() { _ = db.Close() }, nil
	default:
		pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			return nil, nil, fmt.Errorf("app - newEventRepo - postgres.New: %w", err)
		}

		return persistent.NewEventPostgresRepo(pg), pg.Close, nil
	}
}

func newDeadLetterSender(ctx context.Context, cfg *config.Config) (infrastructure.DeadLetterSender, error) {
	switch cfg.DeadLetter.Backend {
	case config.DeadLetterBackendS3:
		s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
		defer s3Cancel()

		s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey,
			s3client.Region(cfg.S3.Region),
			s3client.UsePathStyle(cfg.S3.UsePathStyle),
			s3client.CheckBucket(cfg.S3.Bucket),
		)
		if err != nil {
			return nil, fmt.Errorf("app - newDeadLetterSender - s3client.New: %w", err)
		}

		return infras3.NewDeadLetterArchive(s3c, cfg.S3.Bucket, cfg.S3.Prefix), nil
	default:
		p, err := producer.New(ctx, cfg.Kafka.Brokers,
			producer.MaxAttempts(cfg.DeadLetter.MaxAttempts),
			producer.WriteTimeout(cfg.DeadLetter.WriteTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("app - newDeadLetterSender - producer.New: %w", err)
		}

		return infrakafka.NewDeadLetterProducer(p, cfg.DeadLetter.Topic), nil
	}
}
