package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/pkg/retry"
	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	DeadLetterBackendKafka = "kafka"
	DeadLetterBackendS3    = "s3"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		Store           Store
		PG              PG
		SQLite          SQLite
		Kafka           Kafka
		DeadLetter      DeadLetter
		S3              S3
		Retry           Retry
		KafkaController KafkaController
		Ingest          Ingest
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT" envDefault:"8080"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5s"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Store struct {
		Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"4"`
		URL     string `env:"PG_URL"`
	}

	SQLite struct {
		DSN         string `env:"SQLITE_DSN" envDefault:"file:wikimedia.db"`
		BusyTimeout int    `env:"SQLITE_BUSY_TIMEOUT_MS" envDefault:"5000"`
	}

	Kafka struct {
		Brokers         []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
		GroupID         string        `env:"KAFKA_GROUP_ID" envDefault:"myGroup"`
		Topic           string        `env:"KAFKA_TOPIC" envDefault:"wikimedia-stream"`
		StartFromLatest bool          `env:"KAFKA_START_FROM_LATEST" envDefault:"false"`
		MaxWait         time.Duration `env:"KAFKA_MAX_WAIT" envDefault:"500ms"`
	}

	DeadLetter struct {
		Backend      string        `env:"DEAD_LETTER_BACKEND" envDefault:"kafka"`
		Topic        string        `env:"KAFKA_DLQ_TOPIC" envDefault:"wikimedia-stream-dlq"`
		MaxAttempts  int           `env:"KAFKA_DLQ_MAX_ATTEMPTS" envDefault:"3"`
		WriteTimeout time.Duration `env:"KAFKA_DLQ_WRITE_TIMEOUT" envDefault:"5s"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		AccessKey      string        `env:"S3_ACCESS_KEY"`
		SecretKey      string        `env:"S3_SECRET_KEY"`
		Bucket         string        `env:"S3_BUCKET"`
		Prefix         string        `env:"S3_DLQ_PREFIX" envDefault:"dead-letter"`
		UsePathStyle   bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Retry struct {
		MaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
		BaseDelay   time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
		Multiplier  float64       `env:"RETRY_MULTIPLIER" envDefault:"2.0"`
		MaxDelay    time.Duration `env:"RETRY_MAX_DELAY" envDefault:"0s"`
	}

	KafkaController struct {
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"0"` // 0 - runtime.NumCPU()
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	}

	Ingest struct {
		StoreTimeout      time.Duration `env:"INGEST_STORE_TIMEOUT" envDefault:"5s"`
		DeadLetterTimeout time.Duration `env:"INGEST_DEAD_LETTER_TIMEOUT" envDefault:"10s"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// RetryPolicy is the store retry budget handed to the ingest pipeline.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
		Multiplier:  c.Retry.Multiplier,
		MaxDelay:    c.Retry.MaxDelay,
	}
}

func (c *Config) validate() error {
	var errList []error

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.PG.URL == "" {
			errList = append(errList, errors.New("PG_URL is required for the postgres store"))
		}
	case StoreDriverSQLite:
		if c.SQLite.DSN == "" {
			errList = append(errList, errors.New("SQLITE_DSN is required for the sqlite store"))
		}
	default:
		errList = append(errList, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.DeadLetter.Backend {
	case DeadLetterBackendKafka:
		if c.DeadLetter.Topic == "" {
			errList = append(errList, errors.New("KAFKA_DLQ_TOPIC is required for the kafka dead-letter backend"))
		}
		if c.DeadLetter.Topic == c.Kafka.Topic {
			errList = append(errList, errors.New("KAFKA_DLQ_TOPIC must differ from KAFKA_TOPIC"))
		}
	case DeadLetterBackendS3:
		if c.S3.Bucket == "" {
			errList = append(errList, errors.New("S3_BUCKET is required for the s3 dead-letter backend"))
		}
	default:
		errList = append(errList, fmt.Errorf("unknown DEAD_LETTER_BACKEND %q", c.DeadLetter.Backend))
	}

	if len(c.Kafka.Brokers) == 0 {
		errList = append(errList, errors.New("KAFKA_BROKERS is required"))
	}

	if c.Retry.MaxAttempts < 1 {
		errList = append(errList, errors.New("RETRY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		errList = append(errList, errors.New("RETRY_BASE_DELAY and RETRY_MAX_DELAY must not be negative"))
	}
	if c.Retry.Multiplier < 1 {
		errList = append(errList, errors.New("RETRY_MULTIPLIER must be at least 1"))
	}

	return errors.Join(errList...)
}
