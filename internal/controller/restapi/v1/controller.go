package v1

import (
	"context"

	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Collector is satisfied by *sdkmetric.ManualReader.
type Collector interface {
	Collect(ctx context.Context, rm *metricdata.ResourceMetrics) error
}

type V1 struct {
	events  usecase.EventUseCase
	metrics Collector
	logger  logger.Interface
}
