package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/wikimedia-consumer/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// @Summary 	Get stored event
// @Description Returns the last persisted version of a change event
// @Tags 		events
// @Produce 	json
// @Param 		id path string true "Event ID"
// @Success 	200 {object} response.Event
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Event not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/events/{id} [get]
func (r *V1) getEvent(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	event, err := r.events.GetByID(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "event not found")
		}
		r.logger.Error(err, "restapi - v1 - getEvent")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewEvent(event))
}

// @Summary 	Liveness and store health
// @Tags 		health
// @Produce 	json
// @Success 	200 {object} response.Health
// @Failure 	503 {object} response.Health
// @Router 		/healthz [get]
func (r *V1) health(ctx *fiber.Ctx) error {
	err := r.events.Ping(ctx.UserContext())
	if err != nil {
		r.logger.Warn("restapi - v1 - health - store unavailable: %v", err)

		return ctx.Status(http.StatusServiceUnavailable).JSON(response.Health{Status: "degraded", Store: "unavailable"})
	}

	return ctx.Status(http.StatusOK).JSON(response.Health{Status: "ok", Store: "ok"})
}

// @Summary 	Pipeline metrics
// @Description Disposition counters, retry counters and latency histograms
// @Tags 		metrics
// @Produce 	json
// @Success 	200 {array} response.Metric
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/metrics [get]
func (r *V1) getMetrics(ctx *fiber.Ctx) error {
	var rm metricdata.ResourceMetrics

	err := r.metrics.Collect(ctx.UserContext(), &rm)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - getMetrics")

		return errorResponse(ctx, http.StatusInternalServerError, "metrics unavailable")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewMetrics(&rm))
}
