package v1

import (
	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewEventRoutes(app fiber.Router, apiV1Group fiber.Router, events usecase.EventUseCase, metrics Collector, l logger.Interface) {
	r := &V1{events: events, metrics: metrics, logger: l}

	{
		app.Get("/healthz", r.health)

		apiV1Group.Get("/events/:id", r.getEvent)
		apiV1Group.Get("/metrics", r.getMetrics)
	}
}
