package restapi

import (
	v1 "github.com/andreyxaxa/wikimedia-consumer/internal/controller/restapi/v1"
	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// @title Wikimedia consumer
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(app *fiber.App, events usecase.EventUseCase, metrics v1.Collector, l logger.Interface) {
	apiV1Group := app.Group("/v1")
	{
		v1.NewEventRoutes(app, apiV1Group, events, metrics, l)
	}
}
