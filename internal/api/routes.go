package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	// Custom logger middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	// API v1 routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", handler.GetHealth)

	// Metrics
	api.Get("/metrics", handler.GetMetrics)
	api.Get("/metrics/prometheus", adaptor.HTTPHandler(promhttp.HandlerFor(handler.gatherer, promhttp.HandlerOpts{})))

	// Activity routes
	activities := api.Group("/activities")
	activities.Get("/", handler.ListActivities)
	activities.Post("/", handler.CreateActivity)
	activities.Get("/:id", handler.GetActivity)
	activities.Put("/:id", handler.UpdateActivity)
	activities.Delete("/:id", handler.DeleteActivity)

	api.Get("/recommendations", handler.GetRecommendations)

	// Weather routes
	weather := api.Group("/weather")
	weather.Get("/forecast", handler.GetForecast)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})

	log.Info("Routes registered")
}

// ErrorHandler logs unhandled handler errors and renders them as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
