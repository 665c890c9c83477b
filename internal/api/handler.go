package api

import (
	"context"
	"errors"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"github.com/bobby-s-dev/weather-advisor/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type ForecastProvider interface {
	GetSnapshot(ctx context.Context, location string) (*models.WeatherSnapshot, error)
	GetStats() map[string]interface{}
}

type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type Dependencies struct {
	Activities *services.ActivityRegistry
	Advisor    *services.Advisor
	Forecasts  ForecastProvider
	Scheduler  StatusReporter
	Gatherer   prometheus.Gatherer
}

type Handler struct {
	activities *services.ActivityRegistry
	advisor    *services.Advisor
	forecasts  ForecastProvider
	scheduler  StatusReporter
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
	now        func() time.Time
	startTime  time.Time
}

func NewHandler(deps Dependencies, logger *zap.Logger) *Handler {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		activities: deps.Activities,
		advisor:    deps.Advisor,
		forecasts:  deps.Forecasts,
		scheduler:  deps.Scheduler,
		gatherer:   gatherer,
		logger:     logger,
		now:        time.Now,
		startTime:  time.Now(),
	}
}

// GetRecommendations handles GET /api/v1/recommendations
func (h *Handler) GetRecommendations(c *fiber.Ctx) error {
	now := h.now().In(h.advisor.Timezone())

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.ParseInLocation("2006-01-02", dateStr, h.advisor.Timezone())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Date parameter must be formatted as YYYY-MM-DD",
			})
		}
		now = date.Add(12 * time.Hour)
	}

	h.logger.Info("Generating recommendations", zap.Time("reference", now))

	recs := h.advisor.Recommendations(c.UserContext(), now)

	return c.JSON(fiber.Map{
		"date":            now.Format("2006-01-02"),
		"weekday":         now.Weekday().String(),
		"recommendations": recs,
	})
}

// ListActivities handles GET /api/v1/activities
func (h *Handler) ListActivities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"activities": h.activities.List(),
	})
}

// GetActivity handles GET /api/v1/activities/:id
func (h *Handler) GetActivity(c *fiber.Ctx) error {
	activity, err := h.activities.Get(c.Params("id"))
	if err != nil {
		return h.activityError(c, err)
	}
	return c.JSON(activity)
}

// CreateActivity handles POST /api/v1/activities
func (h *Handler) CreateActivity(c *fiber.Ctx) error {
	var activity models.Activity
	if err := c.BodyParser(&activity); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	created, err := h.activities.Create(activity)
	if err != nil {
		return h.activityError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateActivity handles PUT /api/v1/activities/:id
func (h *Handler) UpdateActivity(c *fiber.Ctx) error {
	var activity models.Activity
	if err := c.BodyParser(&activity); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	updated, err := h.activities.Update(c.Params("id"), activity)
	if err != nil {
		return h.activityError(c, err)
	}
	return c.JSON(updated)
}

// DeleteActivity handles DELETE /api/v1/activities/:id
func (h *Handler) DeleteActivity(c *fiber.Ctx) error {
	if err := h.activities.Delete(c.Params("id")); err != nil {
		return h.activityError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) activityError(c *fiber.Ctx, err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid activity",
			"details": validationErr.Problems,
		})
	case errors.Is(err, services.ErrActivityNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Activity not found",
			"id":    c.Params("id"),
		})
	case errors.Is(err, services.ErrActivityExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return err
	}
}

// GetForecast handles GET /api/v1/weather/forecast
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Location parameter is required",
		})
	}

	h.logger.Info("Fetching forecast", zap.String("location", location))

	snapshot, err := h.forecasts.GetSnapshot(c.UserContext(), location)
	if err != nil {
		h.logger.Error("Failed to get forecast",
			zap.String("location", location),
			zap.Error(err))

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to fetch forecast data",
			"details": err.Error(),
		})
	}

	return c.JSON(snapshot)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	health := fiber.Map{
		"status":     "healthy",
		"timestamp":  h.now(),
		"uptime":     time.Since(h.startTime).String(),
		"activities": len(h.activities.List()),
		"stats":      h.forecasts.GetStats(),
	}
	if h.scheduler != nil {
		health["scheduler"] = h.scheduler.GetStatus()
	}
	return c.JSON(health)
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"metrics":   h.forecasts.GetStats(),
		"timestamp": h.now(),
	})
}
