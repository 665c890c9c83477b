package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"github.com/bobby-s-dev/weather-advisor/internal/recommend"
	"go.uber.org/zap"
)

type ForecastSource interface {
	FetchAll(ctx context.Context, locations []string) map[string]*models.WeatherSnapshot
	Refresh(ctx context.Context, location string) (*models.WeatherSnapshot, error)
}

// Advisor gathers the weather for every registered activity and ranks them.
type Advisor struct {
	activities *ActivityRegistry
	forecasts  ForecastSource
	timezone   *time.Location
	metrics    *Metrics
	logger     *zap.Logger
}

func NewAdvisor(activities *ActivityRegistry, forecasts ForecastSource, timezone *time.Location, metrics *Metrics, logger *zap.Logger) *Advisor {
	if timezone == nil {
		timezone = time.Local
	}
	return &Advisor{
		activities: activities,
		forecasts:  forecasts,
		timezone:   timezone,
		metrics:    metrics,
		logger:     logger,
	}
}

// Recommendations ranks all registered activities for the day containing now.
func (a *Advisor) Recommendations(ctx context.Context, now time.Time) []models.ActivityRecommendation {
	startTime := time.Now()

	activities := a.activities.List()
	weather := a.forecasts.FetchAll(ctx, models.UniqueLocations(activities))
	today := recommend.TodayAt(now.In(a.timezone))

	recs := recommend.Recommend(activities, weather, today)

	duration := time.Since(startTime)
	if a.metrics != nil {
		a.metrics.observeRecommendations(recs, duration.Seconds())
	}
	a.logger.Info("Recommendations generated",
		zap.Int("activities", len(activities)),
		zap.Int("locations_with_weather", len(weather)),
		zap.String("weekday", today.Weekday),
		zap.Duration("duration", duration))

	return recs
}

// RefreshLocations re-fetches forecasts for every activity location plus the
// extra ones given.
func (a *Advisor) RefreshLocations(ctx context.Context, extra []string) error {
	locations := a.activities.Locations()
	seen := make(map[string]struct{}, len(locations)+len(extra))
	for _, l := range locations {
		seen[l] = struct{}{}
	}
	for _, l := range extra {
		if _, ok := seen[l]; ok || l == "" {
			continue
		}
		seen[l] = struct{}{}
		locations = append(locations, l)
	}

	var errs []error
	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		_, err := a.forecasts.Refresh(ctx, location)
		if a.metrics != nil {
			a.metrics.observeRefresh(err == nil)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("refreshing %s: %w", location, err))
		}
	}

	return errors.Join(errs...)
}

func (a *Advisor) Timezone() *time.Location {
	return a.timezone
}
