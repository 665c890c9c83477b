package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"github.com/bobby-s-dev/weather-advisor/internal/services"
)

type stubWeather struct {
	snapshots map[string]*models.WeatherSnapshot
}

func (s *stubWeather) GetSnapshot(_ context.Context, location string) (*models.WeatherSnapshot, error) {
	if snap, ok := s.snapshots[location]; ok {
		return snap, nil
	}
	return nil, errors.New("no such place")
}

func (s *stubWeather) FetchAll(ctx context.Context, locations []string) map[string]*models.WeatherSnapshot {
	out := make(map[string]*models.WeatherSnapshot)
	for _, l := range locations {
		if snap, err := s.GetSnapshot(ctx, l); err == nil {
			out[l] = snap
		}
	}
	return out
}

func (s *stubWeather) Refresh(ctx context.Context, location string) (*models.WeatherSnapshot, error) {
	return s.GetSnapshot(ctx, location)
}

func (s *stubWeather) GetStats() map[string]interface{} {
	return map[string]interface{}{"success_count": 0}
}

// Monday 2026-10-19, 08:00 UTC.
var fixedNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*fiber.App, *services.ActivityRegistry) {
	t.Helper()

	weather := &stubWeather{snapshots: map[string]*models.WeatherSnapshot{
		"Central Park": {
			Location: "Central Park",
			Days: []models.ForecastDay{{
				Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
				Hourly: []models.HourlySample{
					{Time: models.MustParseTimeOfDay("09:00"), Temperature: 18, WindSpeed: 10, RainChance: 5},
					{Time: models.MustParseTimeOfDay("10:00"), Temperature: 19, WindSpeed: 11, RainChance: 8},
					{Time: models.MustParseTimeOfDay("17:00"), Temperature: 20, WindSpeed: 30, RainChance: 5},
				},
			}},
		},
	}}

	registry := services.NewActivityRegistry(zap.NewNop())
	reg := prometheus.NewRegistry()
	advisor := services.NewAdvisor(registry, weather, time.UTC, services.NewMetrics(reg), zap.NewNop())

	handler := NewHandler(Dependencies{
		Activities: registry,
		Advisor:    advisor,
		Forecasts:  weather,
		Gatherer:   reg,
	}, zap.NewNop())
	handler.now = func() time.Time { return fixedNow }

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, handler, zap.NewNop())
	return app, registry
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const jogJSON = `{
  "name": "Morning Jog",
  "location": "Central Park",
  "min_temp": 10, "max_temp": 25, "max_wind": 15, "max_rain": 20,
  "time_windows": [{"start": "09:00", "end": "11:00"}],
  "active_days": ["Monday", "Wednesday"]
}`

func TestCreateAndGetActivity(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/activities", jogJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.Activity
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "09:00-11:00", created.TimeWindows[0].String())

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/activities/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Activity
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/activities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), created.ID)
}

func TestCreateActivity_Invalid(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed time", strings.Replace(jogJSON, `"09:00"`, `"9:00"`, 1)},
		{"inverted range", strings.Replace(jogJSON, `"min_temp": 10`, `"min_temp": 40`, 1)},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodPost, "/api/v1/activities", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
		})
	}
}

func TestUpdateAndDeleteActivity(t *testing.T) {
	app, registry := newTestApp(t)
	created, err := registry.Create(models.DefaultActivities()[0])
	require.NoError(t, err)

	update := strings.Replace(jogJSON, "Morning Jog", "Evening Jog", 1)
	resp, body := doRequest(t, app, http.MethodPut, "/api/v1/activities/"+created.ID, update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Evening Jog")

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/v1/activities/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/v1/activities/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/activities/missing", update)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type recommendationsResponse struct {
	Date            string                          `json:"date"`
	Weekday         string                          `json:"weekday"`
	Recommendations []models.ActivityRecommendation `json:"recommendations"`
}

func TestGetRecommendations(t *testing.T) {
	app, registry := newTestApp(t)

	var tennis models.Activity
	require.NoError(t, json.Unmarshal([]byte(jogJSON), &tennis))
	tennis.Name = "Tennis"
	tennis.TimeWindows = append(tennis.TimeWindows, models.TimeWindow{
		Start: models.MustParseTimeOfDay("17:00"),
		End:   models.MustParseTimeOfDay("19:00"),
	})
	_, err := registry.Create(tennis)
	require.NoError(t, err)

	var jog models.Activity
	require.NoError(t, json.Unmarshal([]byte(jogJSON), &jog))
	_, err = registry.Create(jog)
	require.NoError(t, err)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/recommendations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out recommendationsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "2026-10-19", out.Date)
	assert.Equal(t, "Monday", out.Weekday)
	require.Len(t, out.Recommendations, 2)

	assert.Equal(t, "Morning Jog", out.Recommendations[0].Activity.Name)
	assert.Equal(t, models.Good, out.Recommendations[0].Suitability)
	assert.Equal(t, "Tennis", out.Recommendations[1].Activity.Name)
	assert.Equal(t, models.Possible, out.Recommendations[1].Suitability)
	assert.Equal(t, []string{"1 of 2 slots favorable", "too windy (30 km/h, maximum: 15 km/h)"}, out.Recommendations[1].Reasons)
}

func TestGetRecommendations_ForDate(t *testing.T) {
	app, registry := newTestApp(t)
	var jog models.Activity
	require.NoError(t, json.Unmarshal([]byte(jogJSON), &jog))
	_, err := registry.Create(jog)
	require.NoError(t, err)

	// Tuesday is not an active day.
	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/recommendations?date=2026-10-20", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out recommendationsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Tuesday", out.Weekday)
	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, []string{"not scheduled today (Tuesday)"}, out.Recommendations[0].Reasons)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/recommendations?date=20-10-2026", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetForecast(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather/forecast?location=Central%20Park", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"time":"09:00"`)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/weather/forecast", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/weather/forecast?location=Atlantis", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	doRequest(t, app, http.MethodGet, "/api/v1/recommendations", "")
	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/metrics/prometheus", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "weather_advisor_recommendation_run_seconds")

	resp, _ = doRequest(t, app, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
