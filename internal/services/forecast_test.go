package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
)

type fakeWeatherClient struct {
	name string
	fail map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newFakeClient(name string, failing ...string) *fakeWeatherClient {
	fail := make(map[string]bool, len(failing))
	for _, l := range failing {
		fail[l] = true
	}
	return &fakeWeatherClient{name: name, fail: fail, calls: make(map[string]int)}
}

func (f *fakeWeatherClient) Name() string { return f.name }

func (f *fakeWeatherClient) GetForecast(_ context.Context, location string, days int) (*models.WeatherSnapshot, error) {
	f.mu.Lock()
	f.calls[location]++
	f.mu.Unlock()

	if f.fail[location] {
		return nil, errors.New("upstream unavailable")
	}
	return &models.WeatherSnapshot{Location: location, Source: f.name, Days: make([]models.ForecastDay, days)}, nil
}

func (f *fakeWeatherClient) callCount(location string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[location]
}

func newTestForecastService(t *testing.T, clients ...WeatherClient) *ForecastService {
	t.Helper()
	cache := newWeatherCache(10*time.Minute, 100, zap.NewNop(), time.Now)
	svc, err := newForecastService(clients, cache, 5, 2, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestNewForecastService_RequiresClients(t *testing.T) {
	_, err := newForecastService(nil, nil, 5, 2, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoWeatherClients)
}

func TestForecastService_GetSnapshotCaches(t *testing.T) {
	primary := newFakeClient("primary")
	svc := newTestForecastService(t, primary)

	first, err := svc.GetSnapshot(context.Background(), "Prague")
	require.NoError(t, err)
	second, err := svc.GetSnapshot(context.Background(), "Prague")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, first.Days, 5)
	assert.Equal(t, 1, primary.callCount("Prague"))
}

func TestForecastService_FallsBackToNextClient(t *testing.T) {
	primary := newFakeClient("primary", "Prague")
	fallback := newFakeClient("fallback")
	svc := newTestForecastService(t, primary, fallback)

	snap, err := svc.GetSnapshot(context.Background(), "Prague")
	require.NoError(t, err)

	assert.Equal(t, "fallback", snap.Source)
	assert.Equal(t, 1, primary.callCount("Prague"))
}

func TestForecastService_AllClientsFail(t *testing.T) {
	svc := newTestForecastService(t, newFakeClient("a", "Prague"), newFakeClient("b", "Prague"))

	_, err := svc.GetSnapshot(context.Background(), "Prague")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: upstream unavailable")
	assert.Contains(t, err.Error(), "b: upstream unavailable")
	assert.Equal(t, 1, svc.GetStats()["failure_count"])
}

func TestForecastService_FetchAllOmitsFailures(t *testing.T) {
	svc := newTestForecastService(t, newFakeClient("primary", "Atlantis"))

	got := svc.FetchAll(context.Background(), []string{"Prague", "Atlantis", "London"})

	assert.Len(t, got, 2)
	assert.Contains(t, got, "Prague")
	assert.Contains(t, got, "London")
	assert.NotContains(t, got, "Atlantis")
	assert.False(t, svc.GetLastFetchTime().IsZero())
}

func TestForecastService_RefreshBypassesCache(t *testing.T) {
	primary := newFakeClient("primary")
	svc := newTestForecastService(t, primary)

	_, err := svc.GetSnapshot(context.Background(), "Prague")
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), "Prague")
	require.NoError(t, err)

	assert.Equal(t, 2, primary.callCount("Prague"))
}
