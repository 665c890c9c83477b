package services

import (
	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	recommendations *prometheus.CounterVec
	runDuration     prometheus.Histogram
	refreshes       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_advisor",
			Name:      "recommendations_total",
			Help:      "Recommendations produced, by suitability tier.",
		}, []string{"suitability"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_advisor",
			Name:      "recommendation_run_seconds",
			Help:      "Time spent fetching forecasts and ranking activities.",
			Buckets:   prometheus.DefBuckets,
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_advisor",
			Name:      "forecast_refreshes_total",
			Help:      "Scheduled forecast refreshes, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.recommendations, m.runDuration, m.refreshes)
	return m
}

func (m *Metrics) observeRecommendations(recs []models.ActivityRecommendation, seconds float64) {
	for _, r := range recs {
		m.recommendations.WithLabelValues(r.Suitability.String()).Inc()
	}
	m.runDuration.Observe(seconds)
}

func (m *Metrics) observeRefresh(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.refreshes.WithLabelValues(result).Inc()
}
