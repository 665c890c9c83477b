package recommend

import (
	"fmt"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
)

// EvaluateWindow scores one time window of an activity against the hourly
// samples of a single forecast day. The day must belong to the activity's
// location.
func EvaluateWindow(window models.TimeWindow, activity models.Activity, day models.ForecastDay) models.TimeWindowVerdict {
	var (
		count   int
		tempSum float64
		maxWind float64
		maxRain int
	)

	for _, sample := range day.Hourly {
		if !window.Contains(sample.Time) {
			continue
		}
		tempSum += sample.Temperature
		if count == 0 || sample.WindSpeed > maxWind {
			maxWind = sample.WindSpeed
		}
		if count == 0 || sample.RainChance > maxRain {
			maxRain = sample.RainChance
		}
		count++
	}

	if count == 0 {
		return models.TimeWindowVerdict{
			Window: window,
			IsGood: false,
			Issues: []string{fmt.Sprintf("no data for window %s", window)},
		}
	}

	avgTemp := tempSum / float64(count)
	issues := make([]string, 0, 4)

	// Displayed values are truncated; comparisons use full precision.
	if avgTemp < float64(activity.MinTemp) {
		issues = append(issues, fmt.Sprintf("too cold (%d°C, minimum: %d°C)", int(avgTemp), activity.MinTemp))
	}
	if avgTemp > float64(activity.MaxTemp) {
		issues = append(issues, fmt.Sprintf("too hot (%d°C, maximum: %d°C)", int(avgTemp), activity.MaxTemp))
	}
	if maxWind > float64(activity.MaxWind) {
		issues = append(issues, fmt.Sprintf("too windy (%d km/h, maximum: %d km/h)", int(maxWind), activity.MaxWind))
	}
	if maxRain > activity.MaxRain {
		issues = append(issues, fmt.Sprintf("too wet (%d%% rain chance, maximum: %d%%)", maxRain, activity.MaxRain))
	}

	return models.TimeWindowVerdict{
		Window: window,
		IsGood: len(issues) == 0,
		Issues: issues,
	}
}
