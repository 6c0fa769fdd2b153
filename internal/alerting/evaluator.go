package alerting

import (
	"fmt"
)

// Evaluate checks a reading against a device's thresholds and returns one
// proposed alert per breached condition. It is a pure function: stateless,
// never short-circuiting after the first breach, and safe to call from any
// number of goroutines. Absent thresholds never raise events; a metric that
// cannot be read as a number is skipped without affecting the others.
// Deduplication of repeated conditions is the caller's concern.
func Evaluate(source Source, thresholds Thresholds, reading Reading) []*Alert {
	var alerts []*Alert

	if v, ok := metricValue(reading, MetricTemperature); ok {
		if thresholds.TempMax != nil && v > *thresholds.TempMax {
			alerts = append(alerts, newAlert(source, TypeTemperatureHigh, SeverityCritical,
				fmt.Sprintf("High temperature - %s", source.DeviceName),
				fmt.Sprintf("Temperature of %g°C exceeds the %g°C threshold", v, *thresholds.TempMax),
				MetricTemperature, v, *thresholds.TempMax))
		}
		if thresholds.TempMin != nil && v < *thresholds.TempMin {
			alerts = append(alerts, newAlert(source, TypeTemperatureLow, SeverityWarning,
				fmt.Sprintf("Low temperature - %s", source.DeviceName),
				fmt.Sprintf("Temperature of %g°C is below the %g°C threshold", v, *thresholds.TempMin),
				MetricTemperature, v, *thresholds.TempMin))
		}
	}

	if v, ok := metricValue(reading, MetricHumidity); ok {
		if thresholds.HumidityMax != nil && v > *thresholds.HumidityMax {
			alerts = append(alerts, newAlert(source, TypeHumidityHigh, SeverityWarning,
				fmt.Sprintf("High humidity - %s", source.DeviceName),
				fmt.Sprintf("Humidity of %g%% exceeds the %g%% threshold", v, *thresholds.HumidityMax),
				MetricHumidity, v, *thresholds.HumidityMax))
		}
		if thresholds.HumidityMin != nil && v < *thresholds.HumidityMin {
			alerts = append(alerts, newAlert(source, TypeHumidityLow, SeverityWarning,
				fmt.Sprintf("Low humidity - %s", source.DeviceName),
				fmt.Sprintf("Humidity of %g%% is below the %g%% threshold", v, *thresholds.HumidityMin),
				MetricHumidity, v, *thresholds.HumidityMin))
		}
	}

	if v, ok := metricValue(reading, MetricEnergy); ok {
		if thresholds.EnergyMax != nil && v > *thresholds.EnergyMax {
			alerts = append(alerts, newAlert(source, TypeEnergySpike, SeverityWarning,
				fmt.Sprintf("Energy spike - %s", source.DeviceName),
				fmt.Sprintf("Consumption of %g kW exceeds the %g kW threshold", v, *thresholds.EnergyMax),
				MetricEnergy, v, *thresholds.EnergyMax))
		}
	}

	return alerts
}

// newAlert assembles a proposed alert. ID and CreatedAt are left for the
// persistence side to stamp.
func newAlert(source Source, alertType Type, severity Severity, title, message, metric string, value, threshold float64) *Alert {
	deviceID := source.DeviceID
	return &Alert{
		LocationID: source.LocationID,
		DeviceID:   &deviceID,
		AssetID:    source.AssetID,
		Type:       alertType,
		Severity:   severity,
		Title:      title,
		Message:    message,
		TriggerData: map[string]float64{
			metric:      value,
			"threshold": threshold,
		},
	}
}

// metricValue reads a numeric metric from a reading. Non-numeric values
// are treated as absent.
func metricValue(reading Reading, metric string) (float64, bool) {
	raw, ok := reading.Metrics[metric]
	if !ok {
		return 0, false
	}
	return toFloat64(raw)
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}
