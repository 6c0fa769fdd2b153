package alerting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
)

func floatPtr(f float64) *float64 {
	return &f
}

func testSource() alerting.Source {
	assetID := "ast_freezer01"
	return alerting.Source{
		DeviceID:   "dev_coldroom01",
		DeviceName: "Cold Room Sensor",
		AssetID:    &assetID,
		LocationID: "loc_main",
	}
}

func testReading(metrics map[string]any) alerting.Reading {
	return alerting.Reading{
		DeviceID:  "dev_coldroom01",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Metrics:   metrics,
	}
}

func TestEvaluate_NoThresholdsNoAlerts(t *testing.T) {
	reading := testReading(map[string]any{
		"temperature": 99.0,
		"humidity":    99.0,
		"energy":      99.0,
	})

	alerts := alerting.Evaluate(testSource(), alerting.Thresholds{}, reading)
	assert.Empty(t, alerts)
}

func TestEvaluate_TemperatureHighBreach(t *testing.T) {
	thresholds := alerting.Thresholds{TempMax: floatPtr(8.0)}
	reading := testReading(map[string]any{"temperature": 12.5})

	alerts := alerting.Evaluate(testSource(), thresholds, reading)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, alerting.TypeTemperatureHigh, alert.Type)
	assert.Equal(t, alerting.SeverityCritical, alert.Severity)
	assert.Equal(t, map[string]float64{"temperature": 12.5, "threshold": 8.0}, alert.TriggerData)
	assert.Contains(t, alert.Title, "Cold Room Sensor")
	assert.Contains(t, alert.Message, "12.5")
	assert.Contains(t, alert.Message, "8")
	assert.False(t, alert.Resolved)
	assert.False(t, alert.Acknowledged)
	require.NotNil(t, alert.DeviceID)
	assert.Equal(t, "dev_coldroom01", *alert.DeviceID)
	require.NotNil(t, alert.AssetID)
	assert.Equal(t, "ast_freezer01", *alert.AssetID)
}

func TestEvaluate_SeverityPolicyPerMetric(t *testing.T) {
	tests := []struct {
		name       string
		thresholds alerting.Thresholds
		metrics    map[string]any
		wantType   alerting.Type
		wantSev    alerting.Severity
	}{
		{
			name:       "temperature above max is critical",
			thresholds: alerting.Thresholds{TempMax: floatPtr(25)},
			metrics:    map[string]any{"temperature": 30.0},
			wantType:   alerting.TypeTemperatureHigh,
			wantSev:    alerting.SeverityCritical,
		},
		{
			name:       "temperature below min is a warning",
			thresholds: alerting.Thresholds{TempMin: floatPtr(2)},
			metrics:    map[string]any{"temperature": -1.0},
			wantType:   alerting.TypeTemperatureLow,
			wantSev:    alerting.SeverityWarning,
		},
		{
			name:       "humidity above max is a warning",
			thresholds: alerting.Thresholds{HumidityMax: floatPtr(70)},
			metrics:    map[string]any{"humidity": 85.0},
			wantType:   alerting.TypeHumidityHigh,
			wantSev:    alerting.SeverityWarning,
		},
		{
			name:       "humidity below min is a warning",
			thresholds: alerting.Thresholds{HumidityMin: floatPtr(30)},
			metrics:    map[string]any{"humidity": 10.0},
			wantType:   alerting.TypeHumidityLow,
			wantSev:    alerting.SeverityWarning,
		},
		{
			name:       "energy spike is a warning",
			thresholds: alerting.Thresholds{EnergyMax: floatPtr(5)},
			metrics:    map[string]any{"energy": 7.2},
			wantType:   alerting.TypeEnergySpike,
			wantSev:    alerting.SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := alerting.Evaluate(testSource(), tt.thresholds, testReading(tt.metrics))
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantType, alerts[0].Type)
			assert.Equal(t, tt.wantSev, alerts[0].Severity)
		})
	}
}

func TestEvaluate_MultipleBreachesAllReported(t *testing.T) {
	thresholds := alerting.Thresholds{
		TempMax:   floatPtr(8),
		EnergyMax: floatPtr(5),
	}
	reading := testReading(map[string]any{
		"temperature": 12.5,
		"energy":      9.0,
	})

	alerts := alerting.Evaluate(testSource(), thresholds, reading)
	require.Len(t, alerts, 2)

	types := []alerting.Type{alerts[0].Type, alerts[1].Type}
	assert.Contains(t, types, alerting.TypeTemperatureHigh)
	assert.Contains(t, types, alerting.TypeEnergySpike)
}

func TestEvaluate_WithinThresholdsNoAlerts(t *testing.T) {
	thresholds := alerting.Thresholds{
		TempMax:     floatPtr(8),
		TempMin:     floatPtr(0),
		HumidityMax: floatPtr(70),
		EnergyMax:   floatPtr(5),
	}
	reading := testReading(map[string]any{
		"temperature": 4.0,
		"humidity":    55.0,
		"energy":      3.1,
	})

	alerts := alerting.Evaluate(testSource(), thresholds, reading)
	assert.Empty(t, alerts)
}

func TestEvaluate_MalformedMetricDoesNotAbortOthers(t *testing.T) {
	thresholds := alerting.Thresholds{
		TempMax:   floatPtr(8),
		EnergyMax: floatPtr(5),
	}
	reading := testReading(map[string]any{
		"temperature": "not-a-number",
		"energy":      9.0,
	})

	alerts := alerting.Evaluate(testSource(), thresholds, reading)
	require.Len(t, alerts, 1)
	assert.Equal(t, alerting.TypeEnergySpike, alerts[0].Type)
}

func TestEvaluate_IntegerMetricValues(t *testing.T) {
	thresholds := alerting.Thresholds{TempMax: floatPtr(8)}
	reading := testReading(map[string]any{"temperature": 12})

	alerts := alerting.Evaluate(testSource(), thresholds, reading)
	require.Len(t, alerts, 1)
	assert.Equal(t, 12.0, alerts[0].TriggerData["temperature"])
}

func TestEvaluate_UnknownMetricsIgnored(t *testing.T) {
	thresholds := alerting.Thresholds{TempMax: floatPtr(8)}
	reading := testReading(map[string]any{
		"vibration": 140.2,
		"co2":       900.0,
	})

	alerts := alerting.Evaluate(testSource(), thresholds, reading)
	assert.Empty(t, alerts)
}

func TestEvaluate_ExactThresholdIsNotABreach(t *testing.T) {
	thresholds := alerting.Thresholds{TempMax: floatPtr(8), TempMin: floatPtr(2)}

	alerts := alerting.Evaluate(testSource(), thresholds, testReading(map[string]any{"temperature": 8.0}))
	assert.Empty(t, alerts)

	alerts = alerting.Evaluate(testSource(), thresholds, testReading(map[string]any{"temperature": 2.0}))
	assert.Empty(t, alerts)
}

func TestEvaluate_Stateless(t *testing.T) {
	thresholds := alerting.Thresholds{TempMax: floatPtr(8)}
	reading := testReading(map[string]any{"temperature": 12.5})

	first := alerting.Evaluate(testSource(), thresholds, reading)
	second := alerting.Evaluate(testSource(), thresholds, reading)

	assert.Equal(t, first, second)
}
