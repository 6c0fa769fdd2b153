package device_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/device"
)

func newTestService(alerts device.AlertFiler) *device.Service {
	return device.NewService(device.ServiceConfig{
		Repository: device.NewInMemoryRepository(),
		Alerts:     alerts,
		Logger:     zerolog.Nop(),
	})
}

func newAlertService() *alerting.Service {
	return alerting.NewService(alerting.ServiceConfig{
		Repository: alerting.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
}

func floatPtr(v float64) *float64 { return &v }

func TestService_Register(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	created, err := service.Register(ctx, "loc_main", &device.RegisterInput{
		Name:       "Freezer Probe",
		Type:       device.TypeTempHum,
		HardwareID: "AA:BB:CC:DD:EE:01",
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	if !strings.HasPrefix(created.ID, "dev_") {
		t.Errorf("expected device ID to start with 'dev_', got %q", created.ID)
	}
	if created.Online {
		t.Error("expected a new device to start offline")
	}

	got, err := service.Get(ctx, "loc_main", created.ID)
	if err != nil {
		t.Fatalf("failed to get device: %v", err)
	}
	if got.HardwareID != "AA:BB:CC:DD:EE:01" {
		t.Errorf("unexpected hardware ID %q", got.HardwareID)
	}
}

func TestService_Register_Validation(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input *device.RegisterInput
	}{
		{"nil input", nil},
		{"missing name", &device.RegisterInput{Type: device.TypeEnergy, HardwareID: "hw-1"}},
		{"missing hardware ID", &device.RegisterInput{Name: "Meter", Type: device.TypeEnergy}},
		{"unknown type", &device.RegisterInput{Name: "Meter", Type: "thermostat", HardwareID: "hw-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, "loc_main", tt.input)
			if !errors.Is(err, device.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Update_Partial(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	created, err := service.Register(ctx, "loc_main", &device.RegisterInput{
		Name:       "Freezer Probe",
		Type:       device.TypeTempHum,
		HardwareID: "hw-1",
		Thresholds: alerting.Thresholds{TempMax: floatPtr(8)},
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	name := "Cold Room Probe"
	updated, err := service.Update(ctx, "loc_main", created.ID, &device.UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("failed to update device: %v", err)
	}
	if updated.Name != "Cold Room Probe" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.Thresholds.TempMax == nil || *updated.Thresholds.TempMax != 8 {
		t.Error("expected thresholds to be untouched by a name-only update")
	}
}

func TestService_Delete_HidesDevice(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	created, err := service.Register(ctx, "loc_main", &device.RegisterInput{
		Name:       "Meter",
		Type:       device.TypeEnergy,
		HardwareID: "hw-1",
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	if err := service.Delete(ctx, "loc_main", created.ID); err != nil {
		t.Fatalf("failed to delete device: %v", err)
	}

	if _, err := service.Get(ctx, "loc_main", created.ID); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound after delete, got %v", err)
	}
	if _, err := service.IngestTelemetry(ctx, "hw-1", map[string]any{"temperature": 4.0}, time.Now()); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("expected webhook to reject deleted device, got %v", err)
	}
}

func TestService_IngestTelemetry(t *testing.T) {
	alerts := newAlertService()
	service := newTestService(alerts)
	ctx := context.Background()

	created, err := service.Register(ctx, "loc_main", &device.RegisterInput{
		Name:       "Freezer Probe",
		Type:       device.TypeTempHum,
		HardwareID: "AA:BB:CC:DD:EE:01",
		Thresholds: alerting.Thresholds{TempMax: floatPtr(8)},
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	recordedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reading, err := service.IngestTelemetry(ctx, "AA:BB:CC:DD:EE:01", map[string]any{
		"temperature": 12.5,
		"humidity":    55.0,
	}, recordedAt)
	if err != nil {
		t.Fatalf("failed to ingest telemetry: %v", err)
	}
	if !strings.HasPrefix(reading.ID, "tel_") {
		t.Errorf("expected reading ID to start with 'tel_', got %q", reading.ID)
	}

	got, err := service.Get(ctx, "loc_main", created.ID)
	if err != nil {
		t.Fatalf("failed to get device: %v", err)
	}
	if !got.Online {
		t.Error("expected device to come online after a reading")
	}
	if got.LastHeartbeatAt == nil || !got.LastHeartbeatAt.Equal(recordedAt) {
		t.Errorf("expected heartbeat at %v, got %v", recordedAt, got.LastHeartbeatAt)
	}

	filed, err := alerts.List(ctx, alerting.ListFilter{DeviceID: created.ID})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(filed) != 1 {
		t.Fatalf("expected one alert from the breach, got %d", len(filed))
	}
	if filed[0].Type != alerting.TypeTemperatureHigh {
		t.Errorf("expected temperature_high alert, got %q", filed[0].Type)
	}

	// A second breach while the first alert is open must not file another.
	if _, err := service.IngestTelemetry(ctx, "AA:BB:CC:DD:EE:01", map[string]any{"temperature": 13.0}, recordedAt.Add(time.Minute)); err != nil {
		t.Fatalf("failed to ingest second reading: %v", err)
	}
	filed, err = alerts.List(ctx, alerting.ListFilter{DeviceID: created.ID})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(filed) != 1 {
		t.Errorf("expected sustained breach to stay at one alert, got %d", len(filed))
	}
}

func TestService_IngestTelemetry_UnknownHardwareID(t *testing.T) {
	service := newTestService(nil)

	_, err := service.IngestTelemetry(context.Background(), "unknown", map[string]any{"temperature": 4.0}, time.Now())
	if !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestService_TelemetryHistory(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	created, err := service.Register(ctx, "loc_main", &device.RegisterInput{
		Name:       "Meter",
		Type:       device.TypeEnergy,
		HardwareID: "hw-1",
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := service.IngestTelemetry(ctx, "hw-1", map[string]any{"energy": float64(i)}, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("failed to ingest reading %d: %v", i, err)
		}
	}

	history, err := service.TelemetryHistory(ctx, "loc_main", created.ID, device.HistoryOptions{
		Since: base.Add(2 * time.Hour),
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(history))
	}
	if !history[0].RecordedAt.After(history[1].RecordedAt) {
		t.Error("expected history newest first")
	}
}

func TestService_MarkStaleOffline(t *testing.T) {
	alerts := newAlertService()
	service := newTestService(alerts)
	ctx := context.Background()

	created, err := service.Register(ctx, "loc_main", &device.RegisterInput{
		Name:       "Freezer Probe",
		Type:       device.TypeTempHum,
		HardwareID: "hw-1",
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	lastSeen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := service.IngestTelemetry(ctx, "hw-1", map[string]any{"temperature": 4.0}, lastSeen); err != nil {
		t.Fatalf("failed to ingest telemetry: %v", err)
	}

	// Inside the heartbeat window nothing is flipped.
	flipped, err := service.MarkStaleOffline(ctx, lastSeen.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("watchdog failed: %v", err)
	}
	if len(flipped) != 0 {
		t.Fatalf("expected no devices flipped inside the window, got %d", len(flipped))
	}

	flipped, err = service.MarkStaleOffline(ctx, lastSeen.Add(time.Hour))
	if err != nil {
		t.Fatalf("watchdog failed: %v", err)
	}
	if len(flipped) != 1 {
		t.Fatalf("expected one device flipped, got %d", len(flipped))
	}

	got, err := service.Get(ctx, "loc_main", created.ID)
	if err != nil {
		t.Fatalf("failed to get device: %v", err)
	}
	if got.Online {
		t.Error("expected device to be offline after the watchdog pass")
	}

	filed, err := alerts.List(ctx, alerting.ListFilter{DeviceID: created.ID, Type: alerting.TypeDeviceOffline})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(filed) != 1 {
		t.Fatalf("expected one offline alert, got %d", len(filed))
	}
	if filed[0].Severity != alerting.SeverityWarning {
		t.Errorf("expected warning severity, got %q", filed[0].Severity)
	}

	// A second pass finds the device already offline and leaves it alone.
	flipped, err = service.MarkStaleOffline(ctx, lastSeen.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("watchdog failed: %v", err)
	}
	if len(flipped) != 0 {
		t.Errorf("expected idempotent second pass, got %d flipped", len(flipped))
	}
}
