package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/dashboard"
	"github.com/facilitypulse/facilitypulse/internal/device"
	"github.com/facilitypulse/facilitypulse/internal/health"
)

type stubAssets []health.Result

func (s stubAssets) HealthAll(context.Context, string, time.Time) ([]health.Result, error) {
	return s, nil
}

type stubAlerts []*alerting.Alert

func (s stubAlerts) List(context.Context, alerting.ListFilter) ([]*alerting.Alert, error) {
	return s, nil
}

type stubDevices []*device.Device

func (s stubDevices) List(context.Context, string, device.ListOptions) ([]*device.Device, error) {
	return s, nil
}

type stubTickets int

func (s stubTickets) CountOpen(context.Context, string) (int, error) {
	return int(s), nil
}

func newTestService(assets stubAssets, alerts stubAlerts, devices stubDevices) *dashboard.Service {
	return dashboard.NewService(dashboard.ServiceConfig{
		Assets:  assets,
		Alerts:  alerts,
		Devices: devices,
		Tickets: stubTickets(4),
		Logger:  zerolog.Nop(),
	})
}

func TestService_Status_WorstAssetWins(t *testing.T) {
	service := newTestService(stubAssets{
		{AssetID: "ast_1", Score: 92, Color: health.ColorGreen},
		{AssetID: "ast_2", Score: 55, Color: health.ColorYellow},
		{AssetID: "ast_3", Score: 12, Color: health.ColorRed},
	}, nil, nil)

	status, err := service.Status(context.Background(), "loc_main", time.Now())
	require.NoError(t, err)

	assert.Equal(t, health.ColorRed, status.Overall.Color)
	assert.Equal(t, health.MessageCritical, status.Overall.Message)
	assert.Len(t, status.Assets, 3)
}

func TestService_Status_EmptyLocationIsGreen(t *testing.T) {
	service := newTestService(stubAssets{}, nil, nil)

	status, err := service.Status(context.Background(), "loc_empty", time.Now())
	require.NoError(t, err)

	assert.Equal(t, health.ColorGreen, status.Overall.Color)
	assert.Equal(t, health.MessageNominal, status.Overall.Message)
	assert.Empty(t, status.Assets)
}

func TestService_Stats(t *testing.T) {
	service := newTestService(
		stubAssets{
			{AssetID: "ast_1", Color: health.ColorGreen},
			{AssetID: "ast_2", Color: health.ColorYellow},
		},
		stubAlerts{
			{ID: "alr_1", Severity: alerting.SeverityCritical},
			{ID: "alr_2", Severity: alerting.SeverityWarning},
			{ID: "alr_3", Severity: alerting.SeverityWarning},
		},
		stubDevices{
			{ID: "dev_1", Online: true},
			{ID: "dev_2", Online: false},
		},
	)

	stats, err := service.Stats(context.Background(), "loc_main", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Assets)
	assert.Equal(t, 2, stats.Devices)
	assert.Equal(t, 1, stats.DevicesOnline)
	assert.Equal(t, 3, stats.OpenAlerts)
	assert.Equal(t, 1, stats.CriticalAlerts)
	assert.Equal(t, 4, stats.OpenTickets)
}
