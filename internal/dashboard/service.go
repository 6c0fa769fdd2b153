// Package dashboard assembles the per-location overview: the traffic-light
// status line and the counters the landing screen shows.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/device"
	"github.com/facilitypulse/facilitypulse/internal/health"
)

// AssetHealth supplies per-asset health results for a location.
// Implemented by the asset service.
type AssetHealth interface {
	HealthAll(ctx context.Context, locationID string, now time.Time) ([]health.Result, error)
}

// AlertLister supplies alert records. Implemented by the alerting service.
type AlertLister interface {
	List(ctx context.Context, filter alerting.ListFilter) ([]*alerting.Alert, error)
}

// DeviceLister supplies the device registry. Implemented by the device
// service.
type DeviceLister interface {
	List(ctx context.Context, locationID string, opts device.ListOptions) ([]*device.Device, error)
}

// TicketCounter supplies the number of open service tickets at a location.
// Implemented by the ticket service.
type TicketCounter interface {
	CountOpen(ctx context.Context, locationID string) (int, error)
}

// ServiceConfig holds configuration for the dashboard service.
type ServiceConfig struct {
	Assets  AssetHealth
	Alerts  AlertLister
	Devices DeviceLister
	Tickets TicketCounter
	Logger  zerolog.Logger
}

// Service builds location overviews.
type Service struct {
	assets  AssetHealth
	alerts  AlertLister
	devices DeviceLister
	tickets TicketCounter
	logger  zerolog.Logger
}

// NewService creates a new dashboard service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		assets:  cfg.Assets,
		alerts:  cfg.Alerts,
		devices: cfg.Devices,
		tickets: cfg.Tickets,
		logger:  cfg.Logger,
	}
}

// Status is the location traffic light plus the asset breakdown behind it.
type Status struct {
	Overall health.Overall
	Assets  []health.Result
}

// Stats holds the landing-screen counters for a location.
type Stats struct {
	Assets         int
	Devices        int
	DevicesOnline  int
	OpenAlerts     int
	CriticalAlerts int
	OpenTickets    int
}

// Status scores every asset at the location and aggregates the results
// into a single traffic light. A location without assets reads green.
func (s *Service) Status(ctx context.Context, locationID string, now time.Time) (*Status, error) {
	results, err := s.assets.HealthAll(ctx, locationID, now)
	if err != nil {
		return nil, fmt.Errorf("scoring assets: %w", err)
	}

	return &Status{
		Overall: health.Aggregate(results),
		Assets:  results,
	}, nil
}

// Stats counts the location's assets, devices, open alerts, and open
// service tickets.
func (s *Service) Stats(ctx context.Context, locationID string, now time.Time) (*Stats, error) {
	results, err := s.assets.HealthAll(ctx, locationID, now)
	if err != nil {
		return nil, fmt.Errorf("scoring assets: %w", err)
	}

	devices, err := s.devices.List(ctx, locationID, device.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	open, err := s.alerts.List(ctx, alerting.ListFilter{
		LocationID:     locationID,
		UnresolvedOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}

	stats := &Stats{
		Assets:     len(results),
		Devices:    len(devices),
		OpenAlerts: len(open),
	}
	if s.tickets != nil {
		stats.OpenTickets, err = s.tickets.CountOpen(ctx, locationID)
		if err != nil {
			return nil, fmt.Errorf("counting tickets: %w", err)
		}
	}
	for _, d := range devices {
		if d.Online {
			stats.DevicesOnline++
		}
	}
	for _, a := range open {
		if a.Severity == alerting.SeverityCritical {
			stats.CriticalAlerts++
		}
	}
	return stats, nil
}
