package models

// DashboardStatus is the aggregated health verdict for a location.
type DashboardStatus struct {
	// Color is the worst traffic-light band across the location's assets.
	Color   string `json:"color"`
	Message string `json:"message"`

	// Assets holds per-asset health.
	Assets []AssetHealth `json:"assets"`
}

// DashboardStats holds the landing-screen counters for a location.
type DashboardStats struct {
	Assets         int `json:"assets"`
	Devices        int `json:"devices"`
	DevicesOnline  int `json:"devicesOnline"`
	OpenAlerts     int `json:"openAlerts"`
	CriticalAlerts int `json:"criticalAlerts"`
	OpenTickets    int `json:"openTickets"`
}
