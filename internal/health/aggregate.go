package health

// Aggregate messages, one per overall color.
const (
	MessageCritical = "Critical condition detected. Immediate action required."
	MessageWarning  = "Warnings detected. Schedule maintenance soon."
	MessageNominal  = "All systems nominal."
)

// Overall is a tenant-wide traffic-light verdict reduced from a collection
// of per-asset results.
type Overall struct {
	Color   Color
	Message string
}

// Aggregate reduces per-asset results to one verdict: any red asset makes
// the verdict red, otherwise any yellow asset makes it yellow, otherwise
// green. The reduction is a commutative OR over color buckets, so the order
// of results never affects the outcome. An empty collection is green:
// absence of evidence of failure is treated as nominal.
func Aggregate(results []Result) Overall {
	var red, yellow bool
	for _, r := range results {
		switch r.Color {
		case ColorRed:
			red = true
		case ColorYellow:
			yellow = true
		}
	}

	switch {
	case red:
		return Overall{Color: ColorRed, Message: MessageCritical}
	case yellow:
		return Overall{Color: ColorYellow, Message: MessageWarning}
	default:
		return Overall{Color: ColorGreen, Message: MessageNominal}
	}
}
