package analyzer

import (
	"fmt"
	"math"
)

// FormatHuman renders a sample value with a unit-aware scale, e.g.
// 1.5e9 nanoseconds as "1.50s" and 1500 bytes as "1.50 KB". Decimal
// (1000-based) thresholds are used for every unit.
func FormatHuman(v Value, unit string) string {
	f := ToFloat(v)
	switch unit {
	case "nanoseconds", "microseconds":
		if unit == "microseconds" {
			f *= 1e3
		}
		abs := math.Abs(f)
		switch {
		case abs >= 1e9:
			return fmt.Sprintf("%.2fs", f/1e9)
		case abs >= 1e6:
			return fmt.Sprintf("%.2fms", f/1e6)
		case abs >= 1e3:
			return fmt.Sprintf("%.2fus", f/1e3)
		}
		return fmt.Sprintf("%dns", roundInt(f))
	case "bytes":
		abs := math.Abs(f)
		switch {
		case abs >= 1e9:
			return fmt.Sprintf("%.2f GB", f/1e9)
		case abs >= 1e6:
			return fmt.Sprintf("%.2f MB", f/1e6)
		case abs >= 1e3:
			return fmt.Sprintf("%.2f KB", f/1e3)
		}
		return fmt.Sprintf("%d B", roundInt(f))
	case "count":
		abs := math.Abs(f)
		switch {
		case abs >= 1e6:
			return fmt.Sprintf("%.2fM", f/1e6)
		case abs >= 1e3:
			return fmt.Sprintf("%.2fK", f/1e3)
		}
		return fmt.Sprintf("%d", roundInt(f))
	default:
		return fmt.Sprintf("%s %s", v, unit)
	}
}

func roundInt(f float64) int64 {
	return int64(math.Round(f))
}
