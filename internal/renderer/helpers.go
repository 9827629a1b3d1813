package renderer

import (
	"math"

	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

const mmPerInch = 25.4

// ToPixels converts a design-unit length to whole pixels at the given resolution
func ToPixels(v float64, unit template.Unit, dpi float64) int {
	switch unit {
	case template.UnitMillimeter, "":
		return int(math.Round(v / mmPerInch * dpi))
	case template.UnitInch:
		return int(math.Round(v * dpi))
	default:
		return int(math.Round(v))
	}
}

// ToPoints converts a design-unit length to PDF points (1/72 inch). Pixel
// lengths are taken at the given resolution.
func ToPoints(v float64, unit template.Unit, dpi float64) float64 {
	switch unit {
	case template.UnitMillimeter, "":
		return v / mmPerInch * 72
	case template.UnitInch:
		return v * 72
	default:
		return v / dpi * 72
	}
}

// truncate shortens s to at most maxRunes runes
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 0 {
		return ""
	}
	return string(runes[:maxRunes])
}
