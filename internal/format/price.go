package format

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Price trend classes shared with the stylesheet.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Trend classifies a 24h change for styling. A missing change counts as
// stable so the homepage still gets a neutral badge.
func Trend(change *float64) string {
	if change == nil {
		return TrendStable
	}
	switch {
	case *change > 0:
		return TrendUp
	case *change < 0:
		return TrendDown
	default:
		return TrendStable
	}
}

// TrendArrow returns the direction glyph next to the change figure.
// Missing changes get no arrow.
func TrendArrow(change *float64) string {
	if change == nil {
		return ""
	}
	switch {
	case *change > 0:
		return "▲"
	case *change < 0:
		return "▼"
	default:
		return "▶"
	}
}

// FormatChange renders a 24h change percentage with two decimals and an
// explicit sign on gains. Missing changes render the "--.--%" placeholder.
func FormatChange(change *float64) string {
	if change == nil {
		return "--.--%"
	}
	if *change > 0 {
		return fmt.Sprintf("+%.2f%%", *change)
	}
	return fmt.Sprintf("%.2f%%", *change)
}

// FormatUSD renders a dollar amount with thousands separators and exactly
// two decimals, e.g. "$97,123.45".
func FormatUSD(amount float64) string {
	return "$" + humanize.FormatFloat("#,###.##", amount)
}
