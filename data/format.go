package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatRowCount renders a row count compactly: 999, 1.5k, 12k, 3.4M.
// One decimal is kept below ten thousands/millions.
func FormatRowCount(n int) string {
	switch {
	case n < 1000:
		return strconv.Itoa(n)
	case n < 10_000:
		return trimDecimal(float64(n)/1e3) + "k"
	case n < 999_500:
		return strconv.Itoa((n+500)/1000) + "k"
	case n < 10_000_000:
		return trimDecimal(float64(n)/1e6) + "M"
	default:
		return strconv.Itoa((n+500_000)/1_000_000) + "M"
	}
}

func trimDecimal(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// Shape summarises a dataset as "1.5k rows × 4 columns".
func (d *Dataset) Shape() string {
	rows := "rows"
	if len(d.Rows) == 1 {
		rows = "row"
	}
	cols := "columns"
	if len(d.Columns) == 1 {
		cols = "column"
	}
	return fmt.Sprintf("%s %s × %d %s", FormatRowCount(len(d.Rows)), rows, len(d.Columns), cols)
}

// FormatAge describes how long ago t was, relative to now:
// "just now", "42s", "5m", "3h", "2d". A zero t renders as "-".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
