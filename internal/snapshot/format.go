package snapshot

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with binary units and at most one
// fractional digit: 1536 is "1.5 KB", 1073741824 is "1 GB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return formatUnsigned(uint64(bytes))
}

func formatUnsigned(bytes uint64) string {
	if bytes == 0 {
		return "0 B"
	}

	unit := 0
	for v := bytes; v >= 1024 && unit < len(sizeUnits)-1; v /= 1024 {
		unit++
	}

	scaled := float64(bytes)
	for i := 0; i < unit; i++ {
		scaled /= 1024
	}

	text := strconv.FormatFloat(scaled, 'f', 1, 64)
	intPart, frac, _ := strings.Cut(text, ".")
	// Group thousands only once the value reaches the unit step.
	if n, err := strconv.ParseInt(intPart, 10, 64); err == nil && n >= 1024 {
		intPart = humanize.Comma(n)
	}
	if frac != "" && frac != "0" {
		intPart += "." + frac
	}
	return intPart + " " + sizeUnits[unit]
}

// DateLayout is the layout used for displayed modification times.
const DateLayout = "2006-01-02 15:04:05"

// FormatDate renders t in local time using DateLayout.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}
