package analytics

import (
	"fmt"
	"math"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

// FormatDuration renders milliseconds the way every report shows them:
// "500ms", "2.35s", "2m 5.0s". Rounding is half away from zero.
func FormatDuration(ms float64) string {
	if ms < 0 {
		ms = 0
	}

	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", int64(math.Round(ms)))
	case ms < 60000:
		hundredths := int64(math.Round(ms / 10))
		return fmt.Sprintf("%d.%02ds", hundredths/100, hundredths%100)
	default:
		minutes := int64(math.Floor(ms / 60000))
		tenths := int64(math.Round((ms - float64(minutes)*60000) / 100))
		return fmt.Sprintf("%dm %d.%ds", minutes, tenths/10, tenths%10)
	}
}

// FormatNanos formats a cucumber duration given in nanoseconds.
func FormatNanos(ns int64) string {
	return FormatDuration(models.NanosToMillis(ns))
}
