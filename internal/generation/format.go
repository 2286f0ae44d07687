package generation

import (
	"fmt"
	"math"
	"time"
)

// FormatUntilReset renders the time until the quota resets as a German
// human-readable string: "jetzt", "5 Minuten", "1 Stunde", "2h 5min".
func FormatUntilReset(reset, now time.Time) string {
	diff := reset.Sub(now)
	if diff <= 0 {
		return "jetzt"
	}

	minutes := int(math.Ceil(diff.Minutes()))
	if minutes < 60 {
		if minutes == 1 {
			return "1 Minute"
		}
		return fmt.Sprintf("%d Minuten", minutes)
	}

	hours := minutes / 60
	remaining := minutes % 60
	if remaining == 0 {
		if hours == 1 {
			return "1 Stunde"
		}
		return fmt.Sprintf("%d Stunden", hours)
	}
	return fmt.Sprintf("%dh %dmin", hours, remaining)
}
