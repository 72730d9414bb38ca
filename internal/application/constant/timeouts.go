package constant

import (
	"fmt"
	"time"
)

// MaxTimeoutLevel is the highest escalation level a spammer can reach.
const MaxTimeoutLevel = 7

// timeoutDurations maps escalation levels 0-7 to platform timeout durations.
var timeoutDurations = [...]time.Duration{
	15 * time.Minute,
	time.Hour,
	6 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
	14 * 24 * time.Hour,
}

// TimeoutDuration returns the punishment duration for an escalation level.
// Levels above the table bound clamp to the maximum.
func TimeoutDuration(level int) time.Duration {
	if level < 0 {
		level = 0
	}
	if level > MaxTimeoutLevel {
		level = MaxTimeoutLevel
	}

	return timeoutDurations[level]
}

// FormatDuration renders a duration for user-facing messages.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())

	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds", secs)
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	default:
		return plural(secs/86400, "day")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
