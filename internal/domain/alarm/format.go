package alarm

import "fmt"

// FormatDuration renders an alarm duration the way the panel shows it:
// "Hh Mm" above an hour, "Mm Ss" above a minute, "Ss" otherwise and "--"
// for zero or negative values.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "--"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
