package timex

import (
	"fmt"
	"time"
)

// FormatElapsed renders an elapsed duration as MM:SS.cc, where cc is
// hundredths of a second. Negative durations render as 00:00.00.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		return "00:00.00"
	}
	totalSeconds := int(d / time.Second)
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	centis := int(d%time.Second) / int(10*time.Millisecond)
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}

// FormatLong renders a duration as HH:MM:SS. Negative durations render
// as 00:00:00.
func FormatLong(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}
	totalSeconds := int(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatDate renders a timestamp as a short human-readable date with time,
// e.g. "Jan 2, 2006 15:04".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}

// DayOnly renders only the calendar date portion of a timestamp (UTC),
// e.g. "2006-01-02". Used by the progress-over-time series.
func DayOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
