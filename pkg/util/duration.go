package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnknownDuration is shown when a track length is not known.
const UnknownDuration = "unknown"

// FormatDuration renders d as m:ss, or h:mm:ss when it spans an hour or more.
// Non-positive durations render as UnknownDuration.
//
// Example:
//
//	FormatDuration(225 * time.Second)  // "3:45"
//	FormatDuration(3725 * time.Second) // "1:02:05"
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return UnknownDuration
	}

	total := int(d.Round(time.Second) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// ParseClock parses "3:20" or "1:05:20" style timestamps. It returns 0 for anything else.
func ParseClock(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
