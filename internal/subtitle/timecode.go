package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var assClockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})\.(\d{2})$`)

// parseClock converts split clock fields to a duration. unit scales the
// fractional field: milliseconds for SRT and VTT, centiseconds for ASS.
func parseClock(hours, minutes, seconds, fraction string, unit time.Duration) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, fmt.Errorf("invalid hours %q: %w", hours, err)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes %q: %w", minutes, err)
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds %q: %w", seconds, err)
	}
	f, err := strconv.Atoi(fraction)
	if err != nil {
		return 0, fmt.Errorf("invalid fraction %q: %w", fraction, err)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(f)*unit, nil
}

// parseASSClock parses an H:MM:SS.CC dialogue timestamp. Malformed
// values yield zero rather than an error so dialogue parsing stays total.
func parseASSClock(ts string) time.Duration {
	m := assClockRe.FindStringSubmatch(strings.TrimSpace(ts))
	if m == nil {
		return 0
	}
	d, err := parseClock(m[1], m[2], m[3], m[4], 10*time.Millisecond)
	if err != nil {
		return 0
	}
	return d
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

func formatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := int(d.Milliseconds()) % 1000 / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}
