package billing

import (
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ParseClock converts a 24-hour "HH:MM" wall-clock string into minutes since
// midnight (0-1439). Empty or malformed input yields 0; a reading the driver
// forgot to enter must not block the invoice.
func ParseClock(s string) int {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0
	}
	return h*60 + m
}

// DurationMinutes returns the elapsed minutes between two clock times. An
// end time earlier than the start is taken as crossing midnight. Equal start
// and end is a zero-length same-day reading, not a full day.
func DurationMinutes(start, end string) int {
	s := ParseClock(start)
	e := ParseClock(end)

	d := e - s
	if d < 0 {
		d += minutesPerDay
	}
	if d < 0 {
		d = 0
	}
	return d
}
