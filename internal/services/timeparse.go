package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the local-time layout used by trip rows and by the
// rendered arrival times.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the operating-date layout supplied by the caller.
const DateLayout = "2006-01-02"

// ParseTimestamp parses a trip timestamp in local time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// IntervalWindow combines an operating date with an "HH:MM-HH:MM" interval
// into an epoch-second time window.
func IntervalWindow(date, interval string) ([]int64, error) {
	startHM, endHM, ok := strings.Cut(strings.TrimSpace(interval), "-")
	if !ok {
		return nil, fmt.Errorf("parse working hours %q: want HH:MM-HH:MM", interval)
	}

	start, err := time.ParseInLocation(DateLayout+" 15:04", date+" "+strings.TrimSpace(startHM), time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse working hours %q: %w", interval, err)
	}
	end, err := time.ParseInLocation(DateLayout+" 15:04", date+" "+strings.TrimSpace(endHM), time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse working hours %q: %w", interval, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("parse working hours %q: end not after start", interval)
	}

	return []int64{start.Unix(), end.Unix()}, nil
}

// ParseSkills parses a comma-separated small-integer list, e.g. "1,2,3".
// Empty input returns nil so callers can substitute the configured default.
func ParseSkills(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	skills := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse skills %q: %w", s, err)
		}
		skills = append(skills, n)
	}
	return skills, nil
}
