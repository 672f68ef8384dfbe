package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkWindow is a daily working-hours window, minutes from local midnight.
// Windows crossing midnight are not supported.
type WorkWindow struct {
	StartMinute int
	EndMinute   int
}

// ParseWorkHours parses "HH:MM-HH:MM", e.g. "10:00-23:00".
func ParseWorkHours(s string) (WorkWindow, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return WorkWindow{}, fmt.Errorf("bad work hours %q: want HH:MM-HH:MM", s)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return WorkWindow{}, fmt.Errorf("bad work hours %q: %w", s, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return WorkWindow{}, fmt.Errorf("bad work hours %q: %w", s, err)
	}
	if end <= start {
		return WorkWindow{}, fmt.Errorf("work hours %q cross midnight, not supported", s)
	}
	return WorkWindow{StartMinute: start, EndMinute: end}, nil
}

func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute %q", parts[1])
	}
	return h*60 + m, nil
}

// BusinessSeconds measures start→end counting only time inside the working
// window, as the intersection of [start, end] with each spanned day's window.
// An inbound at 22:58 answered at 10:05 next day therefore costs
// 2min + 5min, not 11 hours. Returns ok=false when end precedes start.
func BusinessSeconds(start, end time.Time, loc *time.Location, w WorkWindow) (int, bool) {
	if end.Before(start) {
		return 0, false
	}
	s := start.In(loc)
	e := end.In(loc)

	total := 0
	day := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	for !day.After(e) {
		winStart := day.Add(time.Duration(w.StartMinute) * time.Minute)
		winEnd := day.Add(time.Duration(w.EndMinute) * time.Minute)

		segStart := laterOf(s, winStart)
		segEnd := earlierOf(e, winEnd)
		if segEnd.After(segStart) {
			total += int(segEnd.Sub(segStart).Seconds())
		}
		day = day.AddDate(0, 0, 1)
	}
	return total, true
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
