// Package schedule resolves when the next daily pick window opens.
package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Sentinel kinds for schedule errors.
var (
	ErrNoScheduleConfigured = errors.New("no pick schedule configured")
	ErrInvalidTimeOfDay     = errors.New("invalid time of day")
)

// TimeOfDay is a wall-clock time not tied to any date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// ParseTimesOfDay parses every entry of ss.
func ParseTimesOfDay(ss []string) ([]TimeOfDay, error) {
	out := make([]TimeOfDay, 0, len(ss))
	for _, s := range ss {
		t, err := ParseTimeOfDay(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

// On combines t with the calendar date of day in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, loc)
}

// Resolver computes the next window from a fixed set of daily start times.
// It holds no mutable state.
type Resolver struct {
	times []TimeOfDay // sorted, unique
	loc   *time.Location
}

// New builds a Resolver. Times are treated as a set; nil loc means UTC.
func New(times []TimeOfDay, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	sorted := slices.Clone(times)
	slices.SortFunc(sorted, func(a, b TimeOfDay) int { return a.minutes() - b.minutes() })
	sorted = slices.Compact(sorted)
	return &Resolver{times: sorted, loc: loc}
}

// Times returns the configured start times in ascending order.
func (r *Resolver) Times() []TimeOfDay { return slices.Clone(r.times) }

// Location returns the zone the times are interpreted in.
func (r *Resolver) Location() *time.Location { return r.loc }

// Next returns the earliest window strictly after now, rolling over to the
// first window of the following day once today's have all passed.
func (r *Resolver) Next(now time.Time) (time.Time, error) {
	if len(r.times) == 0 {
		return time.Time{}, ErrNoScheduleConfigured
	}
	local := now.In(r.loc)
	for _, t := range r.times {
		if candidate := t.On(local, r.loc); candidate.After(now) {
			return candidate, nil
		}
	}
	y, m, d := local.Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, r.loc)
	return r.times[0].On(tomorrow, r.loc), nil
}
