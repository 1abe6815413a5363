/*
period.go - Calendar-month accounting periods and the boundary resolver

PURPOSE:
  A period is one calendar month, keyed "YYYY-MM" in the configured time
  zone. This file maps timestamps to period keys, detects proximity to
  the midnight boundary between months, and parses period text supplied
  by the operator.

BOUNDARY DETECTION:
  IsNearBoundary exists so the caller can run an explicit confirmation
  step before an entry recorded at the edge of midnight lands in the
  wrong month. It is a pure predicate with no side effects; the pending
  state lives with the caller, never here.

PARSE FALLBACK:
  ParsePeriod historically substitutes the current period for malformed
  input. That can mask operator typos, so the behavior is configurable:
  a strict resolver fails with ErrInvalidPeriod instead.
*/
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - One calendar month, the unit of accounting closure
// =============================================================================

type Period struct {
	Year  int
	Month time.Month
}

// Key returns the canonical "YYYY-MM" form.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) String() string { return p.Key() }

func (p Period) IsZero() bool { return p.Year == 0 && p.Month == 0 }

// Previous returns the preceding calendar month.
func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Start returns the first instant of the period in the given zone.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodOf maps a timestamp to its period in the given zone.
func PeriodOf(t time.Time, loc *time.Location) Period {
	local := t.In(loc)
	return Period{Year: local.Year(), Month: local.Month()}
}

// ParsePeriodKey parses a canonical "YYYY-MM" key. Used by stores when
// scanning persisted rows; operator input goes through Resolver.Parse.
func ParsePeriodKey(key string) (Period, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// =============================================================================
// RESOLVER - Zone-aware mapping of timestamps and text to periods
// =============================================================================

// Resolver resolves timestamps and operator text to periods in one
// configured accounting zone.
type Resolver struct {
	Location *time.Location

	// BoundaryThreshold is the distance from local midnight, in minutes,
	// within which IsNearBoundary reports true.
	BoundaryThreshold int

	// Strict makes Parse fail with ErrInvalidPeriod on malformed input
	// instead of falling back to the current period.
	Strict bool
}

// Current returns the period containing now.
func (r Resolver) Current(now time.Time) Period {
	return PeriodOf(now, r.loc())
}

// IsNearBoundary reports whether now is within the configured threshold
// of local midnight on either side. Pure predicate; the confirmation
// step it triggers is owned by the caller.
func (r Resolver) IsNearBoundary(now time.Time) bool {
	return NearBoundary(now, r.loc(), r.BoundaryThreshold)
}

// NearBoundary reports whether t is within thresholdMinutes of local
// midnight: hour==0 && minute<threshold, or hour==23 && minute>=60-threshold.
func NearBoundary(t time.Time, loc *time.Location, thresholdMinutes int) bool {
	local := t.In(loc)
	if local.Hour() == 0 && local.Minute() < thresholdMinutes {
		return true
	}
	if local.Hour() == 23 && local.Minute() >= 60-thresholdMinutes {
		return true
	}
	return false
}

// Parse accepts "YYYY-M" or "YYYY-MM", zero-padding the month. Malformed
// input falls back to the current period unless the resolver is strict.
func (r Resolver) Parse(text string, now time.Time) (Period, error) {
	text = strings.TrimSpace(text)
	if text != "" {
		if p, err := parsePeriodText(text); err == nil {
			return p, nil
		}
		if r.Strict {
			return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
		}
	}
	return r.Current(now), nil
}

func parsePeriodText(text string) (Period, error) {
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
	}
	if len(parts[0]) != 4 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

func (r Resolver) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}
