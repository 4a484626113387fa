package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period is a closed date range used to scope reports. A zero Start or End
// means the range is open on that side.
type Period struct {
	Name  string    `json:"name" yaml:"name"`
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End   time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// AllTime is the unbounded period.
var AllTime = Period{Name: "ALL"}

// ParsePeriod resolves a period code relative to now.
// Supported codes: 1M, 3M, 6M, 1Y, YTD, ALL.
func ParsePeriod(code string, now time.Time) (Period, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "1M":
		return Period{Name: code, Start: now.AddDate(0, -1, 0), End: now}, nil
	case "3M":
		return Period{Name: code, Start: now.AddDate(0, -3, 0), End: now}, nil
	case "6M":
		return Period{Name: code, Start: now.AddDate(0, -6, 0), End: now}, nil
	case "1Y":
		return Period{Name: code, Start: now.AddDate(-1, 0, 0), End: now}, nil
	case "YTD":
		return Period{Name: code, Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), End: now}, nil
	case "", "ALL":
		return AllTime, nil
	default:
		return Period{}, fmt.Errorf("unknown period %q (want 1M, 3M, 6M, 1Y, YTD or ALL)", code)
	}
}

// Bounded reports whether both ends of the period are set.
func (p Period) Bounded() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// Contains reports whether t falls inside the period (inclusive).
func (p Period) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && t.After(p.End) {
		return false
	}
	return true
}

// Weeks returns the number of weeks the period spans, or 0 when unbounded.
func (p Period) Weeks() float64 {
	if !p.Bounded() || !p.End.After(p.Start) {
		return 0
	}
	return p.End.Sub(p.Start).Hours() / (24 * 7)
}
