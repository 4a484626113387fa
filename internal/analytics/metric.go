package analytics

import (
	"encoding/json"
	"math"
	"strconv"
)

// MetricState says whether a Metric holds a number or a documented fallback.
type MetricState string

const (
	StateValue        MetricState = "value"
	StateNotAvailable MetricState = "n/a"
	StateInfinite     MetricState = "infinity"
)

// Metric is a ratio that may legitimately be undefined (N/A) or unbounded
// (Infinity). It marshals to a JSON/YAML number, "N/A" or "Infinity".
type Metric struct {
	Value float64
	State MetricState
}

// ValueOf wraps a finite number. Non-finite input collapses to N/A.
func ValueOf(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable()
	}
	return Metric{Value: v, State: StateValue}
}

// NotAvailable is the metric for undefined results.
func NotAvailable() Metric {
	return Metric{State: StateNotAvailable}
}

// Infinite is the metric for unbounded results.
func Infinite() Metric {
	return Metric{State: StateInfinite}
}

// Defined reports whether the metric holds a finite number.
func (m Metric) Defined() bool {
	return m.State == StateValue
}

// IsInfinite reports whether the metric is unbounded.
func (m Metric) IsInfinite() bool {
	return m.State == StateInfinite
}

// Float returns the metric as a float64: +Inf for Infinity and 0 for N/A.
func (m Metric) Float() float64 {
	switch m.State {
	case StateValue:
		return m.Value
	case StateInfinite:
		return math.Inf(1)
	default:
		return 0
	}
}

// String formats the metric with two decimals.
func (m Metric) String() string {
	switch m.State {
	case StateValue:
		return strconv.FormatFloat(m.Value, 'f', 2, 64)
	case StateInfinite:
		return "Infinity"
	default:
		return "N/A"
	}
}

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.State == StateValue {
		return json.Marshal(m.Value)
	}
	return json.Marshal(m.String())
}

// MarshalYAML implements yaml.Marshaler.
func (m Metric) MarshalYAML() (interface{}, error) {
	if m.State == StateValue {
		return m.Value, nil
	}
	return m.String(), nil
}

// Outcome tags results that need a minimum amount of data.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeInsufficientData Outcome = "insufficient_data"
)

// SortOrder is the direction of a breakdown sort.
type SortOrder string

const (
	Descending SortOrder = "desc"
	Ascending  SortOrder = "asc"
)

// ParseSortOrder accepts "asc"/"ascending"; everything else is descending.
func ParseSortOrder(s string) SortOrder {
	switch s {
	case "asc", "ascending", "ASC":
		return Ascending
	default:
		return Descending
	}
}
