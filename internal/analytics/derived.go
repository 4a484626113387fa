package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// RMultiple returns the trade's result in units of initial risk:
// (exit - entry) / |entry - stop|. ok is false when the trade has no defined
// risk (missing entry, exit or stop, or a stop equal to the entry).
// Computed in decimal so exact multiples land on bucket boundaries.
func RMultiple(p *domain.Position) (r float64, ok bool) {
	if p == nil || p.EntryPrice <= 0 || p.StopPrice == nil || p.ExitPrice == nil {
		return 0, false
	}
	for _, v := range []float64{p.EntryPrice, *p.StopPrice, *p.ExitPrice} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
	}
	entry := decimal.NewFromFloat(p.EntryPrice)
	risk := entry.Sub(decimal.NewFromFloat(*p.StopPrice)).Abs()
	if risk.IsZero() {
		return 0, false
	}
	return decimal.NewFromFloat(*p.ExitPrice).Sub(entry).Div(risk).InexactFloat64(), true
}

// DaysHeld returns whole days between entry and exit, rounded up.
// A same-day round trip is 0 days; exits recorded before entry clamp to 0.
func DaysHeld(p *domain.Position) (int, bool) {
	if p == nil || p.EntryDate.IsZero() || !p.HasExitDate() {
		return 0, false
	}
	d := p.ExitTime().Sub(p.EntryDate).Hours() / 24
	if d <= 0 {
		return 0, true
	}
	return int(math.Ceil(d)), true
}

// closedPositions keeps the realized trades in their input order.
func closedPositions(positions []*domain.Position) []*domain.Position {
	out := make([]*domain.Position, 0, len(positions))
	for _, p := range positions {
		if p != nil && p.IsClosed() {
			out = append(out, p)
		}
	}
	return out
}

// byExitDate returns the closed trades that carry an exit date, ascending by
// exit date. Equal dates keep their input order.
func byExitDate(closed []*domain.Position) []*domain.Position {
	out := make([]*domain.Position, 0, len(closed))
	for _, p := range closed {
		if p.HasExitDate() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExitTime().Before(out[j].ExitTime())
	})
	return out
}

// pnlSum accumulates money in decimal so long journals don't drift.
type pnlSum struct {
	d decimal.Decimal
}

func (s *pnlSum) add(v float64) {
	s.d = s.d.Add(decimal.NewFromFloat(v))
}

func (s pnlSum) float() float64 {
	return s.d.InexactFloat64()
}

func (s pnlSum) div(n int) float64 {
	if n == 0 {
		return 0
	}
	return s.d.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
}

// rate returns part / whole × 100, or 0 for an empty whole.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev uses n-1 in the denominator.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
