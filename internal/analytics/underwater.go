package analytics

import (
	"time"

	"tradeJournal/internal/domain"
)

// UnderwaterPoint is cumulative P&L after one trade and its distance below
// the running peak.
type UnderwaterPoint struct {
	Date            time.Time `json:"date" yaml:"date"`
	Ticker          string    `json:"ticker" yaml:"ticker"`
	Equity          float64   `json:"equity" yaml:"equity"`
	Peak            float64   `json:"peak" yaml:"peak"`
	DrawdownPercent float64   `json:"drawdown_percent" yaml:"drawdown_percent"`
}

// UnderwaterCurve is the drawdown series. With insufficient data Points is
// empty and MaxDrawdown is nil.
type UnderwaterCurve struct {
	Outcome     Outcome           `json:"outcome" yaml:"outcome"`
	Usable      int               `json:"usable_trades" yaml:"usable_trades"`
	Points      []UnderwaterPoint `json:"points,omitempty" yaml:"points,omitempty"`
	MaxDrawdown *UnderwaterPoint  `json:"max_drawdown,omitempty" yaml:"max_drawdown,omitempty"`
}

// minUnderwaterTrades is the fewest trades that make a meaningful curve.
const minUnderwaterTrades = 2

// BuildUnderwaterCurve walks closed trades in exit order. Trades without an
// exit date are skipped, never defaulted to today. DrawdownPercent is 0 while
// the peak is still 0 and otherwise (equity - peak) / peak × 100.
func BuildUnderwaterCurve(positions []*domain.Position) *UnderwaterCurve {
	ordered := byExitDate(closedPositions(positions))
	curve := &UnderwaterCurve{Outcome: OutcomeInsufficientData, Usable: len(ordered)}
	if len(ordered) < minUnderwaterTrades {
		return curve
	}
	curve.Outcome = OutcomeOK
	curve.Points = make([]UnderwaterPoint, 0, len(ordered))

	var equity pnlSum
	var peak float64
	worst := 0
	for i, p := range ordered {
		equity.add(p.RealizedPnL())
		e := equity.float()
		if e > peak {
			peak = e
		}
		var pct float64
		if peak != 0 {
			pct = (e - peak) / peak * 100
		}
		curve.Points = append(curve.Points, UnderwaterPoint{
			Date:            p.ExitTime(),
			Ticker:          p.Ticker,
			Equity:          e,
			Peak:            peak,
			DrawdownPercent: pct,
		})
		if pct < curve.Points[worst].DrawdownPercent {
			worst = i
		}
	}

	mdd := curve.Points[worst]
	curve.MaxDrawdown = &mdd
	return curve
}
