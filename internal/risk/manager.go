package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// RiskConfig holds the open-book limits. Zero disables a limit.
type RiskConfig struct {
	MaxOpenPositions int
	MaxOpenRisk      float64 // total money at risk to stops
	MaxPositionRisk  float64 // money at risk on any one position
}

// RiskManager reports on open positions against the configured limits.
type RiskManager struct {
	config RiskConfig
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) *RiskManager {
	return &RiskManager{config: config}
}

// PositionExposure is the risk carried by one open position.
type PositionExposure struct {
	ID          string   `json:"id" yaml:"id"`
	Ticker      string   `json:"ticker" yaml:"ticker"`
	Market      string   `json:"market" yaml:"market"`
	Capital     float64  `json:"capital" yaml:"capital"`
	InitialRisk *float64 `json:"initial_risk,omitempty" yaml:"initial_risk,omitempty"`
	// OpenRisk is what is still lost if the stop is hit from the current price.
	// It is 0 once the stop is at or above the current price.
	OpenRisk      *float64 `json:"open_risk,omitempty" yaml:"open_risk,omitempty"`
	UnrealizedPnL *float64 `json:"unrealized_pnl,omitempty" yaml:"unrealized_pnl,omitempty"`
	UnrealizedR   *float64 `json:"unrealized_r,omitempty" yaml:"unrealized_r,omitempty"`
	Unprotected   bool     `json:"unprotected" yaml:"unprotected"`
}

// ExposureReport sums the open book.
type ExposureReport struct {
	OpenPositions    int                `json:"open_positions" yaml:"open_positions"`
	TotalCapital     float64            `json:"total_capital" yaml:"total_capital"`
	TotalInitialRisk float64            `json:"total_initial_risk" yaml:"total_initial_risk"`
	TotalOpenRisk    float64            `json:"total_open_risk" yaml:"total_open_risk"`
	TotalUnrealized  float64            `json:"total_unrealized_pnl" yaml:"total_unrealized_pnl"`
	Unprotected      int                `json:"unprotected" yaml:"unprotected"`
	Positions        []PositionExposure `json:"positions" yaml:"positions"`
	Breaches         []string           `json:"breaches,omitempty" yaml:"breaches,omitempty"`
}

// Exposure builds the report over the open positions in the input, largest
// capital first. Closed positions are ignored.
func (r *RiskManager) Exposure(positions []*domain.Position) *ExposureReport {
	report := &ExposureReport{Positions: make([]PositionExposure, 0)}
	var capital, initial, open, unrealized decimal.Decimal

	for _, p := range positions {
		if p == nil || !p.IsOpen() {
			continue
		}
		e := exposureOf(p)
		report.Positions = append(report.Positions, e)

		capital = capital.Add(decimal.NewFromFloat(e.Capital))
		if e.Unprotected {
			report.Unprotected++
		} else {
			initial = initial.Add(decimal.NewFromFloat(*e.InitialRisk))
			open = open.Add(decimal.NewFromFloat(*e.OpenRisk))
		}
		if e.UnrealizedPnL != nil {
			unrealized = unrealized.Add(decimal.NewFromFloat(*e.UnrealizedPnL))
		}
	}

	sort.SliceStable(report.Positions, func(i, j int) bool {
		return report.Positions[i].Capital > report.Positions[j].Capital
	})

	report.OpenPositions = len(report.Positions)
	report.TotalCapital = capital.InexactFloat64()
	report.TotalInitialRisk = initial.InexactFloat64()
	report.TotalOpenRisk = open.InexactFloat64()
	report.TotalUnrealized = unrealized.InexactFloat64()
	report.Breaches = r.breaches(report)
	return report
}

func exposureOf(p *domain.Position) PositionExposure {
	e := PositionExposure{
		ID:      p.ID,
		Ticker:  p.Ticker,
		Market:  p.MarketLabel(),
		Capital: p.CapitalDeployed(),
	}
	entry := decimal.NewFromFloat(p.EntryPrice)
	shares := decimal.NewFromFloat(p.Shares)

	mark := entry
	if p.CurrentPrice != nil && isFinite(*p.CurrentPrice) {
		mark = decimal.NewFromFloat(*p.CurrentPrice)
		pnl := mark.Sub(entry).Mul(shares).InexactFloat64()
		e.UnrealizedPnL = &pnl
	}

	if p.StopPrice == nil || !isFinite(*p.StopPrice) || *p.StopPrice == p.EntryPrice || p.EntryPrice <= 0 {
		e.Unprotected = true
		return e
	}
	stop := decimal.NewFromFloat(*p.StopPrice)
	perShare := entry.Sub(stop).Abs()

	initial := perShare.Mul(shares).InexactFloat64()
	e.InitialRisk = &initial

	openRisk := decimal.Max(mark.Sub(stop), decimal.Zero).Mul(shares).InexactFloat64()
	e.OpenRisk = &openRisk

	if e.UnrealizedPnL != nil {
		ur := mark.Sub(entry).Div(perShare).InexactFloat64()
		e.UnrealizedR = &ur
	}
	return e
}

func (r *RiskManager) breaches(report *ExposureReport) []string {
	var out []string
	if r.config.MaxOpenPositions > 0 && report.OpenPositions > r.config.MaxOpenPositions {
		out = append(out, fmt.Sprintf("%d open positions exceeds maximum of %d",
			report.OpenPositions, r.config.MaxOpenPositions))
	}
	if r.config.MaxOpenRisk > 0 && report.TotalOpenRisk > r.config.MaxOpenRisk {
		out = append(out, fmt.Sprintf("open risk %.2f exceeds maximum of %.2f",
			report.TotalOpenRisk, r.config.MaxOpenRisk))
	}
	for _, p := range report.Positions {
		if r.config.MaxPositionRisk > 0 && p.OpenRisk != nil && *p.OpenRisk > r.config.MaxPositionRisk {
			out = append(out, fmt.Sprintf("%s open risk %.2f exceeds per-position maximum of %.2f",
				p.Ticker, *p.OpenRisk, r.config.MaxPositionRisk))
		}
	}
	if report.Unprotected > 0 {
		out = append(out, fmt.Sprintf("%d open position(s) have no stop", report.Unprotected))
	}
	return out
}

// CheckRiskLimits returns an error listing every breach in the report.
func (r *RiskManager) CheckRiskLimits(report *ExposureReport) error {
	if report == nil || len(report.Breaches) == 0 {
		return nil
	}
	return fmt.Errorf("risk limits breached: %s", strings.Join(report.Breaches, "; "))
}

// GetPositionSize returns the share count that risks riskAmount between entry
// and stop, rounded down to whole shares.
func (r *RiskManager) GetPositionSize(riskAmount, entryPrice, stopPrice float64) (float64, error) {
	perShare := math.Abs(entryPrice - stopPrice)
	if riskAmount <= 0 || entryPrice <= 0 || perShare == 0 {
		return 0, fmt.Errorf("position size needs a positive risk amount, an entry price and a stop away from entry")
	}
	size := decimal.NewFromFloat(riskAmount).Div(decimal.NewFromFloat(perShare)).Floor()
	if r.config.MaxPositionRisk > 0 {
		capped := decimal.NewFromFloat(r.config.MaxPositionRisk).Div(decimal.NewFromFloat(perShare)).Floor()
		size = decimal.Min(size, capped)
	}
	return size.InexactFloat64(), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
