package domain

import (
	"math"
	"strings"
	"time"
)

// Position is a single journal entry: an open holding or a closed trade.
// Optional values are pointers; the accessor methods below are the only place
// their absence is resolved.
type Position struct {
	ID           string         `json:"id" yaml:"id"`
	Ticker       string         `json:"ticker" yaml:"ticker"`
	Market       Market         `json:"market" yaml:"market"`
	Status       PositionStatus `json:"status" yaml:"status"`
	EntryDate    time.Time      `json:"entry_date" yaml:"entry_date"`
	ExitDate     *time.Time     `json:"exit_date,omitempty" yaml:"exit_date,omitempty"`
	EntryPrice   float64        `json:"entry_price" yaml:"entry_price"`
	ExitPrice    *float64       `json:"exit_price,omitempty" yaml:"exit_price,omitempty"`
	CurrentPrice *float64       `json:"current_price,omitempty" yaml:"current_price,omitempty"`
	StopPrice    *float64       `json:"stop_price,omitempty" yaml:"stop_price,omitempty"`
	Shares       float64        `json:"shares" yaml:"shares"`
	PnL          *float64       `json:"pnl,omitempty" yaml:"pnl,omitempty"`
	PnLPercent   *float64       `json:"pnl_percent,omitempty" yaml:"pnl_percent,omitempty"`
	Fees         float64        `json:"fees" yaml:"fees"`
	ExitReason   string         `json:"exit_reason,omitempty" yaml:"exit_reason,omitempty"`
	Tags         []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	EntryNote    string         `json:"entry_note,omitempty" yaml:"entry_note,omitempty"`
	ExitNote     string         `json:"exit_note,omitempty" yaml:"exit_note,omitempty"`
}

// Float returns a pointer to v. Handy for building records in code and tests.
func Float(v float64) *float64 {
	return &v
}

// Date returns a pointer to t.
func Date(t time.Time) *time.Time {
	return &t
}

// IsOpen checks if the position status is open.
func (p *Position) IsOpen() bool {
	return p.Status == StatusOpen
}

// IsClosed checks if the position status is closed.
func (p *Position) IsClosed() bool {
	return p.Status == StatusClosed
}

// RealizedPnL returns the recorded P&L, or 0 when it is missing or not a number.
func (p *Position) RealizedPnL() float64 {
	return finiteOrZero(p.PnL)
}

// HasExitDate reports whether the position carries a usable exit date.
func (p *Position) HasExitDate() bool {
	return p.ExitDate != nil && !p.ExitDate.IsZero()
}

// ExitTime returns the exit date or the zero time.
func (p *Position) ExitTime() time.Time {
	if !p.HasExitDate() {
		return time.Time{}
	}
	return *p.ExitDate
}

// ReturnPercent returns the trade's percentage return. The recorded
// pnl_percent wins; otherwise it is derived from entry and exit prices.
func (p *Position) ReturnPercent() (float64, bool) {
	if p.PnLPercent != nil && isFinite(*p.PnLPercent) {
		return *p.PnLPercent, true
	}
	if p.EntryPrice <= 0 || p.ExitPrice == nil || !isFinite(*p.ExitPrice) {
		return 0, false
	}
	return (*p.ExitPrice - p.EntryPrice) / p.EntryPrice * 100, true
}

// CapitalDeployed is the cost basis of the position (entry price × shares).
func (p *Position) CapitalDeployed() float64 {
	if p.EntryPrice <= 0 || p.Shares <= 0 {
		return 0
	}
	return p.EntryPrice * p.Shares
}

// MarketLabel returns the market as a grouping key.
func (p *Position) MarketLabel() string {
	if strings.TrimSpace(string(p.Market)) == "" {
		return UnknownGroup
	}
	return string(p.Market)
}

// ExitReasonLabel returns the exit reason as a grouping key.
func (p *Position) ExitReasonLabel() string {
	if r := strings.TrimSpace(p.ExitReason); r != "" {
		return r
	}
	return UnknownGroup
}

// TagSet returns the position's tags trimmed, without blanks and without
// duplicates, in their recorded order.
func (p *Position) TagSet() []string {
	if len(p.Tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(p.Tags))
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func finiteOrZero(v *float64) float64 {
	if v == nil || !isFinite(*v) {
		return 0
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
