package analytics

import (
	"time"

	"tradeJournal/internal/domain"
)

// SummaryMetrics holds the headline statistics for a set of closed trades.
// Every field has a defined fallback for empty or degenerate input.
type SummaryMetrics struct {
	// Counts
	TotalTrades     int `json:"total_trades" yaml:"total_trades"`
	WinningTrades   int `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades    int `json:"losing_trades" yaml:"losing_trades"`
	BreakevenTrades int `json:"breakeven_trades" yaml:"breakeven_trades"`

	// Profit and loss
	TotalPnL    float64 `json:"total_pnl" yaml:"total_pnl"`
	GrossProfit float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss" yaml:"gross_loss"`
	TotalFees   float64 `json:"total_fees" yaml:"total_fees"`
	BestTrade   float64 `json:"best_trade" yaml:"best_trade"`
	WorstTrade  float64 `json:"worst_trade" yaml:"worst_trade"`

	// Ratios
	WinRate           float64 `json:"win_rate" yaml:"win_rate"`
	// ProfitFactor is Infinity with winners and no losers, and 0 whenever there are no winners, losers included.
	ProfitFactor      Metric  `json:"profit_factor" yaml:"profit_factor"`
	AverageWin        float64 `json:"avg_win" yaml:"avg_win"`
	AverageLoss       float64 `json:"avg_loss" yaml:"avg_loss"`
	Expectancy        float64 `json:"expectancy" yaml:"expectancy"`
	RiskRewardRatio   float64 `json:"risk_reward_ratio" yaml:"risk_reward_ratio"`
	SharpeRatio       Metric  `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	RecoveryFactor    float64 `json:"recovery_factor" yaml:"recovery_factor"`
	CapitalEfficiency Metric  `json:"capital_efficiency" yaml:"capital_efficiency"`

	// Drawdown and streaks
	MaxDrawdown Drawdown `json:"max_drawdown" yaml:"max_drawdown"`
	WinStreak   int      `json:"win_streak" yaml:"win_streak"`
	LossStreak  int      `json:"loss_streak" yaml:"loss_streak"`

	// Time
	AvgHoldWinners Metric  `json:"avg_hold_winners" yaml:"avg_hold_winners"`
	AvgHoldLosers  Metric  `json:"avg_hold_losers" yaml:"avg_hold_losers"`
	TradeFrequency float64 `json:"trade_frequency" yaml:"trade_frequency"`
}

// Drawdown is the deepest fall of cumulative P&L below its running peak.
// Amount is a positive magnitude; Date is the trough.
type Drawdown struct {
	Amount  float64    `json:"amount" yaml:"amount"`
	Percent float64    `json:"percent" yaml:"percent"`
	Peak    float64    `json:"peak" yaml:"peak"`
	Date    *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
}

// CalculateSummary computes the summary metrics over the closed positions in
// the input. Open positions are ignored. The period only feeds trade
// frequency; filtering by period is the caller's job.
func CalculateSummary(positions []*domain.Position, period domain.Period) *SummaryMetrics {
	metrics := &SummaryMetrics{
		ProfitFactor:      ValueOf(0),
		SharpeRatio:       NotAvailable(),
		CapitalEfficiency: NotAvailable(),
		AvgHoldWinners:    NotAvailable(),
		AvgHoldLosers:     NotAvailable(),
	}

	closed := closedPositions(positions)
	if len(closed) == 0 {
		return metrics
	}
	metrics.TotalTrades = len(closed)

	var total, gross, loss, fees pnlSum
	var capital float64
	var returns []float64
	var holdWin, holdLoss []float64

	for i, p := range closed {
		pnl := p.RealizedPnL()
		total.add(pnl)
		fees.add(p.Fees)
		capital += p.CapitalDeployed()

		if i == 0 || pnl > metrics.BestTrade {
			metrics.BestTrade = pnl
		}
		if i == 0 || pnl < metrics.WorstTrade {
			metrics.WorstTrade = pnl
		}

		days, hasDays := DaysHeld(p)
		switch {
		case pnl > 0:
			metrics.WinningTrades++
			gross.add(pnl)
			if hasDays {
				holdWin = append(holdWin, float64(days))
			}
		case pnl < 0:
			metrics.LosingTrades++
			loss.add(-pnl)
			if hasDays {
				holdLoss = append(holdLoss, float64(days))
			}
		default:
			metrics.BreakevenTrades++
		}

		if r, ok := p.ReturnPercent(); ok {
			returns = append(returns, r)
		}
	}

	metrics.TotalPnL = total.float()
	metrics.GrossProfit = gross.float()
	metrics.GrossLoss = loss.float()
	metrics.TotalFees = fees.float()
	metrics.WinRate = rate(metrics.WinningTrades, metrics.TotalTrades)
	metrics.AverageWin = gross.div(metrics.WinningTrades)
	metrics.AverageLoss = loss.div(metrics.LosingTrades)
	metrics.Expectancy = total.div(metrics.TotalTrades)

	switch {
	case metrics.GrossLoss > 0:
		metrics.ProfitFactor = ValueOf(metrics.GrossProfit / metrics.GrossLoss)
	case metrics.GrossProfit > 0:
		metrics.ProfitFactor = Infinite()
	}

	if metrics.AverageLoss != 0 {
		metrics.RiskRewardRatio = metrics.AverageWin / metrics.AverageLoss
	}

	metrics.SharpeRatio = sharpe(returns)

	ordered := byExitDate(closed)
	metrics.WinStreak, metrics.LossStreak = streaks(ordered)
	metrics.MaxDrawdown = maxDrawdown(ordered)
	if metrics.MaxDrawdown.Amount > 0 {
		metrics.RecoveryFactor = metrics.TotalPnL / metrics.MaxDrawdown.Amount
	}

	if len(holdWin) > 0 {
		metrics.AvgHoldWinners = ValueOf(mean(holdWin))
	}
	if len(holdLoss) > 0 {
		metrics.AvgHoldLosers = ValueOf(mean(holdLoss))
	}

	metrics.TradeFrequency = float64(metrics.TotalTrades) / spannedWeeks(period, ordered)

	if capital > 0 {
		metrics.CapitalEfficiency = ValueOf(metrics.TotalPnL / capital * 100)
	}

	return metrics
}

// sharpe is mean / sample stddev of per-trade percentage returns. No
// risk-free rate and no annualisation.
func sharpe(returns []float64) Metric {
	if len(returns) < 2 {
		return NotAvailable()
	}
	sd := sampleStdDev(returns)
	if sd == 0 {
		return NotAvailable()
	}
	return ValueOf(mean(returns) / sd)
}

// streaks returns the longest runs of pnl > 0 and pnl <= 0. Breakeven trades
// extend a losing run.
func streaks(ordered []*domain.Position) (win, loss int) {
	var curWin, curLoss int
	for _, p := range ordered {
		if p.RealizedPnL() > 0 {
			curWin++
			curLoss = 0
		} else {
			curLoss++
			curWin = 0
		}
		if curWin > win {
			win = curWin
		}
		if curLoss > loss {
			loss = curLoss
		}
	}
	return win, loss
}

func maxDrawdown(ordered []*domain.Position) Drawdown {
	var dd Drawdown
	var equity pnlSum
	var peak, deepest float64

	for _, p := range ordered {
		equity.add(p.RealizedPnL())
		e := equity.float()
		if e > peak {
			peak = e
		}
		if gap := e - peak; gap < deepest {
			deepest = gap
			dd.Amount = -gap
			dd.Peak = peak
			dd.Date = domain.Date(p.ExitTime())
		}
	}

	if dd.Peak > 0 {
		dd.Percent = dd.Amount / dd.Peak * 100
	}
	return dd
}

// spannedWeeks uses the period when it is bounded, otherwise the span between
// the first and last exit. Never less than one week.
func spannedWeeks(period domain.Period, ordered []*domain.Position) float64 {
	weeks := period.Weeks()
	if weeks == 0 && len(ordered) > 1 {
		span := ordered[len(ordered)-1].ExitTime().Sub(ordered[0].ExitTime())
		weeks = span.Hours() / (24 * 7)
	}
	if weeks < 1 {
		weeks = 1
	}
	return weeks
}
