package analytics

import (
	"fmt"
	"time"

	"tradeJournal/internal/domain"
)

var baseDay = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC) // a Monday

func day(n int) time.Time {
	return baseDay.AddDate(0, 0, n)
}

// closedTrade builds a closed position exited n days after baseDay.
func closedTrade(id string, pnl float64, exitDay int) *domain.Position {
	return &domain.Position{
		ID:         id,
		Ticker:     "TCK" + id,
		Market:     domain.MarketUS,
		Status:     domain.StatusClosed,
		EntryDate:  day(exitDay - 2),
		ExitDate:   domain.Date(day(exitDay)),
		EntryPrice: 100,
		ExitPrice:  domain.Float(100 + pnl/10),
		Shares:     10,
		PnL:        domain.Float(pnl),
	}
}

// riskTrade builds a closed position with entry 100 and the given stop and exit.
func riskTrade(id string, stop, exit float64, tags ...string) *domain.Position {
	return &domain.Position{
		ID:         id,
		Ticker:     "R" + id,
		Market:     domain.MarketUK,
		Status:     domain.StatusClosed,
		EntryDate:  day(0),
		ExitDate:   domain.Date(day(3)),
		EntryPrice: 100,
		StopPrice:  domain.Float(stop),
		ExitPrice:  domain.Float(exit),
		Shares:     1,
		PnL:        domain.Float(exit - 100),
		Tags:       tags,
	}
}

// riskTrades returns n qualifying trades each with 1R of risk and the given R result.
func riskTrades(rs ...float64) []*domain.Position {
	out := make([]*domain.Position, 0, len(rs))
	for i, r := range rs {
		out = append(out, riskTrade(fmt.Sprint(i+1), 90, 100+r*10))
	}
	return out
}
