package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/domain"
)

func tagged(id string, pnl float64, exitDay int, tags ...string) *domain.Position {
	p := closedTrade(id, pnl, exitDay)
	p.Tags = tags
	return p
}

func findGroup(t *testing.T, b *Breakdown, name string) GroupStats {
	t.Helper()
	for _, g := range b.Groups {
		if g.Group == name {
			return g
		}
	}
	t.Fatalf("group %q not found in %+v", name, b.Groups)
	return GroupStats{}
}

func TestGroupByTag(t *testing.T) {
	trades := []*domain.Position{
		tagged("1", 50, 0, "breakout"),
		tagged("2", -20, 1, "breakout"),
		tagged("3", 30, 2, "breakout", "earnings"),
		tagged("4", -10, 3),
	}

	b := GroupBy(trades, ByTag, GroupSort{})

	assert.Equal(t, ByTag, b.Dimension)
	assert.Equal(t, 4, b.TotalTrades)

	breakout := findGroup(t, b, "breakout")
	assert.Equal(t, 3, breakout.Count)
	assert.Equal(t, 60.0, breakout.TotalPnL)
	assert.Equal(t, 20.0, breakout.AvgPnL)
	assert.InDelta(t, 66.67, breakout.WinRate, 0.01)
	assert.Equal(t, 75.0, breakout.PercentageOfTotal)

	unknown := findGroup(t, b, domain.UnknownGroup)
	assert.Equal(t, 1, unknown.Count)
	assert.Equal(t, -10.0, unknown.TotalPnL)

	// Multi-tag trades are counted in every group they belong to.
	var pct float64
	for _, g := range b.Groups {
		pct += g.PercentageOfTotal
	}
	assert.Greater(t, pct, 100.0)

	assert.Equal(t, "breakout", b.Groups[0].Group, "default sort is count descending")
}

func TestGroupByMarket(t *testing.T) {
	uk := closedTrade("2", -40, 1)
	uk.Market = domain.MarketUK
	blank := closedTrade("3", 5, 2)
	blank.Market = ""
	trades := []*domain.Position{closedTrade("1", 100, 0), uk, blank, closedTrade("4", 20, 3)}

	b := GroupBy(trades, ByMarket, GroupSort{Key: GroupSortTotalPnL, Order: Ascending})

	require.Len(t, b.Groups, 3)
	assert.Equal(t, string(domain.MarketUK), b.Groups[0].Group)
	assert.Equal(t, domain.UnknownGroup, b.Groups[1].Group)
	assert.Equal(t, string(domain.MarketUS), b.Groups[2].Group)
	assert.Equal(t, 120.0, b.Groups[2].TotalPnL)
	assert.Equal(t, 50.0, b.Groups[2].PercentageOfTotal)

	var counted int
	for _, g := range b.Groups {
		counted += g.Count
	}
	assert.Equal(t, b.TotalTrades, counted, "single-valued dimensions partition the trades")
}

func TestGroupByExitReason(t *testing.T) {
	stop := closedTrade("1", -30, 0)
	stop.ExitReason = domain.ExitReasonStopLoss
	target := closedTrade("2", 80, 1)
	target.ExitReason = domain.ExitReasonTarget
	target2 := closedTrade("3", 40, 2)
	target2.ExitReason = domain.ExitReasonTarget
	none := closedTrade("4", 10, 3)

	b := GroupBy([]*domain.Position{stop, target, target2, none}, ByExitReason,
		GroupSort{Key: GroupSortWinRate, Order: Descending})

	require.Len(t, b.Groups, 3)
	assert.Equal(t, domain.ExitReasonTarget, b.Groups[0].Group)
	assert.Equal(t, 2, b.Groups[0].Count)
	assert.Equal(t, domain.ExitReasonStopLoss, b.Groups[2].Group)
	assert.Zero(t, b.Groups[2].WinRate)
	findGroup(t, b, domain.UnknownGroup)
}

func TestGroupByEmpty(t *testing.T) {
	b := GroupBy(nil, ByTag, GroupSort{})
	assert.Zero(t, b.TotalTrades)
	assert.NotNil(t, b.Groups)
	assert.Empty(t, b.Groups)
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in      string
		want    Dimension
		wantErr bool
	}{
		{in: "market", want: ByMarket},
		{in: "exit_reason", want: ByExitReason},
		{in: "reason", want: ByExitReason},
		{in: "tag", want: ByTag},
		{in: "tags", want: ByTag},
		{in: "sector", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDimension(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
