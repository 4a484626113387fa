package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/domain"
)

func TestRMultiple(t *testing.T) {
	noStop := riskTrade("a", 0, 120)
	noStop.StopPrice = nil
	noExit := riskTrade("b", 90, 0)
	noExit.ExitPrice = nil
	zeroEntry := riskTrade("c", 90, 120)
	zeroEntry.EntryPrice = 0

	tests := []struct {
		name   string
		pos    *domain.Position
		want   float64
		wantOK bool
	}{
		{name: "two R winner", pos: riskTrade("1", 90, 120), want: 2, wantOK: true},
		{name: "full stop out", pos: riskTrade("2", 90, 90), want: -1, wantOK: true},
		{name: "stop equal to entry", pos: riskTrade("3", 100, 120)},
		{name: "no stop", pos: noStop},
		{name: "no exit", pos: noExit},
		{name: "no entry", pos: zeroEntry},
		{name: "nil", pos: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RMultiple(tt.pos)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		r    float64
		want string
	}{
		{-5, "< -2R"},
		{-2, "-2R to -1R"},
		{-1.5, "-2R to -1R"},
		{-1, "-1R to 0R"},
		{-0.01, "-1R to 0R"},
		{0, "0R to 1R"},
		{1, "1R to 2R"},
		{2, "2R to 3R"},
		{2.99, "2R to 3R"},
		{3, ">= 3R"},
		{42, ">= 3R"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RBucketRanges[bucketIndex(tt.r)].Label, "r=%v", tt.r)
	}
}

func TestRMultipleDecimalPricesHitBucketBoundaries(t *testing.T) {
	tests := []struct {
		entry, stop, exit float64
		want              float64
		bucket            string
	}{
		{entry: 1.10, stop: 1.00, exit: 1.30, want: 2, bucket: "2R to 3R"},
		{entry: 2.30, stop: 2.20, exit: 2.60, want: 3, bucket: ">= 3R"},
		{entry: 0.7, stop: 0.6, exit: 0.8, want: 1, bucket: "1R to 2R"},
		{entry: 1.10, stop: 1.00, exit: 0.90, want: -2, bucket: "-2R to -1R"},
		{entry: 3.3, stop: 3.2, exit: 3.2, want: -1, bucket: "-1R to 0R"},
	}
	for _, tt := range tests {
		p := &domain.Position{
			ID: "p", Status: domain.StatusClosed,
			EntryPrice: tt.entry, StopPrice: domain.Float(tt.stop), ExitPrice: domain.Float(tt.exit),
		}
		r, ok := RMultiple(p)
		require.True(t, ok)
		assert.Equal(t, tt.want, r, "entry=%v stop=%v exit=%v", tt.entry, tt.stop, tt.exit)
		assert.Equal(t, tt.bucket, RBucketRanges[bucketIndex(r)].Label, "entry=%v stop=%v exit=%v", tt.entry, tt.stop, tt.exit)
	}
}

func TestAnalyzeRMultiplesThreshold(t *testing.T) {
	trades := riskTrades(1, -1, 2, 0.5, -0.5, 3, 1, -1, 0)
	require.Len(t, trades, MinRMultipleTrades-1)

	report := AnalyzeRMultiples(trades)
	assert.Equal(t, OutcomeInsufficientData, report.Outcome)
	assert.Equal(t, 9, report.Qualifying)
	assert.Equal(t, MinRMultipleTrades, report.Required)
	assert.Empty(t, report.Buckets)
	assert.Nil(t, report.BestTrade)

	// Trades without a stop never count towards the threshold.
	unprotected := riskTrade("x", 0, 150)
	unprotected.StopPrice = nil
	report = AnalyzeRMultiples(append(trades, unprotected))
	assert.Equal(t, OutcomeInsufficientData, report.Outcome)

	// The tenth qualifying trade is enough.
	trades = append(trades, riskTrade("10", 90, 120))
	report = AnalyzeRMultiples(trades)
	assert.Equal(t, OutcomeOK, report.Outcome)
	assert.Equal(t, 10, report.Qualifying)
	assert.Len(t, report.Buckets, len(RBucketRanges))
}

func TestAnalyzeRMultiples(t *testing.T) {
	trades := riskTrades(-1, -1, -0.5, 0, 0.5, 1, 1.5, 2, 3, 4.5)
	open := riskTrade("open", 90, 150)
	open.Status = domain.StatusOpen
	trades = append(trades, open)

	report := AnalyzeRMultiples(trades)

	require.Equal(t, OutcomeOK, report.Outcome)
	assert.Equal(t, 10, report.Qualifying)

	counts := map[string]int{}
	total := 0
	for _, b := range report.Buckets {
		counts[b.Label] = b.Count
		total += b.Count
	}
	assert.Equal(t, report.Qualifying, total)
	assert.Equal(t, map[string]int{
		"< -2R":      0,
		"-2R to -1R": 2,
		"-1R to 0R":  1,
		"0R to 1R":   2,
		"1R to 2R":   2,
		"2R to 3R":   1,
		">= 3R":      2,
	}, counts)

	assert.InDelta(t, 1.0, report.AvgR, 1e-9)
	assert.InDelta(t, 12.5/6, report.AvgWinnerR, 1e-9)
	assert.InDelta(t, -0.625, report.AvgLoserR, 1e-9)
	assert.InDelta(t, 60.0, report.WinRate, 1e-9)

	require.NotNil(t, report.BestTrade)
	assert.Equal(t, "10", report.BestTrade.ID)
	assert.InDelta(t, 4.5, report.BestTrade.RMultiple, 1e-9)
	require.NotNil(t, report.WorstTrade)
	assert.Equal(t, "1", report.WorstTrade.ID)

	// The shared layout is not mutated by the analysis.
	for _, b := range RBucketRanges {
		assert.Zero(t, b.Count)
	}
}

func TestAnalyzeRMultiplesScenario(t *testing.T) {
	trades := riskTrades(0, 0, 0, 0, 0, 0, 0, 0, 0)
	trades = append(trades, riskTrade("c", 90, 120))

	report := AnalyzeRMultiples(trades)

	require.Equal(t, OutcomeOK, report.Outcome)
	for _, b := range report.Buckets {
		if b.Label == "2R to 3R" {
			assert.Equal(t, 1, b.Count)
		}
	}
	assert.InDelta(t, 2.0, report.BestTrade.RMultiple, 1e-9)
}

func TestTagRBreakdown(t *testing.T) {
	noStop := riskTrade("5", 0, 200, "breakout")
	noStop.StopPrice = nil

	trades := []*domain.Position{
		riskTrade("1", 90, 120, "breakout", "momentum", "breakout"),
		riskTrade("2", 90, 95, "breakout"),
		riskTrade("3", 90, 110, "pullback"),
		riskTrade("4", 90, 130),
		noStop,
	}

	t.Run("avgR descending", func(t *testing.T) {
		stats := TagRBreakdown(trades, TagSortAvgR, Descending)
		require.Len(t, stats, 3)
		assert.Equal(t, []string{"momentum", "pullback", "breakout"}, tagNames(stats))

		breakout := stats[2]
		assert.Equal(t, 2, breakout.Count)
		assert.InDelta(t, 1.5, breakout.TotalR, 1e-9)
		assert.InDelta(t, 0.75, breakout.AvgR, 1e-9)
		assert.Equal(t, 1, breakout.WinCount)
		assert.InDelta(t, 50.0, breakout.WinRate, 1e-9)
	})

	t.Run("count keeps first seen order on ties", func(t *testing.T) {
		stats := TagRBreakdown(trades, TagSortCount, Descending)
		assert.Equal(t, []string{"breakout", "momentum", "pullback"}, tagNames(stats))
	})

	t.Run("ascending", func(t *testing.T) {
		stats := TagRBreakdown(trades, TagSortAvgR, Ascending)
		assert.Equal(t, []string{"breakout", "pullback", "momentum"}, tagNames(stats))
	})

	t.Run("empty", func(t *testing.T) {
		stats := TagRBreakdown(nil, TagSortWinRate, Descending)
		assert.NotNil(t, stats)
		assert.Empty(t, stats)
	})
}

func tagNames(stats []TagRStats) []string {
	names := make([]string, 0, len(stats))
	for _, s := range stats {
		names = append(names, s.Tag)
	}
	return names
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, Ascending, ParseSortOrder("asc"))
	assert.Equal(t, Ascending, ParseSortOrder("ascending"))
	assert.Equal(t, Descending, ParseSortOrder("desc"))
	assert.Equal(t, Descending, ParseSortOrder(""))
}
