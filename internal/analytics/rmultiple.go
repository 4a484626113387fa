package analytics

import (
	"math"
	"sort"

	"tradeJournal/internal/domain"
)

// MinRMultipleTrades is the number of trades with defined risk needed before
// the R-multiple distribution is reported.
const MinRMultipleTrades = 10

// RBucket is one fixed R-multiple range. Lower is inclusive, Upper exclusive;
// infinite bounds mark the open-ended tails.
type RBucket struct {
	Label string  `json:"label" yaml:"label"`
	Lower float64 `json:"-" yaml:"-"`
	Upper float64 `json:"-" yaml:"-"`
	Count int     `json:"count" yaml:"count"`
}

// RBucketRanges is the bucket layout shared by the analyzer and any legend.
var RBucketRanges = []RBucket{
	{Label: "< -2R", Lower: math.Inf(-1), Upper: -2},
	{Label: "-2R to -1R", Lower: -2, Upper: -1},
	{Label: "-1R to 0R", Lower: -1, Upper: 0},
	{Label: "0R to 1R", Lower: 0, Upper: 1},
	{Label: "1R to 2R", Lower: 1, Upper: 2},
	{Label: "2R to 3R", Lower: 2, Upper: 3},
	{Label: ">= 3R", Lower: 3, Upper: math.Inf(1)},
}

// RTrade identifies a trade by its R result.
type RTrade struct {
	ID        string  `json:"id" yaml:"id"`
	Ticker    string  `json:"ticker" yaml:"ticker"`
	RMultiple float64 `json:"r_multiple" yaml:"r_multiple"`
}

// RMultipleReport is the R-multiple distribution. When Outcome is
// insufficient_data only Outcome, Qualifying and Required are meaningful.
type RMultipleReport struct {
	Outcome    Outcome   `json:"outcome" yaml:"outcome"`
	Qualifying int       `json:"qualifying_trades" yaml:"qualifying_trades"`
	Required   int       `json:"required_trades" yaml:"required_trades"`
	Buckets    []RBucket `json:"buckets,omitempty" yaml:"buckets,omitempty"`
	AvgR       float64   `json:"avg_r" yaml:"avg_r"`
	AvgWinnerR float64   `json:"avg_winner_r" yaml:"avg_winner_r"`
	AvgLoserR  float64   `json:"avg_loser_r" yaml:"avg_loser_r"`
	WinRate    float64   `json:"win_rate" yaml:"win_rate"`
	BestTrade  *RTrade   `json:"best_trade,omitempty" yaml:"best_trade,omitempty"`
	WorstTrade *RTrade   `json:"worst_trade,omitempty" yaml:"worst_trade,omitempty"`
}

// AnalyzeRMultiples buckets closed trades with defined risk by R-multiple.
// Trades without a usable stop are left out entirely.
func AnalyzeRMultiples(positions []*domain.Position) *RMultipleReport {
	trades := qualifyingRTrades(closedPositions(positions))
	report := &RMultipleReport{
		Outcome:    OutcomeInsufficientData,
		Qualifying: len(trades),
		Required:   MinRMultipleTrades,
	}
	if len(trades) < MinRMultipleTrades {
		return report
	}
	report.Outcome = OutcomeOK

	report.Buckets = make([]RBucket, len(RBucketRanges))
	copy(report.Buckets, RBucketRanges)

	var all, winners, losers []float64
	for i, t := range trades {
		r := t.RMultiple
		report.Buckets[bucketIndex(r)].Count++
		all = append(all, r)
		if r > 0 {
			winners = append(winners, r)
		} else {
			losers = append(losers, r)
		}
		if i == 0 || r > report.BestTrade.RMultiple {
			report.BestTrade = &trades[i]
		}
		if i == 0 || r < report.WorstTrade.RMultiple {
			report.WorstTrade = &trades[i]
		}
	}

	report.AvgR = mean(all)
	report.AvgWinnerR = mean(winners)
	report.AvgLoserR = mean(losers)
	report.WinRate = rate(len(winners), len(all))
	return report
}

func qualifyingRTrades(closed []*domain.Position) []RTrade {
	out := make([]RTrade, 0, len(closed))
	for _, p := range closed {
		if r, ok := RMultiple(p); ok {
			out = append(out, RTrade{ID: p.ID, Ticker: p.Ticker, RMultiple: r})
		}
	}
	return out
}

func bucketIndex(r float64) int {
	for i, b := range RBucketRanges {
		if r >= b.Lower && r < b.Upper {
			return i
		}
	}
	// r is finite, so only the open upper tail can be missed by rounding.
	return len(RBucketRanges) - 1
}

// TagSortKey selects the ordering of a tag R breakdown.
type TagSortKey string

const (
	TagSortAvgR    TagSortKey = "avgR"
	TagSortCount   TagSortKey = "count"
	TagSortWinRate TagSortKey = "winRate"
)

// TagRStats is the R performance of every trade carrying a tag.
type TagRStats struct {
	Tag      string  `json:"tag" yaml:"tag"`
	Count    int     `json:"count" yaml:"count"`
	TotalR   float64 `json:"total_r" yaml:"total_r"`
	WinCount int     `json:"win_count" yaml:"win_count"`
	AvgR     float64 `json:"avg_r" yaml:"avg_r"`
	WinRate  float64 `json:"win_rate" yaml:"win_rate"`
}

// TagRBreakdown accumulates R statistics per tag. A trade with several tags
// counts once for each of them. Equal sort keys keep first-seen tag order.
func TagRBreakdown(positions []*domain.Position, key TagSortKey, order SortOrder) []TagRStats {
	index := make(map[string]int)
	stats := make([]TagRStats, 0)

	for _, p := range closedPositions(positions) {
		r, ok := RMultiple(p)
		if !ok {
			continue
		}
		for _, tag := range p.TagSet() {
			i, seen := index[tag]
			if !seen {
				i = len(stats)
				index[tag] = i
				stats = append(stats, TagRStats{Tag: tag})
			}
			s := &stats[i]
			s.Count++
			s.TotalR += r
			if r > 0 {
				s.WinCount++
			}
		}
	}

	for i := range stats {
		s := &stats[i]
		s.AvgR = s.TotalR / float64(s.Count)
		s.WinRate = rate(s.WinCount, s.Count)
	}

	value := func(s TagRStats) float64 {
		switch key {
		case TagSortCount:
			return float64(s.Count)
		case TagSortWinRate:
			return s.WinRate
		default:
			return s.AvgR
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if order == Ascending {
			return value(stats[i]) < value(stats[j])
		}
		return value(stats[i]) > value(stats[j])
	})
	return stats
}
