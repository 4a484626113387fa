package analytics

import (
	"fmt"
	"sort"

	"tradeJournal/internal/domain"
)

// Dimension is the categorical field trades are grouped by.
type Dimension string

const (
	ByMarket     Dimension = "market"
	ByExitReason Dimension = "exit_reason"
	ByTag        Dimension = "tag"
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case ByMarket, ByExitReason, ByTag:
		return Dimension(s), nil
	case "exit", "reason":
		return ByExitReason, nil
	case "tags":
		return ByTag, nil
	default:
		return "", fmt.Errorf("unknown breakdown dimension %q (want market, exit_reason or tag)", s)
	}
}

// GroupSortKey selects the ordering of a categorical breakdown.
type GroupSortKey string

const (
	GroupSortCount    GroupSortKey = "count"
	GroupSortWinRate  GroupSortKey = "winRate"
	GroupSortTotalPnL GroupSortKey = "totalPnl"
)

// GroupSort is the caller's ordering choice. The zero value sorts by count,
// descending.
type GroupSort struct {
	Key   GroupSortKey
	Order SortOrder
}

// GroupStats is the performance of one category.
type GroupStats struct {
	Group             string  `json:"group" yaml:"group"`
	Count             int     `json:"count" yaml:"count"`
	WinCount          int     `json:"win_count" yaml:"win_count"`
	WinRate           float64 `json:"win_rate" yaml:"win_rate"`
	TotalPnL          float64 `json:"total_pnl" yaml:"total_pnl"`
	AvgPnL            float64 `json:"avg_pnl" yaml:"avg_pnl"`
	PercentageOfTotal float64 `json:"percentage_of_total" yaml:"percentage_of_total"`
}

// Breakdown is a categorical aggregation of closed trades.
type Breakdown struct {
	Dimension   Dimension    `json:"dimension" yaml:"dimension"`
	TotalTrades int          `json:"total_trades" yaml:"total_trades"`
	Groups      []GroupStats `json:"groups" yaml:"groups"`
}

// GroupBy aggregates closed trades by the dimension. Missing values form the
// "unknown" group. For tags a trade joins every tag group it carries, so
// percentages may add up to more than 100.
func GroupBy(positions []*domain.Position, dim Dimension, order GroupSort) *Breakdown {
	closed := closedPositions(positions)
	index := make(map[string]int)
	groups := make([]GroupStats, 0)
	sums := make([]pnlSum, 0)

	add := func(key string, pnl float64) {
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupStats{Group: key})
			sums = append(sums, pnlSum{})
		}
		groups[i].Count++
		if pnl > 0 {
			groups[i].WinCount++
		}
		sums[i].add(pnl)
	}

	for _, p := range closed {
		pnl := p.RealizedPnL()
		for _, key := range groupKeys(p, dim) {
			add(key, pnl)
		}
	}

	for i := range groups {
		g := &groups[i]
		g.TotalPnL = sums[i].float()
		g.AvgPnL = sums[i].div(g.Count)
		g.WinRate = rate(g.WinCount, g.Count)
		g.PercentageOfTotal = rate(g.Count, len(closed))
	}

	sortGroups(groups, order)
	return &Breakdown{Dimension: dim, TotalTrades: len(closed), Groups: groups}
}

func groupKeys(p *domain.Position, dim Dimension) []string {
	switch dim {
	case ByTag:
		if tags := p.TagSet(); len(tags) > 0 {
			return tags
		}
		return []string{domain.UnknownGroup}
	case ByExitReason:
		return []string{p.ExitReasonLabel()}
	default:
		return []string{p.MarketLabel()}
	}
}

func sortGroups(groups []GroupStats, order GroupSort) {
	value := func(g GroupStats) float64 {
		switch order.Key {
		case GroupSortWinRate:
			return g.WinRate
		case GroupSortTotalPnL:
			return g.TotalPnL
		default:
			return float64(g.Count)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if order.Order == Ascending {
			return value(groups[i]) < value(groups[j])
		}
		return value(groups[i]) > value(groups[j])
	})
}
