package analytics

import (
	"fmt"
	"time"

	"tradeJournal/internal/domain"
)

// tally accumulates one bucket.
type tally struct {
	trades int
	wins   int
	pnl    pnlSum
}

func (t *tally) add(pnl float64) {
	t.trades++
	if pnl > 0 {
		t.wins++
	}
	t.pnl.add(pnl)
}

// MonthBucket is the realized result of trades exited in one calendar month.
type MonthBucket struct {
	Month         string  `json:"month" yaml:"month"` // YYYY-MM
	Trades        int     `json:"trades" yaml:"trades"`
	PnL           float64 `json:"pnl" yaml:"pnl"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`
	CumulativePnL float64 `json:"cumulative_pnl" yaml:"cumulative_pnl"`
}

// MonthlyReport lists months in chronological order, gaps included.
type MonthlyReport struct {
	Months  []MonthBucket `json:"months" yaml:"months"`
	Skipped int           `json:"skipped" yaml:"skipped"`
}

const monthLayout = "2006-01"

// MonthlyReturns buckets closed trades by exit month. A bounded period fixes
// the month range and trades outside it are counted as skipped; otherwise the
// range runs from the first to the last exit month. Months without trades are
// emitted with zero values.
func MonthlyReturns(positions []*domain.Position, period domain.Period) *MonthlyReport {
	report := &MonthlyReport{Months: []MonthBucket{}}
	ordered := byExitDate(closedPositions(positions))
	report.Skipped = countClosed(positions) - len(ordered)

	var first, last time.Time
	if period.Bounded() {
		first, last = monthStart(period.Start), monthStart(period.End)
	} else if len(ordered) > 0 {
		first, last = monthStart(ordered[0].ExitTime()), monthStart(ordered[len(ordered)-1].ExitTime())
	} else {
		return report
	}

	tallies := make(map[string]*tally)
	for _, p := range ordered {
		m := monthStart(p.ExitTime())
		if m.Before(first) || m.After(last) {
			report.Skipped++
			continue
		}
		key := m.Format(monthLayout)
		if tallies[key] == nil {
			tallies[key] = &tally{}
		}
		tallies[key].add(p.RealizedPnL())
	}

	var cumulative pnlSum
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		bucket := MonthBucket{Month: key}
		if t := tallies[key]; t != nil {
			bucket.Trades = t.trades
			bucket.PnL = t.pnl.float()
			bucket.WinRate = rate(t.wins, t.trades)
			cumulative.d = cumulative.d.Add(t.pnl.d)
		}
		bucket.CumulativePnL = cumulative.float()
		report.Months = append(report.Months, bucket)
	}
	return report
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func countClosed(positions []*domain.Position) int {
	return len(closedPositions(positions))
}

// DayBucket is the realized result of trades exited on one weekday.
type DayBucket struct {
	Day     string  `json:"day" yaml:"day"`
	Trades  int     `json:"trades" yaml:"trades"`
	PnL     float64 `json:"pnl" yaml:"pnl"`
	AvgPnL  float64 `json:"avg_pnl" yaml:"avg_pnl"`
	WinRate float64 `json:"win_rate" yaml:"win_rate"`
}

func (t *tally) dayBucket(day string) DayBucket {
	return DayBucket{
		Day:     day,
		Trades:  t.trades,
		PnL:     t.pnl.float(),
		AvgPnL:  t.pnl.div(t.trades),
		WinRate: rate(t.wins, t.trades),
	}
}

// WeekdayReport always lists Monday to Friday. Weekend exits are a data
// quality problem: they are reported in Weekend and flagged in Warnings.
type WeekdayReport struct {
	Days     []DayBucket `json:"days" yaml:"days"`
	Weekend  DayBucket   `json:"weekend" yaml:"weekend"`
	Skipped  int         `json:"skipped" yaml:"skipped"`
	Warnings []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

var tradingDays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// DayOfWeekPerformance buckets closed trades by exit weekday.
func DayOfWeekPerformance(positions []*domain.Position) *WeekdayReport {
	report := &WeekdayReport{}
	var days [7]tally
	var weekendIDs []string

	for _, p := range closedPositions(positions) {
		if !p.HasExitDate() {
			report.Skipped++
			continue
		}
		wd := p.ExitTime().Weekday()
		days[wd].add(p.RealizedPnL())
		if wd == time.Saturday || wd == time.Sunday {
			weekendIDs = append(weekendIDs, p.ID)
		}
	}

	for _, wd := range tradingDays {
		report.Days = append(report.Days, days[wd].dayBucket(wd.String()))
	}

	var weekend tally
	weekend.trades = days[time.Saturday].trades + days[time.Sunday].trades
	weekend.wins = days[time.Saturday].wins + days[time.Sunday].wins
	weekend.pnl.d = days[time.Saturday].pnl.d.Add(days[time.Sunday].pnl.d)
	report.Weekend = weekend.dayBucket("Weekend")

	if len(weekendIDs) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d trade(s) have a weekend exit date: %v", len(weekendIDs), weekendIDs))
	}
	return report
}

// HoldingRange is an inclusive days-held range. MaxDays < 0 means open ended.
type HoldingRange struct {
	Label   string `json:"label" yaml:"label"`
	MinDays int    `json:"min_days" yaml:"min_days"`
	MaxDays int    `json:"max_days" yaml:"max_days"`
}

// HoldingBuckets is the holding-period layout shared by the bucketing and
// any legend.
var HoldingBuckets = []HoldingRange{
	{Label: "0-1 days", MinDays: 0, MaxDays: 1},
	{Label: "2-5 days", MinDays: 2, MaxDays: 5},
	{Label: "6-15 days", MinDays: 6, MaxDays: 15},
	{Label: "16-30 days", MinDays: 16, MaxDays: 30},
	{Label: "31+ days", MinDays: 31, MaxDays: -1},
}

func (r HoldingRange) contains(days int) bool {
	return days >= r.MinDays && (r.MaxDays < 0 || days <= r.MaxDays)
}

// HoldingBucket is the realized result of trades held for a range of days.
type HoldingBucket struct {
	HoldingRange `yaml:",inline"`
	Trades       int     `json:"trades" yaml:"trades"`
	PnL          float64 `json:"pnl" yaml:"pnl"`
	AvgPnL       float64 `json:"avg_pnl" yaml:"avg_pnl"`
	WinRate      float64 `json:"win_rate" yaml:"win_rate"`
}

// HoldingReport lists every holding bucket, empty ones included.
type HoldingReport struct {
	Buckets []HoldingBucket `json:"buckets" yaml:"buckets"`
	Skipped int             `json:"skipped" yaml:"skipped"`
}

// HoldingPeriodPerformance buckets closed trades by days held.
func HoldingPeriodPerformance(positions []*domain.Position) *HoldingReport {
	report := &HoldingReport{}
	tallies := make([]tally, len(HoldingBuckets))

	for _, p := range closedPositions(positions) {
		days, ok := DaysHeld(p)
		if !ok {
			report.Skipped++
			continue
		}
		for i, r := range HoldingBuckets {
			if r.contains(days) {
				tallies[i].add(p.RealizedPnL())
				break
			}
		}
	}

	for i, r := range HoldingBuckets {
		t := tallies[i]
		report.Buckets = append(report.Buckets, HoldingBucket{
			HoldingRange: r,
			Trades:       t.trades,
			PnL:          t.pnl.float(),
			AvgPnL:       t.pnl.div(t.trades),
			WinRate:      rate(t.wins, t.trades),
		})
	}
	return report
}
