package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/risk"
)

// Format is the rendering of a command's result.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func parseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// write renders v in the configured format. Table output falls back to JSON
// for values without a table layout.
func (e *env) write(w io.Writer, v interface{}) error {
	format, err := parseFormat(e.cfg.OutputFormat)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if !renderTable(tw, e.cfg.BaseCurrency, v) {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		}
		return tw.Flush()
	}
}

func renderTable(w io.Writer, currency string, v interface{}) bool {
	switch r := v.(type) {
	case *analytics.SummaryMetrics:
		summaryTable(w, currency, r)
	case *analytics.RMultipleReport:
		rMultipleTable(w, r)
	case []analytics.TagRStats:
		tagRTable(w, r)
	case *analytics.Breakdown:
		breakdownTable(w, r)
	case *analytics.UnderwaterCurve:
		underwaterTable(w, r)
	case *app.CalendarReport:
		monthlyTable(w, r.Monthly)
		fmt.Fprintln(w)
		weekdayTable(w, r.Weekday)
		fmt.Fprintln(w)
		holdingTable(w, r.Holding)
	case *risk.ExposureReport:
		exposureTable(w, r)
	case []*domain.Position:
		positionsTable(w, r)
	case *domain.Position:
		positionsTable(w, []*domain.Position{r})
	case *domain.Layout:
		layoutTable(w, r)
	case *app.ImportReport:
		importTable(w, r)
	case *app.Dashboard:
		dashboardTable(w, r)
	default:
		return false
	}
	return true
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func optDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func summaryTable(w io.Writer, currency string, s *analytics.SummaryMetrics) {
	rows := [][2]string{
		{"Total trades", strconv.Itoa(s.TotalTrades)},
		{"Winners / losers / breakeven", fmt.Sprintf("%d / %d / %d", s.WinningTrades, s.LosingTrades, s.BreakevenTrades)},
		{"Total P&L (" + currency + ")", money(s.TotalPnL)},
		{"Gross profit", money(s.GrossProfit)},
		{"Gross loss", money(s.GrossLoss)},
		{"Fees", money(s.TotalFees)},
		{"Best / worst trade", money(s.BestTrade) + " / " + money(s.WorstTrade)},
		{"Win rate", pct(s.WinRate)},
		{"Profit factor", s.ProfitFactor.String()},
		{"Average win / loss", money(s.AverageWin) + " / " + money(s.AverageLoss)},
		{"Expectancy", money(s.Expectancy)},
		{"Risk/reward", money(s.RiskRewardRatio)},
		{"Sharpe ratio", s.SharpeRatio.String()},
		{"Max drawdown", fmt.Sprintf("%s (%s of peak %s)", money(s.MaxDrawdown.Amount), pct(s.MaxDrawdown.Percent), money(s.MaxDrawdown.Peak))},
		{"Recovery factor", money(s.RecoveryFactor)},
		{"Capital efficiency", s.CapitalEfficiency.String()},
		{"Win / loss streak", fmt.Sprintf("%d / %d", s.WinStreak, s.LossStreak)},
		{"Avg days held (winners / losers)", s.AvgHoldWinners.String() + " / " + s.AvgHoldLosers.String()},
		{"Trades per week", money(s.TradeFrequency)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
}

func rMultipleTable(w io.Writer, r *analytics.RMultipleReport) {
	if r.Outcome == analytics.OutcomeInsufficientData {
		fmt.Fprintf(w, "Not enough trades with a stop: %d of %d required\n", r.Qualifying, r.Required)
		return
	}
	fmt.Fprintf(w, "Trades\t%d\n", r.Qualifying)
	fmt.Fprintf(w, "Average R\t%.2f\n", r.AvgR)
	fmt.Fprintf(w, "Average winner / loser R\t%.2f / %.2f\n", r.AvgWinnerR, r.AvgLoserR)
	fmt.Fprintf(w, "Win rate\t%s\n", pct(r.WinRate))
	if r.BestTrade != nil && r.WorstTrade != nil {
		fmt.Fprintf(w, "Best / worst\t%s %.2fR / %s %.2fR\n", r.BestTrade.Ticker, r.BestTrade.RMultiple, r.WorstTrade.Ticker, r.WorstTrade.RMultiple)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Range\tTrades")
	for _, b := range r.Buckets {
		fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Count)
	}
}

func tagRTable(w io.Writer, tags []analytics.TagRStats) {
	fmt.Fprintln(w, "Tag\tTrades\tTotal R\tAvg R\tWin rate")
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%s\n", t.Tag, t.Count, t.TotalR, t.AvgR, pct(t.WinRate))
	}
}

func breakdownTable(w io.Writer, b *analytics.Breakdown) {
	fmt.Fprintf(w, "%s\tTrades\tWins\tWin rate\tTotal P&L\tAvg P&L\tShare\n", strings.ToUpper(string(b.Dimension)))
	for _, g := range b.Groups {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n", g.Group, g.Count, g.WinCount, pct(g.WinRate),
			money(g.TotalPnL), money(g.AvgPnL), pct(g.PercentageOfTotal))
	}
}

func underwaterTable(w io.Writer, c *analytics.UnderwaterCurve) {
	if c.Outcome == analytics.OutcomeInsufficientData {
		fmt.Fprintf(w, "Not enough closed trades for a drawdown curve (%d)\n", c.Usable)
		return
	}
	fmt.Fprintln(w, "Date\tTicker\tEquity\tPeak\tDrawdown")
	for _, p := range c.Points {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Date.Format("2006-01-02"), p.Ticker, money(p.Equity), money(p.Peak), pct(p.DrawdownPercent))
	}
	if c.MaxDrawdown != nil {
		fmt.Fprintf(w, "Deepest\t%s\t\t\t%s\n", c.MaxDrawdown.Date.Format("2006-01-02"), pct(c.MaxDrawdown.DrawdownPercent))
	}
}

func monthlyTable(w io.Writer, m *analytics.MonthlyReport) {
	fmt.Fprintln(w, "Month\tTrades\tP&L\tWin rate\tCumulative")
	for _, b := range m.Months {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", b.Month, b.Trades, money(b.PnL), pct(b.WinRate), money(b.CumulativePnL))
	}
	if m.Skipped > 0 {
		fmt.Fprintf(w, "Skipped\t%d\n", m.Skipped)
	}
}

func weekdayTable(w io.Writer, r *analytics.WeekdayReport) {
	fmt.Fprintln(w, "Day\tTrades\tP&L\tAvg P&L\tWin rate")
	days := append(append([]analytics.DayBucket(nil), r.Days...), r.Weekend)
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", d.Day, d.Trades, money(d.PnL), money(d.AvgPnL), pct(d.WinRate))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func holdingTable(w io.Writer, r *analytics.HoldingReport) {
	fmt.Fprintln(w, "Held\tTrades\tP&L\tAvg P&L\tWin rate")
	for _, b := range r.Buckets {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", b.Label, b.Trades, money(b.PnL), money(b.AvgPnL), pct(b.WinRate))
	}
}

func exposureTable(w io.Writer, r *risk.ExposureReport) {
	fmt.Fprintln(w, "Ticker\tMarket\tCapital\tInitial risk\tOpen risk\tUnrealized\tR")
	for _, p := range r.Positions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", p.Ticker, p.Market, money(p.Capital),
			optFloat(p.InitialRisk), optFloat(p.OpenRisk), optFloat(p.UnrealizedPnL), optFloat(p.UnrealizedR))
	}
	fmt.Fprintf(w, "Total\t%d\t%s\t%s\t%s\t%s\t\n", r.OpenPositions, money(r.TotalCapital),
		money(r.TotalInitialRisk), money(r.TotalOpenRisk), money(r.TotalUnrealized))
	for _, b := range r.Breaches {
		fmt.Fprintf(w, "breach: %s\n", b)
	}
}

func positionsTable(w io.Writer, positions []*domain.Position) {
	fmt.Fprintln(w, "ID\tTicker\tMarket\tStatus\tEntry\tExit\tEntry price\tExit price\tShares\tP&L\tTags")
	for _, p := range positions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Ticker, p.MarketLabel(), p.Status,
			p.EntryDate.Format("2006-01-02"), optDate(p.ExitDate), money(p.EntryPrice), optFloat(p.ExitPrice),
			strconv.FormatFloat(p.Shares, 'f', -1, 64), optFloat(p.PnL), strings.Join(p.Tags, ", "))
	}
}

func layoutTable(w io.Writer, l *domain.Layout) {
	fmt.Fprintf(w, "Theme\t%s\n\n", l.Theme)
	fmt.Fprintln(w, "Widget\tVisible\tColumn\tOrder")
	for _, wd := range l.Widgets {
		fmt.Fprintf(w, "%s\t%t\t%d\t%d\n", wd.ID, wd.Visible, wd.Column, wd.Order)
	}
}

func importTable(w io.Writer, r *app.ImportReport) {
	fmt.Fprintf(w, "Imported\t%d\n", r.Imported)
	fmt.Fprintf(w, "Skipped\t%d\n", len(r.Skipped))
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "  line %d\t%s\n", s.Line, s.Reason)
	}
}

func dashboardTable(w io.Writer, d *app.Dashboard) {
	fmt.Fprintf(w, "Period\t%s\n", d.Period.Name)
	fmt.Fprintf(w, "Generated\t%s\n", d.GeneratedAt.Format(time.RFC3339))

	type section struct {
		title string
		show  bool
		draw  func()
	}
	sections := map[string]section{
		domain.WidgetSummary:     {"Summary", d.Summary != nil, func() { summaryTable(w, d.Currency, d.Summary) }},
		domain.WidgetEquityCurve: {"Drawdown", d.Underwater != nil, func() { underwaterTable(w, d.Underwater) }},
		domain.WidgetRMultiple: {"R-multiples", d.RMultiples != nil, func() {
			rMultipleTable(w, d.RMultiples)
			if len(d.TagR) > 0 {
				fmt.Fprintln(w)
				tagRTable(w, d.TagR)
			}
		}},
		domain.WidgetByMarket: {"By market", d.ByMarket != nil, func() { breakdownTable(w, d.ByMarket) }},
		domain.WidgetByExit:   {"By exit reason", d.ByExitReason != nil, func() { breakdownTable(w, d.ByExitReason) }},
		domain.WidgetByTag:    {"By tag", d.ByTag != nil, func() { breakdownTable(w, d.ByTag) }},
		domain.WidgetMonthly:  {"Monthly", d.Monthly != nil, func() { monthlyTable(w, d.Monthly) }},
		domain.WidgetWeekday:  {"Day of week", d.Weekday != nil, func() { weekdayTable(w, d.Weekday) }},
		domain.WidgetHolding:  {"Holding period", d.Holding != nil, func() { holdingTable(w, d.Holding) }},
		domain.WidgetExposure: {"Open exposure", d.Exposure != nil, func() { exposureTable(w, d.Exposure) }},
	}

	// Sections follow the layout's order; a terminal has one column.
	widgets := append([]domain.Widget(nil), d.Layout.Widgets...)
	sort.SliceStable(widgets, func(i, j int) bool { return widgets[i].Order < widgets[j].Order })
	for _, wd := range widgets {
		s, ok := sections[wd.ID]
		if !ok || !s.show {
			continue
		}
		fmt.Fprintln(w)
		heading(w, s.title)
		s.draw()
	}
}
