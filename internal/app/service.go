package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tradeJournal/config"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/risk"
	"tradeJournal/internal/utils"
)

// JournalService orchestrates the journal store and the analytics engine.
// The analytics themselves are pure; this service only loads, filters and
// assembles.
type JournalService struct {
	cfg     *config.Config
	logger  ports.Logger
	repo    ports.PositionRepository
	layouts ports.LayoutStore
	risk    *risk.RiskManager
	now     func() time.Time
}

// NewJournalService creates a new application service instance.
func NewJournalService(
	cfg *config.Config,
	logger ports.Logger,
	repo ports.PositionRepository,
	layouts ports.LayoutStore,
) (*JournalService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || repo == nil || layouts == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService: %w", ports.ErrConfigurationError)
	}

	// Validate config values needed by service
	if cfg.DashboardWorkers <= 0 {
		return nil, fmt.Errorf("configuration DashboardWorkers must be positive: %w", ports.ErrConfigurationError)
	}
	if _, err := domain.ParsePeriod(cfg.DefaultPeriod, time.Now()); err != nil {
		return nil, fmt.Errorf("configuration DefaultPeriod: %w: %w", ports.ErrConfigurationError, err)
	}

	return &JournalService{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		layouts: layouts,
		risk: risk.NewRiskManager(risk.RiskConfig{
			MaxOpenPositions: cfg.MaxOpenPositions,
			MaxOpenRisk:      cfg.MaxOpenRisk,
			MaxPositionRisk:  cfg.MaxPositionRisk,
		}),
		now: time.Now,
	}, nil
}

// ResolvePeriod parses a period code. A blank code uses the configured default.
func (s *JournalService) ResolvePeriod(code string) (domain.Period, error) {
	if strings.TrimSpace(code) == "" {
		code = s.cfg.DefaultPeriod
	}
	p, err := domain.ParsePeriod(code, s.now())
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}
	return p, nil
}

// --- Journal records ---

// ImportReport summarises a CSV import.
type ImportReport struct {
	Imported int              `json:"imported" yaml:"imported"`
	Skipped  []utils.RowIssue `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// ImportPositions reads a journal CSV and saves every valid row. Rows with an
// ID already in the store replace the stored copy.
func (s *JournalService) ImportPositions(ctx context.Context, r io.Reader) (*ImportReport, error) {
	result, err := utils.ReadPositions(r, utils.CSVOptions{TagSeparator: s.cfg.TagSeparator})
	if err != nil {
		s.logger.Error(ctx, err, "Failed to read journal CSV")
		return nil, err
	}

	report := &ImportReport{Skipped: result.Skipped}
	for _, issue := range result.Skipped {
		s.logger.Warn(ctx, "Skipping journal row", ports.Fields{"line": issue.Line, "reason": issue.Reason})
	}

	for _, pos := range result.Positions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.repo.Save(ctx, pos); err != nil {
			s.logger.Error(ctx, err, "Failed to save imported position", ports.Fields{"positionID": pos.ID, "ticker": pos.Ticker})
			return report, fmt.Errorf("import stopped after %d positions: %w", report.Imported, err)
		}
		report.Imported++
	}

	s.logger.Info(ctx, "Journal import finished", ports.Fields{"imported": report.Imported, "skipped": len(report.Skipped)})
	return report, nil
}

// ExportPositions writes every stored position as CSV.
func (s *JournalService) ExportPositions(ctx context.Context, w io.Writer) (int, error) {
	positions, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load positions for export")
		return 0, err
	}
	if err := utils.WritePositions(w, positions, utils.CSVOptions{TagSeparator: s.cfg.TagSeparator}); err != nil {
		return 0, fmt.Errorf("failed to write CSV: %w", err)
	}
	s.logger.Debug(ctx, "Journal exported", ports.Fields{"positions": len(positions)})
	return len(positions), nil
}

// ListPositions returns stored positions; a blank status returns all of them.
func (s *JournalService) ListPositions(ctx context.Context, status string) ([]*domain.Position, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
		return s.repo.FindAll(ctx)
	case string(domain.StatusOpen):
		return s.repo.FindByStatus(ctx, domain.StatusOpen)
	case string(domain.StatusClosed):
		return s.repo.FindByStatus(ctx, domain.StatusClosed)
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, ports.ErrInvalidRequest)
	}
}

// GetPosition returns one position or ErrNotFound.
func (s *JournalService) GetPosition(ctx context.Context, id string) (*domain.Position, error) {
	pos, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, fmt.Errorf("position %s: %w", id, ports.ErrNotFound)
	}
	return pos, nil
}

// DeletePosition removes a position from the journal.
func (s *JournalService) DeletePosition(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "Position deleted", ports.Fields{"positionID": id})
	return nil
}

// TotalProfit returns the realized P&L of every closed position.
func (s *JournalService) TotalProfit(ctx context.Context) (float64, error) {
	return s.repo.GetTotalProfit(ctx)
}

// --- Reports ---

func (s *JournalService) closedIn(ctx context.Context, period domain.Period) ([]*domain.Position, error) {
	positions, err := s.repo.FindClosedBetween(ctx, period)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load closed positions", ports.Fields{"period": period.Name})
		return nil, err
	}
	s.logger.Debug(ctx, "Loaded closed positions", ports.Fields{"period": period.Name, "count": len(positions)})
	return positions, nil
}

// Summary computes the headline metrics for the period.
func (s *JournalService) Summary(ctx context.Context, period domain.Period) (*analytics.SummaryMetrics, error) {
	positions, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateSummary(positions, period), nil
}

// RMultiples computes the R distribution for the period.
func (s *JournalService) RMultiples(ctx context.Context, period domain.Period) (*analytics.RMultipleReport, error) {
	positions, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}
	report := analytics.AnalyzeRMultiples(positions)
	if report.Outcome == analytics.OutcomeInsufficientData {
		s.logger.Debug(ctx, "Not enough trades with a stop for R analysis",
			ports.Fields{"qualifying": report.Qualifying, "required": report.Required})
	}
	return report, nil
}

// TagR computes the per-tag R breakdown. Blank key and order use the configuration.
func (s *JournalService) TagR(ctx context.Context, period domain.Period, key analytics.TagSortKey, order analytics.SortOrder) ([]analytics.TagRStats, error) {
	positions, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = analytics.TagSortKey(s.cfg.RMultipleSort)
	}
	if order == "" {
		order = analytics.ParseSortOrder(s.cfg.SortOrder)
	}
	return analytics.TagRBreakdown(positions, key, order), nil
}

// Breakdown groups the period's trades by a categorical dimension. A zero
// sort uses the configuration.
func (s *JournalService) Breakdown(ctx context.Context, period domain.Period, dim analytics.Dimension, sort analytics.GroupSort) (*analytics.Breakdown, error) {
	positions, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}
	return analytics.GroupBy(positions, dim, s.groupSort(sort)), nil
}

// Underwater builds the drawdown curve for the period.
func (s *JournalService) Underwater(ctx context.Context, period domain.Period) (*analytics.UnderwaterCurve, error) {
	positions, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}
	return analytics.BuildUnderwaterCurve(positions), nil
}

// CalendarReport bundles the time-bucketed views.
type CalendarReport struct {
	Monthly *analytics.MonthlyReport `json:"monthly" yaml:"monthly"`
	Weekday *analytics.WeekdayReport `json:"weekday" yaml:"weekday"`
	Holding *analytics.HoldingReport `json:"holding_period" yaml:"holding_period"`
}

// Calendar computes the monthly, weekday and holding-period views.
func (s *JournalService) Calendar(ctx context.Context, period domain.Period) (*CalendarReport, error) {
	positions, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}
	report := &CalendarReport{
		Monthly: analytics.MonthlyReturns(positions, period),
		Weekday: analytics.DayOfWeekPerformance(positions),
		Holding: analytics.HoldingPeriodPerformance(positions),
	}
	for _, w := range report.Weekday.Warnings {
		s.logger.Warn(ctx, w)
	}
	return report, nil
}

// Exposure reports on the open positions against the configured limits.
func (s *JournalService) Exposure(ctx context.Context) (*risk.ExposureReport, error) {
	open, err := s.repo.FindByStatus(ctx, domain.StatusOpen)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load open positions")
		return nil, err
	}
	report := s.risk.Exposure(open)
	if err := s.risk.CheckRiskLimits(report); err != nil {
		s.logger.Warn(ctx, "Open book breaches risk limits", ports.Fields{"breaches": report.Breaches})
	}
	return report, nil
}

// PositionSize returns the whole-share size risking riskAmount between entry and stop.
func (s *JournalService) PositionSize(riskAmount, entry, stop float64) (float64, error) {
	size, err := s.risk.GetPositionSize(riskAmount, entry, stop)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}
	return size, nil
}

func (s *JournalService) groupSort(sort analytics.GroupSort) analytics.GroupSort {
	if sort.Key == "" {
		sort.Key = analytics.GroupSortKey(s.cfg.GroupSort)
	}
	if sort.Order == "" {
		sort.Order = analytics.ParseSortOrder(s.cfg.SortOrder)
	}
	return sort
}

// --- Layout ---

// Layout returns the saved dashboard layout or the default.
func (s *JournalService) Layout(ctx context.Context) (*domain.Layout, error) {
	return s.layouts.Load(ctx)
}

// SetWidget changes one widget's visibility and, when column or order are
// non-negative, its position.
func (s *JournalService) SetWidget(ctx context.Context, id string, visible bool, column, order int) (*domain.Layout, error) {
	layout, err := s.layouts.Load(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range layout.Widgets {
		w := &layout.Widgets[i]
		if w.ID != id {
			continue
		}
		found = true
		w.Visible = visible
		if column >= 0 {
			w.Column = column
		}
		if order >= 0 {
			w.Order = order
		}
	}
	if !found {
		return nil, fmt.Errorf("widget %q: %w", id, ports.ErrNotFound)
	}
	if err := s.layouts.Save(ctx, layout); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Dashboard widget updated", ports.Fields{"widget": id, "visible": visible})
	return layout, nil
}

// SetTheme stores the dashboard theme.
func (s *JournalService) SetTheme(ctx context.Context, theme string) (*domain.Layout, error) {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != "light" && theme != "dark" {
		return nil, fmt.Errorf("theme must be light or dark: %w", ports.ErrInvalidRequest)
	}
	layout, err := s.layouts.Load(ctx)
	if err != nil {
		return nil, err
	}
	layout.Theme = theme
	if err := s.layouts.Save(ctx, layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// ResetLayout restores the default dashboard layout.
func (s *JournalService) ResetLayout(ctx context.Context) (*domain.Layout, error) {
	if err := s.layouts.Reset(ctx); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Dashboard layout reset")
	return s.layouts.Load(ctx)
}

// --- Dashboard ---

// Dashboard is every analytics section the layout shows. Hidden sections are nil.
type Dashboard struct {
	Period       domain.Period              `json:"period" yaml:"period"`
	Currency     string                     `json:"currency" yaml:"currency"`
	GeneratedAt  time.Time                  `json:"generated_at" yaml:"generated_at"`
	Layout       *domain.Layout             `json:"layout" yaml:"layout"`
	Summary      *analytics.SummaryMetrics  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Underwater   *analytics.UnderwaterCurve `json:"underwater,omitempty" yaml:"underwater,omitempty"`
	RMultiples   *analytics.RMultipleReport `json:"r_multiple,omitempty" yaml:"r_multiple,omitempty"`
	TagR         []analytics.TagRStats      `json:"tag_r,omitempty" yaml:"tag_r,omitempty"`
	ByMarket     *analytics.Breakdown       `json:"by_market,omitempty" yaml:"by_market,omitempty"`
	ByExitReason *analytics.Breakdown       `json:"by_exit_reason,omitempty" yaml:"by_exit_reason,omitempty"`
	ByTag        *analytics.Breakdown       `json:"by_tag,omitempty" yaml:"by_tag,omitempty"`
	Monthly      *analytics.MonthlyReport   `json:"monthly,omitempty" yaml:"monthly,omitempty"`
	Weekday      *analytics.WeekdayReport   `json:"weekday,omitempty" yaml:"weekday,omitempty"`
	Holding      *analytics.HoldingReport   `json:"holding_period,omitempty" yaml:"holding_period,omitempty"`
	Exposure     *risk.ExposureReport       `json:"open_exposure,omitempty" yaml:"open_exposure,omitempty"`
}

// BuildDashboard loads the period's closed trades once and computes every
// visible section concurrently. Sections only read the shared slice.
func (s *JournalService) BuildDashboard(ctx context.Context, period domain.Period) (*Dashboard, error) {
	layout, err := s.layouts.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load dashboard layout")
		return nil, err
	}
	closed, err := s.closedIn(ctx, period)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Period:      period,
		Currency:    s.cfg.BaseCurrency,
		GeneratedAt: s.now().UTC(),
		Layout:      layout,
	}
	sort := s.groupSort(analytics.GroupSort{})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.DashboardWorkers)

	section := func(id string, fn func()) {
		if !layout.Visible(id) {
			return
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	section(domain.WidgetSummary, func() { d.Summary = analytics.CalculateSummary(closed, period) })
	section(domain.WidgetEquityCurve, func() { d.Underwater = analytics.BuildUnderwaterCurve(closed) })
	section(domain.WidgetRMultiple, func() {
		d.RMultiples = analytics.AnalyzeRMultiples(closed)
		d.TagR = analytics.TagRBreakdown(closed, analytics.TagSortKey(s.cfg.RMultipleSort), sort.Order)
	})
	section(domain.WidgetByMarket, func() { d.ByMarket = analytics.GroupBy(closed, analytics.ByMarket, sort) })
	section(domain.WidgetByExit, func() { d.ByExitReason = analytics.GroupBy(closed, analytics.ByExitReason, sort) })
	section(domain.WidgetByTag, func() { d.ByTag = analytics.GroupBy(closed, analytics.ByTag, sort) })
	section(domain.WidgetMonthly, func() { d.Monthly = analytics.MonthlyReturns(closed, period) })
	section(domain.WidgetWeekday, func() { d.Weekday = analytics.DayOfWeekPerformance(closed) })
	section(domain.WidgetHolding, func() { d.Holding = analytics.HoldingPeriodPerformance(closed) })

	if layout.Visible(domain.WidgetExposure) {
		g.Go(func() error {
			report, err := s.Exposure(gctx)
			if err != nil {
				return err
			}
			d.Exposure = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, err, "Dashboard build failed", ports.Fields{"period": period.Name})
		return nil, err
	}
	s.logger.Info(ctx, "Dashboard built", ports.Fields{"period": period.Name, "trades": len(closed)})
	return d, nil
}
