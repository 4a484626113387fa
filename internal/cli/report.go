package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
)

func newReportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analytics over closed trades",
		Long: `Computes analytics over the closed trades whose exit date falls in the
selected period (--period, default from DEFAULT_PERIOD).

Example:
  journal report summary --period 3M
  journal report rmultiple
  journal report tags --sort count --order asc
  journal report breakdown --by exit_reason
  journal report calendar -o yaml`,
	}

	cmd.AddCommand(
		periodCmd(e, "summary", "Headline performance metrics", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
			return e.service.Summary(cmd.Context(), p)
		}),
		periodCmd(e, "rmultiple", "R-multiple distribution", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
			return e.service.RMultiples(cmd.Context(), p)
		}),
		periodCmd(e, "underwater", "Drawdown curve from the running equity peak", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
			return e.service.Underwater(cmd.Context(), p)
		}),
		periodCmd(e, "calendar", "Monthly, day-of-week and holding-period views", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
			return e.service.Calendar(cmd.Context(), p)
		}),
		newTagsReportCmd(e),
		newBreakdownCmd(e),
		newExposureCmd(e),
		newTotalCmd(e),
	)
	return cmd
}

// periodCmd builds a report subcommand that takes no arguments and runs over
// the resolved --period.
func periodCmd(e *env, use, short string, fn func(*cobra.Command, domain.Period) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.service.ResolvePeriod(e.opts.period)
			if err != nil {
				return err
			}
			result, err := fn(cmd, p)
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), result)
		},
	}
}

func newTagsReportCmd(e *env) *cobra.Command {
	var key, order string
	cmd := periodCmd(e, "tags", "Average R and win rate per setup tag", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
		switch analytics.TagSortKey(key) {
		case "", analytics.TagSortAvgR, analytics.TagSortCount, analytics.TagSortWinRate:
		default:
			return nil, fmt.Errorf("unknown sort %q (want avgR, count or winRate)", key)
		}
		return e.service.TagR(cmd.Context(), p, analytics.TagSortKey(key), sortOrder(order))
	})
	cmd.Flags().StringVar(&key, "sort", "", "avgR, count or winRate (default from RMULTIPLE_SORT)")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc (default from SORT_ORDER)")
	return cmd
}

func newBreakdownCmd(e *env) *cobra.Command {
	var by, key, order string
	cmd := periodCmd(e, "breakdown", "Performance grouped by market, exit reason or tag", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
		dim, err := analytics.ParseDimension(by)
		if err != nil {
			return nil, err
		}
		switch analytics.GroupSortKey(key) {
		case "", analytics.GroupSortCount, analytics.GroupSortWinRate, analytics.GroupSortTotalPnL:
		default:
			return nil, fmt.Errorf("unknown sort %q (want count, winRate or totalPnl)", key)
		}
		return e.service.Breakdown(cmd.Context(), p, dim, analytics.GroupSort{Key: analytics.GroupSortKey(key), Order: sortOrder(order)})
	})
	cmd.Flags().StringVar(&by, "by", string(analytics.ByMarket), "market, exit_reason or tag")
	cmd.Flags().StringVar(&key, "sort", "", "count, winRate or totalPnl (default from GROUP_SORT)")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc (default from SORT_ORDER)")
	return cmd
}

func newExposureCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "exposure",
		Short: "Capital and risk carried by open positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := e.service.Exposure(cmd.Context())
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), report)
		},
	}
}

func newTotalCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Realized P&L of every closed position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := e.service.TotalProfit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", money(total), e.cfg.BaseCurrency)
			return nil
		},
	}
}

func newDashboardCmd(e *env) *cobra.Command {
	return periodCmd(e, "dashboard", "Every section shown by the dashboard layout", func(cmd *cobra.Command, p domain.Period) (interface{}, error) {
		return e.service.BuildDashboard(cmd.Context(), p)
	})
}

// sortOrder keeps a blank flag blank so the service applies the configured order.
func sortOrder(s string) analytics.SortOrder {
	if s == "" {
		return ""
	}
	return analytics.ParseSortOrder(s)
}
