package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/utils"
)

// analyze_trades compares journal CSV exports side by side without touching
// the journal database.
func main() {
	var dir, prefix, tagSeparator string

	cmd := &cobra.Command{
		Use:   "analyze_trades",
		Short: "Compare journal CSV files side by side",
		Long: `Reads every CSV in a directory whose name starts with --prefix and prints
one summary row per file, then the exit reason breakdown of each file.

Example:
  go run ./cmd/analyze_trades --dir data --prefix journal_`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(logger.Options{Level: logger.LevelWarn, Format: "console", Output: cmd.ErrOrStderr()})

			files, err := findTradeFiles(dir, prefix)
			if err != nil {
				return fmt.Errorf("error finding trade files: %w", err)
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trade files found. Export some with: journal export data/journal_all.csv")
				return nil
			}

			results := loadFiles(cmd.Context(), log, files, utils.CSVOptions{TagSeparator: tagSeparator})
			printSummaries(cmd.OutOrStdout(), results)
			fmt.Fprintln(cmd.OutOrStdout(), "\n## Exit Reason Analysis")
			printExitReasons(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data", "directory holding the CSV files")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only read files whose name starts with this prefix")
	cmd.Flags().StringVar(&tagSeparator, "tag-separator", ";", "separator used in the tags column")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type fileResult struct {
	name      string
	positions []*domain.Position
	summary   *analytics.SummaryMetrics
}

func loadFiles(ctx context.Context, log ports.Logger, files []string, opts utils.CSVOptions) []fileResult {
	var results []fileResult
	for _, file := range files {
		imported, err := utils.ReadPositionsFromCSV(file, opts)
		if err != nil {
			log.Error(ctx, err, "Error reading trades", ports.Fields{"file": file})
			continue
		}
		for _, issue := range imported.Skipped {
			log.Warn(ctx, "Skipping row", ports.Fields{"file": file, "line": issue.Line, "reason": issue.Reason})
		}
		results = append(results, fileResult{
			name:      filepath.Base(file),
			positions: imported.Positions,
			summary:   analytics.CalculateSummary(imported.Positions, domain.AllTime),
		})
	}
	return results
}

func printSummaries(out io.Writer, results []fileResult) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tWinRate\tAvgWin\tAvgLoss\tTotalPnL\tPF\tMaxDD\tMaxDD%\t")
	for _, r := range results {
		s := r.summary
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%.2f\t%.2f\t\n",
			r.name,
			s.TotalTrades,
			s.WinRate,
			s.AverageWin,
			s.AverageLoss,
			s.TotalPnL,
			s.ProfitFactor,
			s.MaxDrawdown.Amount,
			s.MaxDrawdown.Percent,
		)
	}
	w.Flush()
}

func printExitReasons(out io.Writer, results []fileResult) {
	for _, r := range results {
		breakdown := analytics.GroupBy(r.positions, analytics.ByExitReason,
			analytics.GroupSort{Key: analytics.GroupSortTotalPnL, Order: analytics.Descending})

		fmt.Fprintf(out, "\nFile: %s\n", r.name)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Exit Reason\tCount\tWinRate\tTotal PnL\tAvg PnL")
		for _, g := range breakdown.Groups {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\n", g.Group, g.Count, g.WinRate, g.TotalPnL, g.AvgPnL)
		}
		w.Flush()
	}
}

// findTradeFiles lists the CSV files in dir that start with prefix, by name.
func findTradeFiles(dir, prefix string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
