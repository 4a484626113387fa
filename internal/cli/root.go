package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
)

// Global flags
type rootOptions struct {
	configFile string
	output     string
	period     string
	dbPath     string
	verbose    bool
}

// env is what every subcommand runs against. It is filled in by the root
// command's pre-run hook and torn down by closeEnv.
type env struct {
	opts    rootOptions
	cfg     *config.Config
	log     *logger.Logger
	repo    *sqlite.Repository
	service *app.JournalService
	logOut  io.Writer
}

// Execute runs the journal CLI against os.Args.
// This is called by main.main().
func Execute() error {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	e := &env{logOut: errOut}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	defer e.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal analytics",
		Long: `Trading journal analytics

Stores closed trades and open positions in a local SQLite journal and
reports on them: summary metrics, R-multiples, categorical breakdowns,
drawdown, calendar views and open-book exposure.

Examples:
  journal import trades.csv
  journal report summary --period YTD
  journal report breakdown --by tag --sort winRate
  journal dashboard --output json`,
		SilenceUsage:      true,
		PersistentPreRunE: e.open,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.opts.configFile, "config", "", "config file (default is .env)")
	flags.StringVarP(&e.opts.output, "output", "o", "", "output format: table, json or yaml (default from OUTPUT_FORMAT)")
	flags.StringVarP(&e.opts.period, "period", "p", "", "report period: 1M, 3M, 6M, 1Y, YTD or ALL (default from DEFAULT_PERIOD)")
	flags.StringVar(&e.opts.dbPath, "db", "", "journal database path (default from DB_PATH)")
	flags.BoolVarP(&e.opts.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		newImportCmd(e),
		newExportCmd(e),
		newPositionsCmd(e),
		newReportCmd(e),
		newDashboardCmd(e),
		newRiskCmd(e),
		newLayoutCmd(e),
	)
	return root
}

func (e *env) open(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if e.opts.configFile != "" {
		cfg, err = config.LoadConfig(e.opts.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}
	if e.opts.dbPath != "" {
		cfg.DBPath = e.opts.dbPath
	}
	if e.opts.output != "" {
		cfg.OutputFormat = e.opts.output
	}
	if _, err := parseFormat(cfg.OutputFormat); err != nil {
		return err
	}
	if e.opts.verbose {
		cfg.LogLevel = logger.LevelDebug
	}
	e.cfg = cfg

	e.log = logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: e.logOut})
	e.log.Debug(cmd.Context(), "Logger initialized", ports.Fields{"level": cfg.LogLevel.String()})

	e.repo, err = sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: e.log})
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	e.service, err = app.NewJournalService(cfg, e.log, e.repo, e.repo.Layouts())
	if err != nil {
		return err
	}
	return nil
}

func (e *env) close() {
	if e.repo == nil {
		return
	}
	if err := e.repo.Close(); err != nil {
		e.log.Error(context.Background(), err, "Error closing journal database")
	}
	e.repo = nil
}
