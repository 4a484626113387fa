package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tradeJournal/internal/ports"
)

const journalCSV = `id,ticker,market,status,entry_date,exit_date,entry_price,exit_price,stop_price,shares,pnl,exit_reason,tags
a,VOD,UK,closed,2024-01-02,2024-01-08,100,110,95,10,100,Target Reached,breakout
b,BP,UK,closed,2024-02-01,2024-02-05,50,45,45,10,-50,Stop Loss Hit,breakout
c,AAPL,US,closed,2024-03-01,2024-03-12,180,200,170,10,200,Target Reached,pullback
d,NVDA,US,open,2024-04-01,,880,,850,2,,,
`

type journalCLI struct {
	t      *testing.T
	dbPath string
}

func newJournalCLI(t *testing.T) *journalCLI {
	t.Helper()
	for _, key := range []string{"OUTPUT_FORMAT", "LOG_FORMAT", "RMULTIPLE_SORT", "GROUP_SORT", "SORT_ORDER", "TAG_SEPARATOR", "MAX_OPEN_POSITIONS", "MAX_OPEN_RISK", "MAX_POSITION_RISK", "DASHBOARD_WORKERS", "BASE_CURRENCY"} {
		t.Setenv(key, "")
	}
	t.Setenv("DEFAULT_PERIOD", "ALL")
	t.Setenv("LOG_LEVEL", "error")
	return &journalCLI{t: t, dbPath: filepath.Join(t.TempDir(), "journal.db")}
}

func (c *journalCLI) run(args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), append([]string{"--db", c.dbPath}, args...), &out, &errOut)
	return out.String(), err
}

func (c *journalCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "journal %v", args)
	return out
}

func (c *journalCLI) importJournal() {
	c.t.Helper()
	path := filepath.Join(c.t.TempDir(), "trades.csv")
	require.NoError(c.t, os.WriteFile(path, []byte(journalCSV), 0o600))
	c.mustRun("import", path)
}

func decodeJSON(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &m), out)
	return m
}

func TestImportCommand(t *testing.T) {
	c := newJournalCLI(t)
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, os.WriteFile(path, []byte(journalCSV+"e,MSFT,US,closed,yesterday,,300,,,1,,,\n"), 0o600))

	report := decodeJSON(t, c.mustRun("import", path, "-o", "json"))
	assert.Equal(t, 4.0, report["imported"])
	skipped, ok := report["skipped"].([]interface{})
	require.True(t, ok)
	assert.Len(t, skipped, 1)

	_, err := c.run("import", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestPositionsCommands(t *testing.T) {
	c := newJournalCLI(t)
	c.importJournal()

	var open []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("positions", "list", "--status", "open", "-o", "json")), &open))
	require.Len(t, open, 1)
	assert.Equal(t, "NVDA", open[0]["ticker"])

	table := c.mustRun("positions", "list")
	assert.Contains(t, table, "Ticker")
	assert.Contains(t, table, "AAPL")

	assert.Contains(t, c.mustRun("positions", "show", "c"), "pullback")
	assert.Contains(t, c.mustRun("positions", "delete", "c"), "Deleted c")

	_, err := c.run("positions", "show", "c")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = c.run("positions", "delete", "c")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestReportCommands(t *testing.T) {
	c := newJournalCLI(t)
	c.importJournal()

	summary := decodeJSON(t, c.mustRun("report", "summary", "-o", "json"))
	assert.Equal(t, 3.0, summary["total_trades"])
	assert.Equal(t, 250.0, summary["total_pnl"])
	assert.Equal(t, 6.0, summary["profit_factor"])

	var asYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(c.mustRun("report", "summary", "-o", "yaml")), &asYAML))
	assert.Equal(t, 3, asYAML["total_trades"])

	assert.Contains(t, c.mustRun("report", "summary"), "Profit factor")
	assert.Contains(t, c.mustRun("report", "rmultiple"), "Not enough trades with a stop: 3 of 10 required")

	var tags []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("report", "tags", "-o", "json")), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "pullback", tags[0]["tag"])

	breakdown := decodeJSON(t, c.mustRun("report", "breakdown", "--by", "exit_reason", "--sort", "totalPnl", "-o", "json"))
	groups := breakdown["groups"].([]interface{})
	require.Len(t, groups, 2)
	assert.Equal(t, "Target Reached", groups[0].(map[string]interface{})["group"])

	_, err := c.run("report", "breakdown", "--by", "sector")
	assert.Error(t, err)
	_, err = c.run("report", "tags", "--sort", "alpha")
	assert.Error(t, err)

	assert.Contains(t, c.mustRun("report", "underwater"), "Drawdown")
	calendar := c.mustRun("report", "calendar")
	assert.Contains(t, calendar, "2024-02")
	assert.Contains(t, calendar, "Monday")

	exposure := c.mustRun("report", "exposure")
	assert.Contains(t, exposure, "NVDA")
	assert.Contains(t, exposure, "60.00", "initial risk (880 - 850) x 2")

	assert.Contains(t, c.mustRun("report", "total"), "250.00 GBP")

	_, err = c.run("report", "summary", "--period", "2W")
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	_, err = c.run("report", "summary", "-o", "xml")
	assert.Error(t, err)
}

func TestDashboardFollowsLayout(t *testing.T) {
	c := newJournalCLI(t)
	c.importJournal()

	full := decodeJSON(t, c.mustRun("dashboard", "-o", "json"))
	assert.Contains(t, full, "summary")
	assert.Contains(t, full, "monthly")
	assert.Contains(t, full, "open_exposure")

	c.mustRun("layout", "hide", "monthly")
	c.mustRun("layout", "hide", "open_exposure")

	trimmed := decodeJSON(t, c.mustRun("dashboard", "-o", "json"))
	assert.Contains(t, trimmed, "summary")
	assert.NotContains(t, trimmed, "monthly")
	assert.NotContains(t, trimmed, "open_exposure")

	table := c.mustRun("dashboard")
	assert.Contains(t, table, "Summary")
	assert.NotContains(t, table, "Open exposure")

	layout := decodeJSON(t, c.mustRun("layout", "theme", "dark", "-o", "json"))
	assert.Equal(t, "dark", layout["theme"])

	_, err := c.run("layout", "hide", "ticker_tape")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	c.mustRun("layout", "reset")
	assert.Contains(t, c.mustRun("layout", "show"), "light")
}

func TestExportCommand(t *testing.T) {
	c := newJournalCLI(t)
	c.importJournal()

	out := c.mustRun("export")
	assert.Contains(t, out, "id,ticker,market,status")

	path := filepath.Join(t.TempDir(), "backup.csv")
	c.mustRun("export", path)

	other := newJournalCLI(t)
	report := decodeJSON(t, other.mustRun("import", path, "-o", "json"))
	assert.Equal(t, 4.0, report["imported"])
	assert.NotContains(t, report, "skipped")
}

func TestRiskSizeCommand(t *testing.T) {
	c := newJournalCLI(t)
	assert.Contains(t, c.mustRun("risk", "size", "--risk", "100", "--entry", "10", "--stop", "9.5"), "200 shares")

	_, err := c.run("risk", "size", "--risk", "100", "--entry", "10", "--stop", "10")
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	_, err = c.run("risk", "size", "--risk", "100")
	assert.Error(t, err)
}
