package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.PositionRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

var _ ports.PositionRepository = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}
	ctx := context.Background()

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(ctx, "Data directory checked/created", ports.Fields{"path": filepath.Dir(dbPath)})

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serialises writers; SQLite locks the whole file anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(ctx, "SQLite database connection established", ports.Fields{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(ctx, "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		market TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		entry_date TIMESTAMP NOT NULL,
		exit_date TIMESTAMP DEFAULT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL DEFAULT NULL,
		current_price REAL DEFAULT NULL,
		stop_price REAL DEFAULT NULL,
		shares REAL NOT NULL,
		pnl REAL DEFAULT NULL,
		pnl_percent REAL DEFAULT NULL,
		fees REAL NOT NULL DEFAULT 0,
		exit_reason TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]', -- JSON array, order preserved
		entry_note TEXT NOT NULL DEFAULT '',
		exit_note TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS dashboard_layout (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		theme TEXT NOT NULL,
		widgets TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_positions_status_exit_date ON positions (status, exit_date);
	CREATE INDEX IF NOT EXISTS idx_positions_ticker ON positions (ticker);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- PositionRepository Implementation ---

const positionColumns = `id, ticker, market, status, entry_date, exit_date, entry_price, exit_price,
	current_price, stop_price, shares, pnl, pnl_percent, fees, exit_reason, tags, entry_note, exit_note`

// Save inserts the position or replaces the stored copy with the same ID.
func (r *Repository) Save(ctx context.Context, pos *domain.Position) error {
	if pos == nil || strings.TrimSpace(pos.ID) == "" {
		return fmt.Errorf("position without an ID: %w", ports.ErrInvalidRecord)
	}
	if pos.EntryDate.IsZero() {
		return fmt.Errorf("position %s has no entry date: %w", pos.ID, ports.ErrInvalidRecord)
	}

	const query = `
	INSERT INTO positions (` + positionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		ticker = excluded.ticker, market = excluded.market, status = excluded.status,
		entry_date = excluded.entry_date, exit_date = excluded.exit_date,
		entry_price = excluded.entry_price, exit_price = excluded.exit_price,
		current_price = excluded.current_price, stop_price = excluded.stop_price,
		shares = excluded.shares, pnl = excluded.pnl, pnl_percent = excluded.pnl_percent,
		fees = excluded.fees, exit_reason = excluded.exit_reason, tags = excluded.tags,
		entry_note = excluded.entry_note, exit_note = excluded.exit_note`

	tags, err := json.Marshal(nonNilTags(pos.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags for position %s: %w", pos.ID, err)
	}

	_, err = r.db.ExecContext(ctx, query,
		pos.ID, pos.Ticker, string(pos.Market), string(pos.Status), pos.EntryDate.UTC(), nullTime(pos.ExitDate),
		pos.EntryPrice, nullFloat(pos.ExitPrice), nullFloat(pos.CurrentPrice), nullFloat(pos.StopPrice),
		pos.Shares, nullFloat(pos.PnL), nullFloat(pos.PnLPercent), pos.Fees, pos.ExitReason,
		string(tags), pos.EntryNote, pos.ExitNote)
	if err != nil {
		return fmt.Errorf("failed to save position %s (%s): %w: %w", pos.ID, pos.Ticker, ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Position saved", ports.Fields{"positionID": pos.ID, "ticker": pos.Ticker, "status": pos.Status})
	return nil
}

// FindByID retrieves a position by its unique ID. Returns nil, nil if not found.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	pos, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Position not found by ID", ports.Fields{"positionID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query position by ID %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	return pos, nil
}

// FindAll retrieves all positions, ordered by entry date descending.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions ORDER BY entry_date DESC, id`
	return r.queryPositions(ctx, "FindAll", query)
}

// FindByStatus retrieves positions with the given status, ordered by entry date descending.
func (r *Repository) FindByStatus(ctx context.Context, status domain.PositionStatus) ([]*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE status = ? ORDER BY entry_date DESC, id`
	return r.queryPositions(ctx, "FindByStatus", query, string(status))
}

// FindClosedBetween retrieves closed positions exited inside the period,
// ordered by exit date ascending. Open sides of the period are not filtered.
// Closed positions without an exit date are only returned for an unbounded period.
func (r *Repository) FindClosedBetween(ctx context.Context, period domain.Period) ([]*domain.Position, error) {
	var start, end sql.NullTime
	if !period.Start.IsZero() {
		start = sql.NullTime{Time: period.Start.UTC(), Valid: true}
	}
	if !period.End.IsZero() {
		end = sql.NullTime{Time: period.End.UTC(), Valid: true}
	}

	query := `SELECT ` + positionColumns + ` FROM positions
	WHERE status = ?
	  AND (? IS NULL OR (exit_date IS NOT NULL AND exit_date >= ?))
	  AND (? IS NULL OR (exit_date IS NOT NULL AND exit_date <= ?))
	ORDER BY exit_date IS NULL, exit_date ASC, id`
	return r.queryPositions(ctx, "FindClosedBetween", query,
		string(domain.StatusClosed), start, start, end, end)
}

// Delete removes a position. Returns ErrNotFound when nothing was removed.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position %s: %w: %w", id, ports.ErrDeleteFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete position %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("position %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Position deleted", ports.Fields{"positionID": id})
	return nil
}

// GetTotalProfit calculates the sum of PnL for all closed positions.
func (r *Repository) GetTotalProfit(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl), 0) FROM positions WHERE status = ?`
	var totalProfit float64
	err := r.db.QueryRowContext(ctx, query, string(domain.StatusClosed)).Scan(&totalProfit)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate total profit: %w: %w", ports.ErrQueryFailed, err)
	}
	return totalProfit, nil
}

func (r *Repository) queryPositions(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Position, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions during %s: %w: %w", op, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position during %s: %w", op, err)
		}
		positions = append(positions, pos)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}
	return positions, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanPosition scans a row into a domain.Position struct.
func scanPosition(s scanner) (*domain.Position, error) {
	p := &domain.Position{}
	var market, status, tags string
	var exitDate sql.NullTime
	var exitPrice, currentPrice, stopPrice, pnl, pnlPercent sql.NullFloat64
	err := s.Scan(
		&p.ID, &p.Ticker, &market, &status, &p.EntryDate, &exitDate, &p.EntryPrice, &exitPrice,
		&currentPrice, &stopPrice, &p.Shares, &pnl, &pnlPercent, &p.Fees, &p.ExitReason,
		&tags, &p.EntryNote, &p.ExitNote)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}

	p.Market = domain.Market(market)
	p.Status = domain.PositionStatus(status)
	p.EntryDate = p.EntryDate.UTC()
	if exitDate.Valid {
		p.ExitDate = domain.Date(exitDate.Time.UTC())
	}
	p.ExitPrice = floatPtr(exitPrice)
	p.CurrentPrice = floatPtr(currentPrice)
	p.StopPrice = floatPtr(stopPrice)
	p.PnL = floatPtr(pnl)
	p.PnLPercent = floatPtr(pnlPercent)

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("corrupt tags for position %s: %w", p.ID, err)
	}
	if len(p.Tags) == 0 {
		p.Tags = nil
	}
	return p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.Float(v.Float64)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
