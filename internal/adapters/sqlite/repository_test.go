package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trade-journal-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

var jan = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func closedPosition(id string, pnl float64, exit time.Time) *domain.Position {
	return &domain.Position{
		ID:         id,
		Ticker:     "VOD",
		Market:     domain.MarketUK,
		Status:     domain.StatusClosed,
		EntryDate:  exit.AddDate(0, 0, -3),
		ExitDate:   domain.Date(exit),
		EntryPrice: 100,
		ExitPrice:  domain.Float(100 + pnl/10),
		StopPrice:  domain.Float(95),
		Shares:     10,
		PnL:        domain.Float(pnl),
		Fees:       1.5,
		ExitReason: domain.ExitReasonTarget,
		Tags:       []string{"breakout", "earnings"},
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestRepository_SaveAndFindPosition(t *testing.T) {
	tests := []struct {
		name    string
		pos     *domain.Position
		wantErr error
	}{
		{
			name: "closed position",
			pos:  closedPosition("p-1", 250, jan),
		},
		{
			name: "open position without optional values",
			pos: &domain.Position{
				ID:         "p-2",
				Ticker:     "AAPL",
				Market:     domain.MarketUS,
				Status:     domain.StatusOpen,
				EntryDate:  jan,
				EntryPrice: 180.25,
				Shares:     5,
			},
		},
		{
			name:    "missing id",
			pos:     &domain.Position{Ticker: "AAPL", EntryDate: jan},
			wantErr: ports.ErrInvalidRecord,
		},
		{
			name:    "missing entry date",
			pos:     &domain.Position{ID: "p-3", Ticker: "AAPL"},
			wantErr: ports.ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()

			err := repo.Save(ctx, tt.pos)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			found, err := repo.FindByID(ctx, tt.pos.ID)
			require.NoError(t, err)
			require.NotNil(t, found)

			assert.Equal(t, tt.pos.Ticker, found.Ticker)
			assert.Equal(t, tt.pos.Market, found.Market)
			assert.Equal(t, tt.pos.Status, found.Status)
			assert.True(t, tt.pos.EntryDate.Equal(found.EntryDate))
			assert.Equal(t, tt.pos.EntryPrice, found.EntryPrice)
			assert.Equal(t, tt.pos.ExitPrice, found.ExitPrice)
			assert.Equal(t, tt.pos.StopPrice, found.StopPrice)
			assert.Equal(t, tt.pos.CurrentPrice, found.CurrentPrice)
			assert.Equal(t, tt.pos.PnL, found.PnL)
			assert.Equal(t, tt.pos.Fees, found.Fees)
			assert.Equal(t, tt.pos.ExitReason, found.ExitReason)
			assert.Equal(t, tt.pos.Tags, found.Tags)
			if tt.pos.ExitDate == nil {
				assert.Nil(t, found.ExitDate)
			} else {
				require.NotNil(t, found.ExitDate)
				assert.True(t, tt.pos.ExitDate.Equal(*found.ExitDate))
			}
		})
	}
}

func TestRepository_SaveReplacesExisting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	pos := &domain.Position{
		ID:         "p-1",
		Ticker:     "VOD",
		Status:     domain.StatusOpen,
		EntryDate:  jan,
		EntryPrice: 100,
		Shares:     10,
		Tags:       []string{"swing"},
	}
	require.NoError(t, repo.Save(ctx, pos))

	pos.Status = domain.StatusClosed
	pos.ExitDate = domain.Date(jan.AddDate(0, 0, 5))
	pos.ExitPrice = domain.Float(110)
	pos.PnL = domain.Float(100)
	pos.Tags = nil
	require.NoError(t, repo.Save(ctx, pos))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusClosed, all[0].Status)
	assert.Equal(t, domain.Float(100), all[0].PnL)
	assert.Nil(t, all[0].Tags)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_FindByStatusAndOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	older := closedPosition("a", 10, jan)
	newer := closedPosition("b", 20, jan.AddDate(0, 1, 0))
	open := &domain.Position{ID: "c", Ticker: "MSFT", Status: domain.StatusOpen, EntryDate: jan.AddDate(0, 2, 0), EntryPrice: 300, Shares: 1}
	for _, p := range []*domain.Position{older, open, newer} {
		require.NoError(t, repo.Save(ctx, p))
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	closed, err := repo.FindByStatus(ctx, domain.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(closed))

	opened, err := repo.FindByStatus(ctx, domain.StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(opened))
}

func TestRepository_FindClosedBetween(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	noExit := closedPosition("no-exit", 5, jan)
	noExit.ExitDate = nil
	for _, p := range []*domain.Position{
		closedPosition("mar", 30, jan.AddDate(0, 2, 0)),
		closedPosition("jan", 10, jan),
		closedPosition("feb", 20, jan.AddDate(0, 1, 0)),
		noExit,
	} {
		require.NoError(t, repo.Save(ctx, p))
	}

	tests := []struct {
		name   string
		period domain.Period
		want   []string
	}{
		{name: "all time", period: domain.AllTime, want: []string{"jan", "feb", "mar", "no-exit"}},
		{
			name:   "bounded",
			period: domain.Period{Name: "FEB", Start: jan.AddDate(0, 0, 20), End: jan.AddDate(0, 1, 10)},
			want:   []string{"feb"},
		},
		{
			name:   "inclusive bounds",
			period: domain.Period{Name: "Q1", Start: jan, End: jan.AddDate(0, 2, 0)},
			want:   []string{"jan", "feb", "mar"},
		},
		{
			name:   "open end",
			period: domain.Period{Name: "SINCE", Start: jan.AddDate(0, 1, 0)},
			want:   []string{"feb", "mar"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindClosedBetween(ctx, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, closedPosition("p-1", 10, jan)))
	require.NoError(t, repo.Delete(ctx, "p-1"))

	got, err := repo.FindByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.Delete(ctx, "p-1"), ports.ErrNotFound)
}

func TestRepository_GetTotalProfit(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Repository) error
		want    float64
		wantErr bool
	}{
		{
			name: "multiple closed positions",
			setup: func(r *Repository) error {
				positions := []*domain.Position{
					closedPosition("a", 100, jan),
					closedPosition("b", -40, jan.AddDate(0, 0, 1)),
					{ID: "c", Ticker: "X", Status: domain.StatusOpen, EntryDate: jan, EntryPrice: 1, Shares: 1, PnL: domain.Float(999)},
				}
				for _, pos := range positions {
					if err := r.Save(context.Background(), pos); err != nil {
						return err
					}
				}
				return nil
			},
			want:    60.0, // Open positions are excluded
			wantErr: false,
		},
		{
			name:    "no closed positions",
			setup:   func(r *Repository) error { return nil },
			want:    0.0,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()

			err := tt.setup(repo)
			require.NoError(t, err)

			got, err := repo.GetTotalProfit(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ids(positions []*domain.Position) []string {
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		out = append(out, p.ID)
	}
	return out
}
