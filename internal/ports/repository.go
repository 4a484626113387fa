package ports

import (
	"context"

	"tradeJournal/internal/domain"
)

// PositionRepository defines the interface for storing and retrieving journal positions.
type PositionRepository interface {
	// Save inserts the position or replaces the stored copy with the same ID.
	Save(ctx context.Context, pos *domain.Position) error
	// FindByID retrieves a position by its unique ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id string) (*domain.Position, error)
	// FindAll retrieves all positions, ordered by entry date descending.
	FindAll(ctx context.Context) ([]*domain.Position, error)
	// FindByStatus retrieves positions with the given status, ordered by entry date descending.
	FindByStatus(ctx context.Context, status domain.PositionStatus) ([]*domain.Position, error)
	// FindClosedBetween retrieves closed positions whose exit date lies in the period,
	// ordered by exit date ascending.
	FindClosedBetween(ctx context.Context, period domain.Period) ([]*domain.Position, error)
	// Delete removes a position. Returns ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id string) error
	// GetTotalProfit calculates the sum of PnL for all closed positions.
	GetTotalProfit(ctx context.Context) (float64, error)
}

// LayoutStore persists the dashboard layout. The analytics code never depends on it.
type LayoutStore interface {
	// Load returns the saved layout, or the default layout when none is saved.
	Load(ctx context.Context) (*domain.Layout, error)
	// Save stores the layout, replacing any previous one.
	Save(ctx context.Context, layout *domain.Layout) error
	// Reset removes the saved layout so Load falls back to the default.
	Reset(ctx context.Context) error
}
