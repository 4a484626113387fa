package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// LayoutStore implements ports.LayoutStore on the repository's database.
// The layout is a single row.
type LayoutStore struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

var _ ports.LayoutStore = (*LayoutStore)(nil)

// Layouts returns the dashboard layout store sharing this repository's connection.
func (r *Repository) Layouts() *LayoutStore {
	return &LayoutStore{db: r.db, logger: r.logger, now: time.Now}
}

// Load returns the saved layout, or the default layout when none is saved.
func (s *LayoutStore) Load(ctx context.Context) (*domain.Layout, error) {
	const query = `SELECT theme, widgets, updated_at FROM dashboard_layout WHERE id = 1`

	layout := &domain.Layout{}
	var widgets string
	err := s.db.QueryRowContext(ctx, query).Scan(&layout.Theme, &widgets, &layout.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug(ctx, "No saved dashboard layout, using default")
			return domain.DefaultLayout(), nil
		}
		return nil, fmt.Errorf("failed to load dashboard layout: %w: %w", ports.ErrQueryFailed, err)
	}
	if err := json.Unmarshal([]byte(widgets), &layout.Widgets); err != nil {
		s.logger.Warn(ctx, "Saved dashboard layout is corrupt, using default", ports.Fields{"error": err.Error()})
		return domain.DefaultLayout(), nil
	}
	layout.UpdatedAt = layout.UpdatedAt.UTC()
	return layout, nil
}

// Save stores the layout, replacing any previous one. UpdatedAt is set on the
// passed layout.
func (s *LayoutStore) Save(ctx context.Context, layout *domain.Layout) error {
	if layout == nil {
		return fmt.Errorf("nil layout: %w", ports.ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(layout.Widgets))
	for _, w := range layout.Widgets {
		if w.ID == "" || seen[w.ID] {
			return fmt.Errorf("layout widget ids must be unique and non-empty: %w", ports.ErrInvalidRequest)
		}
		seen[w.ID] = true
	}

	widgets, err := json.Marshal(layout.Widgets)
	if err != nil {
		return fmt.Errorf("failed to encode layout widgets: %w", err)
	}

	const query = `
	INSERT INTO dashboard_layout (id, theme, widgets, updated_at) VALUES (1, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET theme = excluded.theme, widgets = excluded.widgets, updated_at = excluded.updated_at`

	updated := s.now().UTC()
	if _, err := s.db.ExecContext(ctx, query, layout.Theme, string(widgets), updated); err != nil {
		return fmt.Errorf("failed to save dashboard layout: %w: %w", ports.ErrUpdateFailed, err)
	}
	layout.UpdatedAt = updated
	s.logger.Debug(ctx, "Dashboard layout saved", ports.Fields{"theme": layout.Theme, "widgets": len(layout.Widgets)})
	return nil
}

// Reset removes the saved layout so Load falls back to the default.
func (s *LayoutStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dashboard_layout`); err != nil {
		return fmt.Errorf("failed to reset dashboard layout: %w: %w", ports.ErrDeleteFailed, err)
	}
	s.logger.Debug(ctx, "Dashboard layout reset")
	return nil
}
