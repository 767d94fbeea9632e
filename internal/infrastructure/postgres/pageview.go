package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	appanalytics "github.com/nillpakhi2003-droid/habib-furniture/internal/application/analytics"
)

// PageviewRepo upserts daily per-path view counters.
type PageviewRepo struct {
	db *sql.DB
}

var _ appanalytics.Tracker = (*PageviewRepo)(nil)

func NewPageviewRepo(db *sql.DB) *PageviewRepo {
	return &PageviewRepo{db: db}
}

func (r *PageviewRepo) Increment(ctx context.Context, path string, day time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO page_views (path, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (path, day) DO UPDATE SET count = page_views.count + 1`,
		path, day)
	if err != nil {
		return fmt.Errorf("increment page view: %w", err)
	}
	return nil
}
