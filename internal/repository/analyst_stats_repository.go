package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/models"
)

const statsColumns = `
	analyst, total_memos, approved_count, win_count, total_return, created_at, updated_at`

// PostgresAnalystStatsRepository implements AnalystStatsRepository for PostgreSQL
type PostgresAnalystStatsRepository struct {
	db *database.DB
}

// NewPostgresAnalystStatsRepository creates a new analyst stats repository
func NewPostgresAnalystStatsRepository(db *database.DB) AnalystStatsRepository {
	return &PostgresAnalystStatsRepository{db: db}
}

// GetOrCreate lazily materializes a zeroed stats row for the analyst.
// The insert is idempotent under concurrent callers.
func (r *PostgresAnalystStatsRepository) GetOrCreate(ctx context.Context, analyst string) (*models.AnalystStats, error) {
	insert := `
		INSERT INTO analyst_stats (analyst, total_memos, approved_count, win_count, total_return)
		VALUES ($1, 0, 0, 0, 0)
		ON CONFLICT (analyst) DO NOTHING
	`

	if _, err := r.db.Querier(ctx).Exec(ctx, insert, analyst); err != nil {
		return nil, fmt.Errorf("failed to create analyst stats: %w", err)
	}

	return r.GetByAnalyst(ctx, analyst)
}

// GetByAnalyst retrieves stats for one analyst
func (r *PostgresAnalystStatsRepository) GetByAnalyst(ctx context.Context, analyst string) (*models.AnalystStats, error) {
	query := `SELECT ` + statsColumns + ` FROM analyst_stats WHERE analyst = $1`

	stats := &models.AnalystStats{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, analyst).Scan(
		&stats.Analyst, &stats.TotalMemos, &stats.ApprovedCount, &stats.WinCount,
		&stats.TotalReturn, &stats.CreatedAt, &stats.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analyst stats: %w", err)
	}

	return stats, nil
}

// IncrementTotalMemos bumps the memo counter, creating the row if needed
func (r *PostgresAnalystStatsRepository) IncrementTotalMemos(ctx context.Context, analyst string) error {
	query := `
		INSERT INTO analyst_stats (analyst, total_memos, approved_count, win_count, total_return)
		VALUES ($1, 1, 0, 0, 0)
		ON CONFLICT (analyst) DO UPDATE
		SET total_memos = analyst_stats.total_memos + 1, updated_at = NOW()
	`

	if _, err := r.db.Querier(ctx).Exec(ctx, query, analyst); err != nil {
		return fmt.Errorf("failed to increment total memos: %w", err)
	}

	return nil
}

// IncrementApproved bumps the approved counter
func (r *PostgresAnalystStatsRepository) IncrementApproved(ctx context.Context, analyst string) error {
	query := `
		UPDATE analyst_stats
		SET approved_count = approved_count + 1, updated_at = NOW()
		WHERE analyst = $1
	`

	commandTag, err := r.db.Querier(ctx).Exec(ctx, query, analyst)
	if err != nil {
		return fmt.Errorf("failed to increment approved count: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// RecordCloseOutcome applies one closed investment to the counters:
// win_count advances only on wins, total_return accumulates the signed
// return either way.
func (r *PostgresAnalystStatsRepository) RecordCloseOutcome(ctx context.Context, analyst string, returnPct float64, isWin bool) error {
	query := `
		UPDATE analyst_stats
		SET win_count = win_count + $2,
		    total_return = total_return + $3,
		    updated_at = NOW()
		WHERE analyst = $1
	`

	winIncrement := 0
	if isWin {
		winIncrement = 1
	}

	commandTag, err := r.db.Querier(ctx).Exec(ctx, query, analyst, winIncrement, returnPct)
	if err != nil {
		return fmt.Errorf("failed to record close outcome: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Overwrite replaces all counters for an analyst, used by the stats
// reconciler after recomputing from closed investments.
func (r *PostgresAnalystStatsRepository) Overwrite(ctx context.Context, stats *models.AnalystStats) error {
	query := `
		INSERT INTO analyst_stats (analyst, total_memos, approved_count, win_count, total_return)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (analyst) DO UPDATE
		SET total_memos = EXCLUDED.total_memos,
		    approved_count = EXCLUDED.approved_count,
		    win_count = EXCLUDED.win_count,
		    total_return = EXCLUDED.total_return,
		    updated_at = NOW()
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		stats.Analyst, stats.TotalMemos, stats.ApprovedCount, stats.WinCount, stats.TotalReturn,
	)
	if err != nil {
		return fmt.Errorf("failed to overwrite analyst stats: %w", err)
	}

	return nil
}

// TopByReturn returns up to limit analysts with approvals ordered by
// cumulative return descending, sorted in the database.
func (r *PostgresAnalystStatsRepository) TopByReturn(ctx context.Context, limit int) ([]*models.AnalystStats, error) {
	query := `
		SELECT ` + statsColumns + `
		FROM analyst_stats
		WHERE approved_count > 0
		ORDER BY total_return DESC
		LIMIT $1
	`

	return r.queryStats(ctx, query, limit)
}

// ListWithApprovals returns up to limit analysts with at least one
// approval, in no particular order. Callers sort on derived rates.
func (r *PostgresAnalystStatsRepository) ListWithApprovals(ctx context.Context, limit int) ([]*models.AnalystStats, error) {
	query := `
		SELECT ` + statsColumns + `
		FROM analyst_stats
		WHERE approved_count > 0
		LIMIT $1
	`

	return r.queryStats(ctx, query, limit)
}

func (r *PostgresAnalystStatsRepository) queryStats(ctx context.Context, query string, args ...any) ([]*models.AnalystStats, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyst stats: %w", err)
	}
	defer rows.Close()

	var all []*models.AnalystStats
	for rows.Next() {
		stats := &models.AnalystStats{}
		err := rows.Scan(
			&stats.Analyst, &stats.TotalMemos, &stats.ApprovedCount, &stats.WinCount,
			&stats.TotalReturn, &stats.CreatedAt, &stats.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analyst stats: %w", err)
		}
		all = append(all, stats)
	}

	return all, rows.Err()
}
