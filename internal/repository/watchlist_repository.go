package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/models"
)

// PostgresWatchlistRepository implements WatchlistRepository for PostgreSQL
type PostgresWatchlistRepository struct {
	db *database.DB
}

// NewPostgresWatchlistRepository creates a new watchlist repository
func NewPostgresWatchlistRepository(db *database.DB) WatchlistRepository {
	return &PostgresWatchlistRepository{db: db}
}

// Create inserts a new watchlist
func (r *PostgresWatchlistRepository) Create(ctx context.Context, wl *models.Watchlist) error {
	query := `
		INSERT INTO watchlists (id, name, tickers)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query, wl.ID, wl.Name, wl.Tickers)
	if err != nil {
		return fmt.Errorf("failed to create watchlist: %w", err)
	}

	return nil
}

// GetByName retrieves a watchlist by its unique name
func (r *PostgresWatchlistRepository) GetByName(ctx context.Context, name string) (*models.Watchlist, error) {
	query := `
		SELECT id, name, tickers, last_scan_at, created_at, updated_at
		FROM watchlists WHERE name = $1
	`

	wl := &models.Watchlist{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, name).Scan(
		&wl.ID, &wl.Name, &wl.Tickers, &wl.LastScanAt, &wl.CreatedAt, &wl.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}

	return wl, nil
}

// GetOrCreate retrieves a watchlist, creating an empty one if absent.
// The insert is idempotent under concurrent callers.
func (r *PostgresWatchlistRepository) GetOrCreate(ctx context.Context, name string) (*models.Watchlist, error) {
	insert := `
		INSERT INTO watchlists (id, name, tickers)
		VALUES ($1, $2, '{}')
		ON CONFLICT (name) DO NOTHING
	`

	if _, err := r.db.Querier(ctx).Exec(ctx, insert, uuid.New(), name); err != nil {
		return nil, fmt.Errorf("failed to create watchlist: %w", err)
	}

	return r.GetByName(ctx, name)
}

// UpdateTickers replaces the ticker set of a watchlist
func (r *PostgresWatchlistRepository) UpdateTickers(ctx context.Context, name string, tickers []string) error {
	query := `
		UPDATE watchlists
		SET tickers = $2, updated_at = NOW()
		WHERE name = $1
	`

	commandTag, err := r.db.Querier(ctx).Exec(ctx, query, name, tickers)
	if err != nil {
		return fmt.Errorf("failed to update watchlist tickers: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// MarkScanned stamps the last scan time on a watchlist
func (r *PostgresWatchlistRepository) MarkScanned(ctx context.Context, name string, scannedAt time.Time) error {
	query := `
		UPDATE watchlists
		SET last_scan_at = $2, updated_at = NOW()
		WHERE name = $1
	`

	commandTag, err := r.db.Querier(ctx).Exec(ctx, query, name, scannedAt)
	if err != nil {
		return fmt.Errorf("failed to mark watchlist scanned: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a watchlist
func (r *PostgresWatchlistRepository) Delete(ctx context.Context, name string) error {
	commandTag, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM watchlists WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
