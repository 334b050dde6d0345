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

const investmentColumns = `
	id, memo_id, ticker, analyst, signal, entry_price, entry_date,
	status, exit_price, exit_date, created_at, updated_at`

// PostgresInvestmentRepository implements InvestmentRepository for PostgreSQL
type PostgresInvestmentRepository struct {
	db *database.DB
}

// NewPostgresInvestmentRepository creates a new investment repository
func NewPostgresInvestmentRepository(db *database.DB) InvestmentRepository {
	return &PostgresInvestmentRepository{db: db}
}

// Create inserts a new investment
func (r *PostgresInvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	query := `
		INSERT INTO investments (id, memo_id, ticker, analyst, signal, entry_price, entry_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		inv.ID, inv.MemoID, inv.Ticker, inv.Analyst, inv.Signal,
		inv.EntryPrice, inv.EntryDate, inv.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}

	return nil
}

// GetByID retrieves an investment by ID
func (r *PostgresInvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`
	return r.scanOne(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

// GetForUpdate retrieves an investment by ID with a row lock. Must run
// inside a transaction.
func (r *PostgresInvestmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

// GetByMemoID retrieves the investment created from a memo
func (r *PostgresInvestmentRepository) GetByMemoID(ctx context.Context, memoID uuid.UUID) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE memo_id = $1`
	return r.scanOne(r.db.Querier(ctx).QueryRow(ctx, query, memoID))
}

// Close marks an active investment closed with exit price and date
func (r *PostgresInvestmentRepository) Close(ctx context.Context, id uuid.UUID, exitPrice float64, exitDate time.Time) error {
	query := `
		UPDATE investments
		SET status = 'closed', exit_price = $2, exit_date = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	commandTag, err := r.db.Querier(ctx).Exec(ctx, query, id, exitPrice, exitDate)
	if err != nil {
		return fmt.Errorf("failed to close investment: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// List retrieves investments matching the filter with 1-indexed
// pagination, newest entries first.
func (r *PostgresInvestmentRepository) List(ctx context.Context, filter InvestmentFilter, page, pageSize int) ([]*models.Investment, int, error) {
	where, args := buildInvestmentWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM investments` + where
	if err := r.db.Querier(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count investments: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM investments%s ORDER BY entry_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		investmentColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	invs, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}

	return invs, total, rows.Err()
}

// GetClosedByAnalyst retrieves all closed investments for an analyst.
// This is the ground truth for stats reconciliation.
func (r *PostgresInvestmentRepository) GetClosedByAnalyst(ctx context.Context, analyst string) ([]*models.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE analyst = $1 AND status = 'closed'
		ORDER BY exit_date ASC
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, analyst)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed investments: %w", err)
	}
	defer rows.Close()

	invs, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}

	return invs, rows.Err()
}

// GetActive retrieves all open investments
func (r *PostgresInvestmentRepository) GetActive(ctx context.Context) ([]*models.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE status = 'active'
		ORDER BY entry_date ASC
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active investments: %w", err)
	}
	defer rows.Close()

	invs, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}

	return invs, rows.Err()
}

func buildInvestmentWhere(filter InvestmentFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Analyst != "" {
		add("analyst = $%d", filter.Analyst)
	}
	if filter.Ticker != "" {
		add("ticker = $%d", filter.Ticker)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func (r *PostgresInvestmentRepository) scanOne(row pgx.Row) (*models.Investment, error) {
	inv := &models.Investment{}
	err := row.Scan(
		&inv.ID, &inv.MemoID, &inv.Ticker, &inv.Analyst, &inv.Signal,
		&inv.EntryPrice, &inv.EntryDate, &inv.Status, &inv.ExitPrice, &inv.ExitDate,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	return inv, nil
}

func (r *PostgresInvestmentRepository) scanAll(rows pgx.Rows) ([]*models.Investment, error) {
	var invs []*models.Investment
	for rows.Next() {
		inv := &models.Investment{}
		err := rows.Scan(
			&inv.ID, &inv.MemoID, &inv.Ticker, &inv.Analyst, &inv.Signal,
			&inv.EntryPrice, &inv.EntryDate, &inv.Status, &inv.ExitPrice, &inv.ExitDate,
			&inv.CreatedAt, &inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, nil
}
