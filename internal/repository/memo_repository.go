package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/models"
)

const memoColumns = `
	id, ticker, analyst, signal, conviction, thesis, bull_case, bear_case,
	key_metrics, current_price, target_price, time_horizon, generated_at,
	status, reviewed_at, catalysts, conviction_breakdown, macro_context,
	position_sizing, created_at, updated_at`

// PostgresMemoRepository implements MemoRepository for PostgreSQL
type PostgresMemoRepository struct {
	db *database.DB
}

// NewPostgresMemoRepository creates a new memo repository
func NewPostgresMemoRepository(db *database.DB) MemoRepository {
	return &PostgresMemoRepository{db: db}
}

// Create inserts a new memo
func (r *PostgresMemoRepository) Create(ctx context.Context, memo *models.InvestmentMemo) error {
	query := `
		INSERT INTO investment_memos (id, ticker, analyst, signal, conviction, thesis,
		                              bull_case, bear_case, key_metrics, current_price,
		                              target_price, time_horizon, generated_at, status,
		                              catalysts, conviction_breakdown, macro_context, position_sizing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	bullCase, err := json.Marshal(memo.BullCase)
	if err != nil {
		return fmt.Errorf("failed to marshal bull case: %w", err)
	}
	bearCase, err := json.Marshal(memo.BearCase)
	if err != nil {
		return fmt.Errorf("failed to marshal bear case: %w", err)
	}
	keyMetrics, err := json.Marshal(memo.KeyMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal key metrics: %w", err)
	}
	catalysts, err := marshalNullable(memo.Catalysts)
	if err != nil {
		return fmt.Errorf("failed to marshal catalysts: %w", err)
	}
	breakdown, err := marshalNullable(memo.ConvictionBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal conviction breakdown: %w", err)
	}
	macro, err := marshalNullablePtr(memo.MacroContext)
	if err != nil {
		return fmt.Errorf("failed to marshal macro context: %w", err)
	}
	sizing, err := marshalNullablePtr(memo.PositionSizing)
	if err != nil {
		return fmt.Errorf("failed to marshal position sizing: %w", err)
	}

	_, err = r.db.Querier(ctx).Exec(ctx, query,
		memo.ID, memo.Ticker, memo.Analyst, memo.Signal, memo.Conviction, memo.Thesis,
		bullCase, bearCase, keyMetrics, memo.CurrentPrice,
		memo.TargetPrice, memo.TimeHorizon, memo.GeneratedAt, memo.Status,
		catalysts, breakdown, macro, sizing,
	)
	if err != nil {
		return fmt.Errorf("failed to create memo: %w", err)
	}

	return nil
}

// GetByID retrieves a memo by ID
func (r *PostgresMemoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error) {
	query := `SELECT ` + memoColumns + ` FROM investment_memos WHERE id = $1`
	return r.scanOne(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

// GetForUpdate retrieves a memo by ID with a row lock. Must run inside
// a transaction.
func (r *PostgresMemoRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error) {
	query := `SELECT ` + memoColumns + ` FROM investment_memos WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

// MarkReviewed moves a memo to a terminal status, stamping reviewed_at
func (r *PostgresMemoRepository) MarkReviewed(ctx context.Context, id uuid.UUID, status models.MemoStatus, reviewedAt time.Time) error {
	query := `
		UPDATE investment_memos
		SET status = $2, reviewed_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	commandTag, err := r.db.Querier(ctx).Exec(ctx, query, id, status, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to mark memo reviewed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// List retrieves memos matching the filter with 1-indexed pagination,
// newest first. Returns the page of memos and the total match count.
func (r *PostgresMemoRepository) List(ctx context.Context, filter MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error) {
	where, args := buildMemoWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM investment_memos` + where
	if err := r.db.Querier(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count memos: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM investment_memos%s ORDER BY generated_at DESC LIMIT $%d OFFSET $%d`,
		memoColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query memos: %w", err)
	}
	defer rows.Close()

	var memos []*models.InvestmentMemo
	for rows.Next() {
		memo, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		memos = append(memos, memo)
	}

	return memos, total, rows.Err()
}

// CountByAnalyst returns total and approved memo counts for the analyst
func (r *PostgresMemoRepository) CountByAnalyst(ctx context.Context, analyst string) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'approved')
		FROM investment_memos
		WHERE analyst = $1
	`

	var total, approved int
	err := r.db.Querier(ctx).QueryRow(ctx, query, analyst).Scan(&total, &approved)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count memos by analyst: %w", err)
	}

	return total, approved, nil
}

func buildMemoWhere(filter MemoFilter) (string, []any) {
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
	if filter.Signal != "" {
		add("signal = $%d", filter.Signal)
	}
	if filter.Ticker != "" {
		add("ticker = $%d", filter.Ticker)
	}
	if filter.MinConviction != nil {
		add("conviction >= $%d", *filter.MinConviction)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresMemoRepository) scanOne(row pgx.Row) (*models.InvestmentMemo, error) {
	memo, err := r.scanRow(row)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memo: %w", err)
	}
	return memo, nil
}

func (r *PostgresMemoRepository) scanRow(row rowScanner) (*models.InvestmentMemo, error) {
	memo := &models.InvestmentMemo{}
	var bullCase, bearCase, keyMetrics, catalysts, breakdown, macro, sizing []byte

	err := row.Scan(
		&memo.ID, &memo.Ticker, &memo.Analyst, &memo.Signal, &memo.Conviction, &memo.Thesis,
		&bullCase, &bearCase, &keyMetrics, &memo.CurrentPrice, &memo.TargetPrice,
		&memo.TimeHorizon, &memo.GeneratedAt, &memo.Status, &memo.ReviewedAt,
		&catalysts, &breakdown, &macro, &sizing, &memo.CreatedAt, &memo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(bullCase, &memo.BullCase); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bull case: %w", err)
	}
	if err := json.Unmarshal(bearCase, &memo.BearCase); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bear case: %w", err)
	}
	if len(keyMetrics) > 0 {
		if err := json.Unmarshal(keyMetrics, &memo.KeyMetrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key metrics: %w", err)
		}
	}
	if len(catalysts) > 0 {
		if err := json.Unmarshal(catalysts, &memo.Catalysts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalysts: %w", err)
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &memo.ConvictionBreakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conviction breakdown: %w", err)
		}
	}
	if len(macro) > 0 {
		if err := json.Unmarshal(macro, &memo.MacroContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal macro context: %w", err)
		}
	}
	if len(sizing) > 0 {
		if err := json.Unmarshal(sizing, &memo.PositionSizing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal position sizing: %w", err)
		}
	}

	return memo, nil
}

// marshalNullable marshals a slice to JSON, returning nil (SQL NULL)
// for empty slices.
func marshalNullable[T any](v []T) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

// marshalNullablePtr marshals a pointer to JSON, returning nil for nil.
func marshalNullablePtr[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
