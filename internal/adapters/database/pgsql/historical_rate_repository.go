package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	"github.com/velsh/expense_tracker_app/internal/models"
)

// PgxHistoricalRateRepository implements the repositories.HistoricalRateRepository
// interface using pgxpool. The historical_rates table carries a unique index on
// (expense_id, from_currency, to_currency); inserts use ON CONFLICT DO NOTHING so
// that two concurrent writers racing the same check-then-insert window cannot
// produce duplicates or errors. First writer wins, later writes are ignored.
type PgxHistoricalRateRepository struct {
	db *pgxpool.Pool
}

func newPgxHistoricalRateRepository(db *pgxpool.Pool) *PgxHistoricalRateRepository {
	return &PgxHistoricalRateRepository{db: db}
}

// FindHistoricalRate retrieves the frozen rate for one expense and pair.
func (r *PgxHistoricalRateRepository) FindHistoricalRate(ctx context.Context, expenseID, fromCurrency, toCurrency string) (*models.HistoricalRate, error) {
	query := `
		SELECT historical_rate_id, expense_id, from_currency, to_currency, rate, recorded_at, created_at
		FROM historical_rates
		WHERE expense_id = $1 AND from_currency = $2 AND to_currency = $3
	`
	rate := &models.HistoricalRate{}
	err := r.db.QueryRow(ctx, query, expenseID, fromCurrency, toCurrency).Scan(
		&rate.HistoricalRateID, &rate.ExpenseID, &rate.FromCurrency, &rate.ToCurrency,
		&rate.Rate, &rate.RecordedAt, &rate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding historical rate: %w", err)
	}
	return rate, nil
}

// CountHistoricalRatesForExpense reports how many frozen rates an expense has.
func (r *PgxHistoricalRateRepository) CountHistoricalRatesForExpense(ctx context.Context, expenseID string) (int, error) {
	query := `SELECT COUNT(*) FROM historical_rates WHERE expense_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, expenseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting historical rates: %w", err)
	}
	return count, nil
}

// CreateHistoricalRates inserts a batch of frozen rates for one expense.
// Conflicting rows are silently skipped, never overwritten.
func (r *PgxHistoricalRateRepository) CreateHistoricalRates(ctx context.Context, rates []models.HistoricalRate) error {
	if len(rates) == 0 {
		return nil
	}

	query := `
		INSERT INTO historical_rates (
			historical_rate_id, expense_id, from_currency, to_currency, rate, recorded_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (expense_id, from_currency, to_currency) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rate := range rates {
		batch.Queue(query,
			rate.HistoricalRateID, rate.ExpenseID, rate.FromCurrency, rate.ToCurrency,
			rate.Rate, rate.RecordedAt, rate.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range rates {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("error inserting historical rates: %w", err)
		}
	}
	return nil
}
