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

// PgxExpenseRepository implements the repositories.ExpenseRepository interface using pgxpool.
type PgxExpenseRepository struct {
	db *pgxpool.Pool
}

func newPgxExpenseRepository(db *pgxpool.Pool) *PgxExpenseRepository {
	return &PgxExpenseRepository{db: db}
}

// FindExpenseByID retrieves a single expense record.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error) {
	query := `
		SELECT
			expense_id, user_id, description, amount, currency, conversion_rate, expense_date,
			created_at, created_by, last_updated_at, last_updated_by
		FROM expenses
		WHERE expense_id = $1
	`
	expense := &models.Expense{}
	err := r.db.QueryRow(ctx, query, expenseID).Scan(
		&expense.ExpenseID, &expense.UserID, &expense.Description, &expense.Amount,
		&expense.Currency, &expense.ConversionRate, &expense.Date,
		&expense.CreatedAt, &expense.CreatedBy, &expense.LastUpdatedAt, &expense.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding expense: %w", err)
	}
	return expense, nil
}

// FindAllExpensesForMigration pages through expenses in creation order so the
// backfill job sees a stable sequence across batches.
func (r *PgxExpenseRepository) FindAllExpensesForMigration(ctx context.Context, limit, offset int) ([]models.Expense, error) {
	query := `
		SELECT
			expense_id, user_id, description, amount, currency, conversion_rate, expense_date,
			created_at, created_by, last_updated_at, last_updated_by
		FROM expenses
		ORDER BY created_at, expense_id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses for migration: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var expense models.Expense
		err := rows.Scan(
			&expense.ExpenseID, &expense.UserID, &expense.Description, &expense.Amount,
			&expense.Currency, &expense.ConversionRate, &expense.Date,
			&expense.CreatedAt, &expense.CreatedBy, &expense.LastUpdatedAt, &expense.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning expense row: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}
	return expenses, nil
}
