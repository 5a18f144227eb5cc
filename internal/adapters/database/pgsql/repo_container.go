package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/velsh/expense_tracker_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExpenseRepo:        newPgxExpenseRepository(dbPool),
		HistoricalRateRepo: newPgxHistoricalRateRepository(dbPool),
		RateHistoryRepo:    newPgxRateHistoryRepository(dbPool),
	}
}

// Compile-time interface checks.
var (
	_ portsrepo.ExpenseRepository        = (*PgxExpenseRepository)(nil)
	_ portsrepo.HistoricalRateRepository = (*PgxHistoricalRateRepository)(nil)
	_ portsrepo.RateHistoryRepository    = (*PgxRateHistoryRepository)(nil)
)
