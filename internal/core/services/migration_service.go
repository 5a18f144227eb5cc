package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	portsrepo "github.com/velsh/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/velsh/expense_tracker_app/internal/core/ports/services"
	"github.com/velsh/expense_tracker_app/internal/dto"
	"github.com/velsh/expense_tracker_app/internal/models"
)

// DefaultRateWindowDays bounds the closest-historical-rate search around an
// expense's date during backfill.
const DefaultRateWindowDays = 30

// migrationService reconstructs historical rates for expenses recorded before
// per-expense rate snapshots existed. It never overwrites existing rows.
type migrationService struct {
	expenseRepo         portsrepo.ExpenseRepository
	historicalRepo      portsrepo.HistoricalRateRepository
	rateHistoryRepo     portsrepo.RateHistoryRepository
	conversion          portssvc.ConversionSvcFacade
	baseCurrency        string
	supportedCurrencies []string
	batchSize           int
	rateWindowDays      int
	logger              *slog.Logger
}

// NewMigrationService creates the backfill job. supportedCurrencies is the
// configuration-owned list of currencies the job tries to cover per expense;
// the core itself never validates codes.
func NewMigrationService(
	expenseRepo portsrepo.ExpenseRepository,
	historicalRepo portsrepo.HistoricalRateRepository,
	rateHistoryRepo portsrepo.RateHistoryRepository,
	conversion portssvc.ConversionSvcFacade,
	baseCurrency string,
	supportedCurrencies []string,
	batchSize int,
	logger *slog.Logger,
) *migrationService {
	if batchSize <= 0 {
		batchSize = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &migrationService{
		expenseRepo:         expenseRepo,
		historicalRepo:      historicalRepo,
		rateHistoryRepo:     rateHistoryRepo,
		conversion:          conversion,
		baseCurrency:        baseCurrency,
		supportedCurrencies: supportedCurrencies,
		batchSize:           batchSize,
		rateWindowDays:      DefaultRateWindowDays,
		logger:              logger,
	}
}

// MigrateExistingExpenses scans the expense collection in batches and writes
// frozen rates for every expense that has none yet. Per-pair and per-expense
// failures are accumulated into the result's Errors list; one expense's
// irrecoverable failure never aborts the batch. Skipped covers both "already
// had rates" and "failed for that expense".
func (s *migrationService) MigrateExistingExpenses(ctx context.Context) *dto.MigrationResult {
	start := time.Now()
	result := &dto.MigrationResult{Errors: []string{}}

	offset := 0
	for {
		expenses, err := s.expenseRepo.FindAllExpensesForMigration(ctx, s.batchSize, offset)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to list expenses at offset %d: %v", offset, err))
			break
		}
		if len(expenses) == 0 {
			break
		}

		for i := range expenses {
			result.TotalExpenses++
			s.migrateExpense(ctx, &expenses[i], result)
		}

		if len(expenses) < s.batchSize {
			break
		}
		offset += s.batchSize
	}

	result.DurationMs = time.Since(start).Milliseconds()
	s.logger.Info("historical rate migration finished",
		slog.Int("total", result.TotalExpenses),
		slog.Int("migrated", result.MigratedExpenses),
		slog.Int("skipped", result.SkippedExpenses),
		slog.Int("errors", len(result.Errors)),
		slog.Int64("duration_ms", result.DurationMs),
	)
	return result
}

func (s *migrationService) migrateExpense(ctx context.Context, expense *models.Expense, result *dto.MigrationResult) {
	count, err := s.historicalRepo.CountHistoricalRatesForExpense(ctx, expense.ExpenseID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("expense %s: failed to check existing rates: %v", expense.ExpenseID, err))
		result.SkippedExpenses++
		return
	}
	if count > 0 {
		result.SkippedExpenses++
		return
	}

	now := time.Now()
	var rows []models.HistoricalRate
	covered := make(map[string]bool)

	appendRow := func(from, to string, rate float64) {
		if rate <= 0 || covered[from+":"+to] {
			return
		}
		rows = append(rows, models.HistoricalRate{
			HistoricalRateID: uuid.NewString(),
			ExpenseID:        expense.ExpenseID,
			FromCurrency:     from,
			ToCurrency:       to,
			Rate:             rate,
			RecordedAt:       expense.Date,
			CreatedAt:        now,
		})
		covered[from+":"+to] = true
	}

	// The legacy inline rate to the base currency is authoritative when
	// present; its inverse is derived rather than re-fetched.
	if expense.ConversionRate != nil && *expense.ConversionRate > 0 && expense.Currency != s.baseCurrency {
		appendRow(expense.Currency, s.baseCurrency, *expense.ConversionRate)
		appendRow(s.baseCurrency, expense.Currency, 1 / *expense.ConversionRate)
	}

	for _, target := range s.supportedCurrencies {
		if target == expense.Currency || covered[expense.Currency+":"+target] {
			continue
		}
		rate, err := s.resolveRate(ctx, expense.Currency, target, expense.Date)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("expense %s: pair %s->%s: %v", expense.ExpenseID, expense.Currency, target, err))
			continue
		}
		appendRow(expense.Currency, target, rate)
	}

	if len(rows) == 0 {
		result.SkippedExpenses++
		return
	}

	if err := s.historicalRepo.CreateHistoricalRates(ctx, rows); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("expense %s: failed to persist rates: %v", expense.ExpenseID, err))
		result.SkippedExpenses++
		return
	}
	result.MigratedExpenses++
}

// resolveRate prefers the closest previously-recorded rate within the window
// around the expense date, then falls back to a live provider call. The
// historical-window match deliberately outranks the live call so that
// backfilled figures stay stable across reruns.
func (s *migrationService) resolveRate(ctx context.Context, from, to string, date time.Time) (float64, error) {
	point, err := s.rateHistoryRepo.FindClosestRateInWindow(ctx, from, to, date, s.rateWindowDays)
	if err == nil && point.Rate > 0 {
		return point.Rate, nil
	}

	rate, err := s.conversion.FetchCurrentRate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return rate, nil
}
