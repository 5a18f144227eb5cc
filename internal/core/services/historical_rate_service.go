package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	portsrepo "github.com/velsh/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/velsh/expense_tracker_app/internal/core/ports/services"
	"github.com/velsh/expense_tracker_app/internal/models"
)

// asyncSaveTimeout bounds the detached snapshot goroutine so an unresponsive
// provider cannot leak goroutines.
const asyncSaveTimeout = 15 * time.Second

// historicalRateService owns the durable, append-only record of the rate in
// force per expense.
type historicalRateService struct {
	historicalRepo portsrepo.HistoricalRateRepository
	expenseRepo    portsrepo.ExpenseRepository
	conversion     portssvc.ConversionSvcFacade
	baseCurrency   string
	logger         *slog.Logger
}

// NewHistoricalRateService creates the historical-rate store service.
func NewHistoricalRateService(historicalRepo portsrepo.HistoricalRateRepository, expenseRepo portsrepo.ExpenseRepository, conversion portssvc.ConversionSvcFacade, baseCurrency string, logger *slog.Logger) *historicalRateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &historicalRateService{
		historicalRepo: historicalRepo,
		expenseRepo:    expenseRepo,
		conversion:     conversion,
		baseCurrency:   baseCurrency,
		logger:         logger,
	}
}

// GetRate returns the frozen rate for an expense and pair. Same-currency
// conversion is always 1 and never touches the store. A missing row is a
// legitimate state meaning "fall back to the current rate" and surfaces as
// apperrors.ErrNotFound.
func (s *historicalRateService) GetRate(ctx context.Context, expenseID, fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1, nil
	}
	rate, err := s.historicalRepo.FindHistoricalRate(ctx, expenseID, fromCurrency, toCurrency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get historical rate: %w", err)
	}
	return rate.Rate, nil
}

// SaveRatesForExpense freezes the rate from the expense's currency to the
// base currency as of recordedAt. Expenses already in the base currency need
// no rate, and an expense that already has rates is left untouched. A rate
// fetch failure is logged and swallowed: the snapshot is best effort and must
// never abort the expense write that triggered it. Only a persistence failure
// is returned.
func (s *historicalRateService) SaveRatesForExpense(ctx context.Context, expenseID string, recordedAt time.Time) error {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to load expense %s for rate snapshot: %w", expenseID, err)
	}

	if expense.Currency == s.baseCurrency {
		return nil
	}

	count, err := s.historicalRepo.CountHistoricalRatesForExpense(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to check existing rates for expense %s: %w", expenseID, err)
	}
	if count > 0 {
		return nil
	}

	rate, err := s.conversion.FetchCurrentRate(ctx, expense.Currency, s.baseCurrency)
	if err != nil {
		s.logger.Warn("could not fetch live rate for expense snapshot, skipping",
			slog.String("expense_id", expenseID),
			slog.String("from", expense.Currency),
			slog.String("to", s.baseCurrency),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if rate <= 0 {
		return nil
	}

	now := time.Now()
	row := models.HistoricalRate{
		HistoricalRateID: uuid.NewString(),
		ExpenseID:        expenseID,
		FromCurrency:     expense.Currency,
		ToCurrency:       s.baseCurrency,
		Rate:             rate,
		RecordedAt:       recordedAt,
		CreatedAt:        now,
	}
	if err := s.historicalRepo.CreateHistoricalRates(ctx, []models.HistoricalRate{row}); err != nil {
		return fmt.Errorf("failed to persist historical rate for expense %s: %w", expenseID, err)
	}
	return nil
}

// SaveRatesForExpenseAsync runs the snapshot in a detached goroutine with its
// own deadline. Errors land in the log, never at the caller: the expense write
// succeeds regardless of what happens here.
func (s *historicalRateService) SaveRatesForExpenseAsync(expenseID string, recordedAt time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncSaveTimeout)
		defer cancel()
		if err := s.SaveRatesForExpense(ctx, expenseID, recordedAt); err != nil {
			s.logger.Error("async historical rate snapshot failed",
				slog.String("expense_id", expenseID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
