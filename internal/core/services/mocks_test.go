package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/velsh/expense_tracker_app/internal/dto"
	"github.com/velsh/expense_tracker_app/internal/models"
)

// --- Mock ExpenseRepository ---

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAllExpensesForMigration(ctx context.Context, limit, offset int) ([]models.Expense, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Expense), args.Error(1)
}

// --- Mock HistoricalRateRepository ---

type MockHistoricalRateRepository struct {
	mock.Mock
}

func (m *MockHistoricalRateRepository) FindHistoricalRate(ctx context.Context, expenseID, fromCurrency, toCurrency string) (*models.HistoricalRate, error) {
	args := m.Called(ctx, expenseID, fromCurrency, toCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoricalRate), args.Error(1)
}

func (m *MockHistoricalRateRepository) CountHistoricalRatesForExpense(ctx context.Context, expenseID string) (int, error) {
	args := m.Called(ctx, expenseID)
	return args.Int(0), args.Error(1)
}

func (m *MockHistoricalRateRepository) CreateHistoricalRates(ctx context.Context, rates []models.HistoricalRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

// --- Mock RateHistoryRepository ---

type MockRateHistoryRepository struct {
	mock.Mock
}

func (m *MockRateHistoryRepository) FindClosestRateInWindow(ctx context.Context, fromCurrency, toCurrency string, date time.Time, maxDaysDiff int) (*models.RatePoint, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date, maxDaysDiff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatePoint), args.Error(1)
}

func (m *MockRateHistoryRepository) LatestFetchTime(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRateHistoryRepository) SaveRatePoints(ctx context.Context, points []models.RatePoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

// --- Mock RateProvider ---

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchLiveRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	args := m.Called(ctx, fromCurrency, toCurrency)
	return args.Get(0).(float64), args.Error(1)
}

// --- Mock ConversionService ---

type MockConversionService struct {
	mock.Mock
}

func (m *MockConversionService) Convert(ctx context.Context, req dto.ConversionRequest) (float64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockConversionService) FetchCurrentRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	args := m.Called(ctx, fromCurrency, toCurrency)
	return args.Get(0).(float64), args.Error(1)
}

func floatPtr(f float64) *float64 {
	return &f
}
