package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	portssvc "github.com/velsh/expense_tracker_app/internal/core/ports/services"
	"github.com/velsh/expense_tracker_app/internal/core/ratecache"
	"github.com/velsh/expense_tracker_app/internal/core/services"
	"github.com/velsh/expense_tracker_app/internal/dto"
	"github.com/velsh/expense_tracker_app/internal/models"
)

type ConversionServiceTestSuite struct {
	suite.Suite
	cache              *ratecache.Cache
	mockHistoricalRepo *MockHistoricalRateRepository
	mockProvider       *MockRateProvider
	service            portssvc.ConversionSvcFacade
}

func (suite *ConversionServiceTestSuite) SetupTest() {
	suite.cache = ratecache.New(ratecache.Options{})
	suite.mockHistoricalRepo = new(MockHistoricalRateRepository)
	suite.mockProvider = new(MockRateProvider)
	suite.service = services.NewConversionService(suite.cache, suite.mockHistoricalRepo, suite.mockProvider, slog.Default())
}

func (suite *ConversionServiceTestSuite) TestSameCurrencyIsIdentityWithZeroInteraction() {
	ctx := context.Background()

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{
		Amount:    123.45,
		From:      "EUR",
		To:        "EUR",
		ExpenseID: "expense-1",
	})

	suite.Require().NoError(err)
	suite.Equal(123.45, converted)
	suite.mockHistoricalRepo.AssertNotCalled(suite.T(), "FindHistoricalRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockProvider.AssertNotCalled(suite.T(), "FetchLiveRate", mock.Anything, mock.Anything, mock.Anything)
	suite.Equal(0, suite.cache.Len())
}

func (suite *ConversionServiceTestSuite) TestHistoricalRateOutranksCachedAndLive() {
	ctx := context.Background()

	// All three sources available with distinguishable values: the frozen
	// historical rate must win.
	suite.mockHistoricalRepo.On("FindHistoricalRate", ctx, "expense-1", "USD", "EUR").
		Return(&models.HistoricalRate{Rate: 0.5}, nil).Once()
	suite.cache.Set("USD", "EUR", 0.7, ratecache.SourceAPI)
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "EUR").Return(0.9, nil).Maybe()

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{
		Amount:    100,
		From:      "USD",
		To:        "EUR",
		ExpenseID: "expense-1",
	})

	suite.Require().NoError(err)
	suite.Equal(50.0, converted)
	suite.mockProvider.AssertNotCalled(suite.T(), "FetchLiveRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ConversionServiceTestSuite) TestCachedRateUsedWithoutExpense() {
	ctx := context.Background()
	suite.cache.Set("USD", "EUR", 0.7, ratecache.SourceAPI)

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{Amount: 100, From: "USD", To: "EUR"})

	suite.Require().NoError(err)
	suite.Equal(70.0, converted)
	suite.mockProvider.AssertNotCalled(suite.T(), "FetchLiveRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ConversionServiceTestSuite) TestLiveRateFetchedOnCacheMiss() {
	ctx := context.Background()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "EUR").Return(0.95, nil).Once()

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{Amount: 100, From: "USD", To: "EUR"})

	suite.Require().NoError(err)
	suite.Equal(95.0, converted)

	// The fetched rate must now be cached.
	rate, ok := suite.cache.Get("USD", "EUR", false)
	suite.True(ok)
	suite.Equal(0.95, rate)
}

func (suite *ConversionServiceTestSuite) TestInverseRateUsedWhenDirectUnavailable() {
	ctx := context.Background()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "EUR").
		Return(0.0, apperrors.ErrRateUnavailable).Once()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "EUR", "USD").Return(2.0, nil).Once()

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{Amount: 100, From: "USD", To: "EUR"})

	suite.Require().NoError(err)
	suite.InDelta(50.0, converted, 1e-9)
}

func (suite *ConversionServiceTestSuite) TestInverseRateOfZeroIsNeverDivided() {
	ctx := context.Background()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "EUR").
		Return(0.0, apperrors.ErrRateUnavailable).Once()
	// A misbehaving provider returning zero must not cause a division.
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "EUR", "USD").Return(0.0, nil).Once()

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{Amount: 100, From: "USD", To: "EUR"})

	suite.Require().NoError(err)
	suite.Equal(100.0, converted)
}

func (suite *ConversionServiceTestSuite) TestIdentityFallbackWhenNoSourceAvailable() {
	ctx := context.Background()
	suite.mockHistoricalRepo.On("FindHistoricalRate", ctx, "expense-1", "USD", "XXX").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "XXX").
		Return(0.0, apperrors.ErrRateUnavailable).Once()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "XXX", "USD").
		Return(0.0, apperrors.ErrRateUnavailable).Once()

	converted, err := suite.service.Convert(ctx, dto.ConversionRequest{
		Amount:    42.0,
		From:      "USD",
		To:        "XXX",
		ExpenseID: "expense-1",
	})

	suite.Require().NoError(err, "reporting conversions must never fail")
	suite.Equal(42.0, converted)
}

func (suite *ConversionServiceTestSuite) TestStrictModeSurfacesRateUnavailable() {
	ctx := context.Background()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "XXX").
		Return(0.0, apperrors.ErrRateUnavailable).Once()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "XXX", "USD").
		Return(0.0, apperrors.ErrRateUnavailable).Once()

	_, err := suite.service.Convert(ctx, dto.ConversionRequest{
		Amount: 42.0,
		From:   "USD",
		To:     "XXX",
		Strict: true,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)
}

func (suite *ConversionServiceTestSuite) TestFrozenRateSurvivesLiveRateChange() {
	ctx := context.Background()

	// Day 1: a 100 USD expense froze USD->EUR at 0.90. The next day the live
	// rate moves to 0.95; the old expense must still report 90 EUR while a
	// new expense converts at the new rate.
	suite.mockHistoricalRepo.On("FindHistoricalRate", ctx, "old-expense", "USD", "EUR").
		Return(&models.HistoricalRate{Rate: 0.90}, nil).Once()
	suite.mockHistoricalRepo.On("FindHistoricalRate", ctx, "new-expense", "USD", "EUR").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProvider.On("FetchLiveRate", mock.Anything, "USD", "EUR").Return(0.95, nil).Once()

	oldAmount, err := suite.service.Convert(ctx, dto.ConversionRequest{
		Amount: 100, From: "USD", To: "EUR", ExpenseID: "old-expense",
	})
	suite.Require().NoError(err)
	suite.InDelta(90.0, oldAmount, 1e-9)

	newAmount, err := suite.service.Convert(ctx, dto.ConversionRequest{
		Amount: 100, From: "USD", To: "EUR", ExpenseID: "new-expense",
	})
	suite.Require().NoError(err)
	suite.InDelta(95.0, newAmount, 1e-9)
}

func (suite *ConversionServiceTestSuite) TearDownTest() {
	suite.mockHistoricalRepo.AssertExpectations(suite.T())
	suite.mockProvider.AssertExpectations(suite.T())
}

func TestConversionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConversionServiceTestSuite))
}
