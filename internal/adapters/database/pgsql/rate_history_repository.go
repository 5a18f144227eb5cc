package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	"github.com/velsh/expense_tracker_app/internal/models"
)

// PgxRateHistoryRepository implements the repositories.RateHistoryRepository
// interface using pgxpool over the general rate_history table.
type PgxRateHistoryRepository struct {
	db *pgxpool.Pool
}

func newPgxRateHistoryRepository(db *pgxpool.Pool) *PgxRateHistoryRepository {
	return &PgxRateHistoryRepository{db: db}
}

// FindClosestRateInWindow returns the rate point nearest to date for the pair,
// as long as it is within maxDaysDiff days on either side.
func (r *PgxRateHistoryRepository) FindClosestRateInWindow(ctx context.Context, fromCurrency, toCurrency string, date time.Time, maxDaysDiff int) (*models.RatePoint, error) {
	window := time.Duration(maxDaysDiff) * 24 * time.Hour
	query := `
		SELECT rate_point_id, from_currency, to_currency, rate, fetched_at
		FROM rate_history
		WHERE from_currency = $1 AND to_currency = $2
		  AND fetched_at BETWEEN $3 AND $4
		ORDER BY ABS(EXTRACT(EPOCH FROM (fetched_at - $5::timestamptz)))
		LIMIT 1
	`
	point := &models.RatePoint{}
	err := r.db.QueryRow(ctx, query, fromCurrency, toCurrency, date.Add(-window), date.Add(window), date).Scan(
		&point.RatePointID, &point.FromCurrency, &point.ToCurrency, &point.Rate, &point.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding closest rate in window: %w", err)
	}
	return point, nil
}

// LatestFetchTime returns the newest observation timestamp across all pairs.
func (r *PgxRateHistoryRepository) LatestFetchTime(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(fetched_at) FROM rate_history`
	var latest *time.Time
	if err := r.db.QueryRow(ctx, query).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("error reading latest rate fetch time: %w", err)
	}
	if latest == nil {
		return time.Time{}, apperrors.ErrNotFound
	}
	return *latest, nil
}

// SaveRatePoints appends a batch of observed rates.
func (r *PgxRateHistoryRepository) SaveRatePoints(ctx context.Context, points []models.RatePoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO rate_history (rate_point_id, from_currency, to_currency, rate, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	batch := &pgx.Batch{}
	for _, point := range points {
		batch.Queue(query, point.RatePointID, point.FromCurrency, point.ToCurrency, point.Rate, point.FetchedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range points {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("error inserting rate points: %w", err)
		}
	}
	return nil
}
