package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

// CandleRepository handles database operations for candle data
type CandleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCandleRepository creates a new candle repository
func NewCandleRepository(db *sqlx.DB, logger *zap.Logger) *CandleRepository {
	return &CandleRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertCandles inserts a batch of candles, updating rows that already exist
func (r *CandleRepository) UpsertCandles(ctx context.Context, series *model.CandleSeries) error {
	if series == nil || series.Len() == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO candles (symbol, timeframe, open_time, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol, timeframe, open_time)
		DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range series.Candles {
		_, err = stmt.ExecContext(
			ctx,
			series.Symbol,
			series.Timeframe.String(),
			c.OpenTime,
			c.Open,
			c.High,
			c.Low,
			c.Close,
			c.Volume,
			now,
		)
		if err != nil {
			r.logger.Error("Failed to upsert candle",
				zap.Error(err),
				zap.String("symbol", series.Symbol),
				zap.Time("open_time", c.OpenTime))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// GetCandles retrieves candles for a symbol and timeframe ordered by open time
func (r *CandleRepository) GetCandles(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	startDate *time.Time,
	endDate *time.Time,
	limit *int,
) (*model.CandleSeries, error) {
	query := `
		SELECT open_time, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
	`

	args := []interface{}{symbol, timeframe.String()}
	argCount := 3

	if startDate != nil {
		query += fmt.Sprintf(" AND open_time >= $%d", argCount)
		args = append(args, *startDate)
		argCount++
	}

	if endDate != nil {
		query += fmt.Sprintf(" AND open_time <= $%d", argCount)
		args = append(args, *endDate)
		argCount++
	}

	query += " ORDER BY open_time"

	if limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, *limit)
	}

	var candles []model.Candle
	err := r.db.SelectContext(ctx, &candles, query, args...)
	if err != nil {
		r.logger.Error("Failed to get candles",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()))
		return nil, err
	}

	return model.NewCandleSeries(symbol, timeframe, candles)
}

// GetLatestCandles retrieves the most recent candles in ascending order
func (r *CandleRepository) GetLatestCandles(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	limit int,
) (*model.CandleSeries, error) {
	query := `
		SELECT open_time, open, high, low, close, volume
		FROM (
			SELECT open_time, open, high, low, close, volume
			FROM candles
			WHERE symbol = $1 AND timeframe = $2
			ORDER BY open_time DESC
			LIMIT $3
		) latest
		ORDER BY open_time
	`

	var candles []model.Candle
	err := r.db.SelectContext(ctx, &candles, query, symbol, timeframe.String(), limit)
	if err != nil {
		r.logger.Error("Failed to get latest candles",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()))
		return nil, err
	}

	return model.NewCandleSeries(symbol, timeframe, candles)
}

// GetDataRange returns the open time range of stored candles
func (r *CandleRepository) GetDataRange(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
) (startDate, endDate time.Time, err error) {
	query := `
		SELECT
			MIN(open_time) as start_date,
			MAX(open_time) as end_date
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
	`

	var result struct {
		StartDate *time.Time `db:"start_date"`
		EndDate   *time.Time `db:"end_date"`
	}

	err = r.db.GetContext(ctx, &result, query, symbol, timeframe.String())
	if err != nil {
		r.logger.Error("Failed to get candle range",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()))
		return time.Time{}, time.Time{}, err
	}

	if result.StartDate == nil || result.EndDate == nil {
		return time.Time{}, time.Time{}, model.ErrEmptySeries
	}

	return *result.StartDate, *result.EndDate, nil
}
