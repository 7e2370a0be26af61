package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

// TradeRepository handles database operations for monitored trades
type TradeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sqlx.DB, logger *zap.Logger) *TradeRepository {
	return &TradeRepository{
		db:     db,
		logger: logger,
	}
}

// tradeRow mirrors the monitored_trades table, with targets as a float8 array
type tradeRow struct {
	ID           string          `db:"id"`
	SubscriberID string          `db:"subscriber_id"`
	Symbol       string          `db:"symbol"`
	Timeframe    string          `db:"timeframe"`
	Direction    string          `db:"direction"`
	Entry        float64         `db:"entry"`
	StopLoss     float64         `db:"stop_loss"`
	Targets      pq.Float64Array `db:"targets"`
	State        string          `db:"state"`
	TargetsHit   int             `db:"targets_hit"`
	LastTickAt   *time.Time      `db:"last_tick_at"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (row *tradeRow) toModel() *model.MonitoredTrade {
	t := &model.MonitoredTrade{
		ID:           row.ID,
		SubscriberID: row.SubscriberID,
		Symbol:       row.Symbol,
		Timeframe:    model.Timeframe(row.Timeframe),
		Direction:    model.Direction(row.Direction),
		Entry:        row.Entry,
		StopLoss:     row.StopLoss,
		Targets:      append([]float64(nil), row.Targets...),
		State:        model.TradeState(row.State),
		TargetsHit:   row.TargetsHit,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.LastTickAt != nil {
		at := *row.LastTickAt
		t.LastTickAt = &at
	}
	return t
}

// SaveTrade inserts a trade or updates its mutable monitoring fields
func (r *TradeRepository) SaveTrade(ctx context.Context, t *model.MonitoredTrade) error {
	query := `
		INSERT INTO monitored_trades
			(id, subscriber_id, symbol, timeframe, direction, entry, stop_loss, targets,
			 state, targets_hit, last_tick_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id)
		DO UPDATE SET
			state = EXCLUDED.state,
			targets_hit = EXCLUDED.targets_hit,
			last_tick_at = EXCLUDED.last_tick_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.SubscriberID,
		t.Symbol,
		t.Timeframe.String(),
		string(t.Direction),
		t.Entry,
		t.StopLoss,
		pq.Float64Array(t.Targets),
		string(t.State),
		t.TargetsHit,
		t.LastTickAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save trade",
			zap.Error(err),
			zap.String("trade_id", t.ID))
		return err
	}

	return nil
}

// SaveTrades persists a batch of trades in one transaction
func (r *TradeRepository) SaveTrades(ctx context.Context, trades []*model.MonitoredTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO monitored_trades
			(id, subscriber_id, symbol, timeframe, direction, entry, stop_loss, targets,
			 state, targets_hit, last_tick_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id)
		DO UPDATE SET
			state = EXCLUDED.state,
			targets_hit = EXCLUDED.targets_hit,
			last_tick_at = EXCLUDED.last_tick_at,
			updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err = stmt.ExecContext(
			ctx,
			t.ID,
			t.SubscriberID,
			t.Symbol,
			t.Timeframe.String(),
			string(t.Direction),
			t.Entry,
			t.StopLoss,
			pq.Float64Array(t.Targets),
			string(t.State),
			t.TargetsHit,
			t.LastTickAt,
			t.CreatedAt,
			t.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to save trade in batch",
				zap.Error(err),
				zap.String("trade_id", t.ID))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// GetTrade retrieves a trade by id
func (r *TradeRepository) GetTrade(ctx context.Context, id string) (*model.MonitoredTrade, error) {
	query := `
		SELECT id, subscriber_id, symbol, timeframe, direction, entry, stop_loss, targets,
		       state, targets_hit, last_tick_at, created_at, updated_at
		FROM monitored_trades
		WHERE id = $1
	`

	var row tradeRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUnknownTrade
		}
		r.logger.Error("Failed to get trade",
			zap.Error(err),
			zap.String("trade_id", id))
		return nil, err
	}

	return row.toModel(), nil
}

// ListOpenTrades retrieves every trade still being monitored
func (r *TradeRepository) ListOpenTrades(ctx context.Context) ([]*model.MonitoredTrade, error) {
	query := `
		SELECT id, subscriber_id, symbol, timeframe, direction, entry, stop_loss, targets,
		       state, targets_hit, last_tick_at, created_at, updated_at
		FROM monitored_trades
		WHERE state IN ('PENDING', 'ACTIVE')
		ORDER BY created_at, id
	`

	var rows []tradeRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		r.logger.Error("Failed to list open trades", zap.Error(err))
		return nil, err
	}

	trades := make([]*model.MonitoredTrade, len(rows))
	for i := range rows {
		trades[i] = rows[i].toModel()
	}
	return trades, nil
}

// ListBySubscriber retrieves all trades registered by a subscriber
func (r *TradeRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]*model.MonitoredTrade, error) {
	query := `
		SELECT id, subscriber_id, symbol, timeframe, direction, entry, stop_loss, targets,
		       state, targets_hit, last_tick_at, created_at, updated_at
		FROM monitored_trades
		WHERE subscriber_id = $1
		ORDER BY created_at, id
	`

	var rows []tradeRow
	err := r.db.SelectContext(ctx, &rows, query, subscriberID)
	if err != nil {
		r.logger.Error("Failed to list trades for subscriber",
			zap.Error(err),
			zap.String("subscriber_id", subscriberID))
		return nil, err
	}

	trades := make([]*model.MonitoredTrade, len(rows))
	for i := range rows {
		trades[i] = rows[i].toModel()
	}
	return trades, nil
}
