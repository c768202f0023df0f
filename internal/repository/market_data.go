package repository

import (
	"time"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MarketDataQuery narrows GetBySymbol. Zero values mean "any timeframe" and
// "no limit".
type MarketDataQuery struct {
	Timeframe string
	Limit     int
}

// MarketDataRepository handles database operations for candles
type MarketDataRepository struct {
	base
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *database.DB, log *zap.Logger) *MarketDataRepository {
	return &MarketDataRepository{base: newBase(db, log, database.TableMarketData, "market data")}
}

// Add stores a candle and returns its id. Duplicates of an existing
// (symbol, timestamp, timeframe) are accepted.
func (r *MarketDataRepository) Add(candle *models.MarketData) (uint, error) {
	candle.ID = 0
	candle.CreatedAt = r.db.Now()
	candle.Normalize()
	if err := candle.Validate(); err != nil {
		return 0, err
	}

	if err := insert(r.base, candle); err != nil {
		return 0, err
	}
	r.log.Debug("Market data added", zap.Uint("id", candle.ID), zap.String("symbol", candle.Symbol), zap.Time("timestamp", candle.Timestamp))
	return candle.ID, nil
}

// Update merges patch into the stored candle.
func (r *MarketDataRepository) Update(id uint, patch models.MarketDataPatch) error {
	fields := patch.Fields()
	return update(r.base, id, fields, func(current *models.MarketData) error {
		patch.Apply(current)
		return current.Validate()
	})
}

// Get returns the candle or nil when it does not exist.
func (r *MarketDataRepository) Get(id uint) (*models.MarketData, error) {
	return get[models.MarketData](r.base, id)
}

// GetAll returns every candle in id order.
func (r *MarketDataRepository) GetAll() ([]models.MarketData, error) {
	return find[models.MarketData](r.base, "GetAll", nil)
}

// GetBySymbol returns candles for symbol, most recent first, truncated to
// q.Limit after sorting.
func (r *MarketDataRepository) GetBySymbol(symbol string, q MarketDataQuery) ([]models.MarketData, error) {
	if q.Limit < 0 {
		return nil, models.NewValidationErrorWithValue("limit", "must not be negative", q.Limit)
	}
	return find[models.MarketData](r.base, "GetBySymbol", func(h *gorm.DB) *gorm.DB {
		h = h.Where("symbol = ?", symbol)
		if q.Timeframe != "" {
			h = h.Where("timeframe = ?", q.Timeframe)
		}
		h = h.Order("timestamp DESC").Order("id DESC")
		if q.Limit > 0 {
			h = h.Limit(q.Limit)
		}
		return h
	})
}

// GetRange returns candles for symbol with start <= timestamp <= end, oldest
// first. An empty timeframe matches all timeframes.
func (r *MarketDataRepository) GetRange(symbol string, start, end time.Time, timeframe string) ([]models.MarketData, error) {
	return find[models.MarketData](r.base, "GetRange", func(h *gorm.DB) *gorm.DB {
		h = h.Where("symbol = ? AND timestamp >= ? AND timestamp <= ?", symbol, start.UTC(), end.UTC())
		if timeframe != "" {
			h = h.Where("timeframe = ?", timeframe)
		}
		return h.Order("timestamp").Order("id")
	})
}

// Delete removes the candle. Deleting a missing id is not an error.
func (r *MarketDataRepository) Delete(id uint) error {
	return remove[models.MarketData](r.base, id)
}

// PruneOlderThan deletes every candle whose timestamp is before
// now minus daysToKeep days and returns how many were removed.
func (r *MarketDataRepository) PruneOlderThan(daysToKeep int) (int64, error) {
	if daysToKeep < 0 {
		return 0, models.NewValidationErrorWithValue("daysToKeep", "must not be negative", daysToKeep)
	}
	cutoff := r.db.Now().AddDate(0, 0, -daysToKeep)

	h, err := r.h.Table(r.table)
	if err != nil {
		return 0, err
	}
	res := h.Where("timestamp < ?", cutoff).Delete(&models.MarketData{})
	if res.Error != nil {
		return 0, r.wrap("PruneOlderThan", res.Error)
	}
	r.log.Info("Pruned market data", zap.Int("days_to_keep", daysToKeep), zap.Time("cutoff", cutoff), zap.Int64("deleted", res.RowsAffected))
	return res.RowsAffected, nil
}
