package repository

import (
	"fmt"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeRepository handles database operations for trades
type TradeRepository struct {
	base
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *database.DB, log *zap.Logger) *TradeRepository {
	return &TradeRepository{base: newBase(db, log, database.TableTrades, "trade")}
}

// Add stores a new trade and returns its id. ID, CreatedAt and UpdatedAt are
// assigned here and written back into trade; a zero EntryTime becomes CreatedAt.
func (r *TradeRepository) Add(trade *models.Trade) (uint, error) {
	now := r.db.Now()
	trade.ID = 0
	trade.CreatedAt = now
	trade.UpdatedAt = now
	trade.Normalize()
	if err := trade.Validate(); err != nil {
		return 0, err
	}

	if err := insert(r.base, trade); err != nil {
		return 0, err
	}
	r.log.Debug("Trade added", zap.Uint("id", trade.ID), zap.String("symbol", trade.Symbol))
	return trade.ID, nil
}

// Update merges patch into the stored trade and refreshes UpdatedAt.
// Status may only leave "open".
func (r *TradeRepository) Update(id uint, patch models.TradePatch) error {
	fields := patch.Fields()
	fields["updated_at"] = r.db.Now()

	err := update(r.base, id, fields, func(current *models.Trade) error {
		if patch.Status != nil && !current.Status.CanTransitionTo(*patch.Status) {
			return models.NewValidationErrorWithValue("status", fmt.Sprintf("cannot change from %s", current.Status), *patch.Status)
		}
		patch.Apply(current)
		return current.Validate()
	})
	if err != nil {
		return err
	}
	r.log.Debug("Trade updated", zap.Uint("id", id), zap.Int("fields", len(fields)-1))
	return nil
}

// Get returns the trade or nil when it does not exist.
func (r *TradeRepository) Get(id uint) (*models.Trade, error) {
	return get[models.Trade](r.base, id)
}

// GetAll returns every trade in id order.
func (r *TradeRepository) GetAll() ([]models.Trade, error) {
	return find[models.Trade](r.base, "GetAll", nil)
}

// GetBySymbol returns the trades for one symbol.
func (r *TradeRepository) GetBySymbol(symbol string) ([]models.Trade, error) {
	return find[models.Trade](r.base, "GetBySymbol", func(h *gorm.DB) *gorm.DB {
		return h.Where("symbol = ?", symbol).Order("id")
	})
}

// GetOpen returns the trades whose status is open.
func (r *TradeRepository) GetOpen() ([]models.Trade, error) {
	return find[models.Trade](r.base, "GetOpen", func(h *gorm.DB) *gorm.DB {
		return h.Where("status = ?", models.TradeStatusOpen).Order("id")
	})
}

// Delete removes the trade. Deleting a missing id is not an error.
func (r *TradeRepository) Delete(id uint) error {
	if err := remove[models.Trade](r.base, id); err != nil {
		return err
	}
	r.log.Debug("Trade deleted", zap.Uint("id", id))
	return nil
}
