package repository

import (
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StrategyRepository handles database operations for trading strategies
type StrategyRepository struct {
	base
}

// NewStrategyRepository creates a new strategy repository
func NewStrategyRepository(db *database.DB, log *zap.Logger) *StrategyRepository {
	return &StrategyRepository{base: newBase(db, log, database.TableStrategies, "strategy")}
}

// Add stores a new strategy and returns its id.
func (r *StrategyRepository) Add(strategy *models.TradingStrategy) (uint, error) {
	now := r.db.Now()
	strategy.ID = 0
	strategy.CreatedAt = now
	strategy.UpdatedAt = now
	strategy.Normalize()
	if err := strategy.Validate(); err != nil {
		return 0, err
	}

	if err := insert(r.base, strategy); err != nil {
		return 0, err
	}
	r.log.Debug("Strategy added", zap.Uint("id", strategy.ID), zap.String("name", strategy.Name))
	return strategy.ID, nil
}

// Update merges patch into the stored strategy and refreshes UpdatedAt.
func (r *StrategyRepository) Update(id uint, patch models.StrategyPatch) error {
	fields := patch.Fields()
	fields["updated_at"] = r.db.Now()
	return update(r.base, id, fields, func(current *models.TradingStrategy) error {
		patch.Apply(current)
		return current.Validate()
	})
}

// Get returns the strategy or nil when it does not exist.
func (r *StrategyRepository) Get(id uint) (*models.TradingStrategy, error) {
	return get[models.TradingStrategy](r.base, id)
}

// GetAll returns every strategy in id order.
func (r *StrategyRepository) GetAll() ([]models.TradingStrategy, error) {
	return find[models.TradingStrategy](r.base, "GetAll", nil)
}

// GetActive returns the strategies flagged active.
func (r *StrategyRepository) GetActive() ([]models.TradingStrategy, error) {
	return find[models.TradingStrategy](r.base, "GetActive", func(h *gorm.DB) *gorm.DB {
		return h.Where("is_active = ?", true).Order("id")
	})
}

// Delete removes the strategy. Signals referring to it are left alone.
func (r *StrategyRepository) Delete(id uint) error {
	return remove[models.TradingStrategy](r.base, id)
}
