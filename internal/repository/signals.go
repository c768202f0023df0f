package repository

import (
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SignalRepository handles database operations for trade signals
type SignalRepository struct {
	base
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(db *database.DB, log *zap.Logger) *SignalRepository {
	return &SignalRepository{base: newBase(db, log, database.TableSignals, "signal")}
}

// Add stores a new signal and returns its id. StrategyID and ForecastID are
// stored as given without checking that they exist.
func (r *SignalRepository) Add(signal *models.TradeSignal) (uint, error) {
	signal.ID = 0
	signal.CreatedAt = r.db.Now()
	signal.Normalize()
	if err := signal.Validate(); err != nil {
		return 0, err
	}

	if err := insert(r.base, signal); err != nil {
		return 0, err
	}
	r.log.Debug("Signal added", zap.Uint("id", signal.ID), zap.String("symbol", signal.Symbol), zap.String("type", string(signal.SignalType)))
	return signal.ID, nil
}

// Update merges patch into the stored signal.
func (r *SignalRepository) Update(id uint, patch models.SignalPatch) error {
	fields := patch.Fields()
	return update(r.base, id, fields, func(current *models.TradeSignal) error {
		patch.Apply(current)
		return current.Validate()
	})
}

// MarkActedUpon flags the signal as acted upon.
func (r *SignalRepository) MarkActedUpon(id uint) error {
	return r.Update(id, models.SignalPatch{ActedUpon: models.Ptr(true)})
}

// Get returns the signal or nil when it does not exist.
func (r *SignalRepository) Get(id uint) (*models.TradeSignal, error) {
	return get[models.TradeSignal](r.base, id)
}

// GetAll returns every signal in id order.
func (r *SignalRepository) GetAll() ([]models.TradeSignal, error) {
	return find[models.TradeSignal](r.base, "GetAll", nil)
}

// GetBySymbol returns the signals for one symbol.
func (r *SignalRepository) GetBySymbol(symbol string) ([]models.TradeSignal, error) {
	return find[models.TradeSignal](r.base, "GetBySymbol", func(h *gorm.DB) *gorm.DB {
		return h.Where("symbol = ?", symbol).Order("id")
	})
}

// GetActive returns the signals that have not yet expired.
func (r *SignalRepository) GetActive() ([]models.TradeSignal, error) {
	now := r.db.Now()
	return find[models.TradeSignal](r.base, "GetActive", func(h *gorm.DB) *gorm.DB {
		return h.Where("expires_at > ?", now).Order("id")
	})
}

// GetUnacted returns the active signals nobody has acted on yet.
func (r *SignalRepository) GetUnacted() ([]models.TradeSignal, error) {
	now := r.db.Now()
	return find[models.TradeSignal](r.base, "GetUnacted", func(h *gorm.DB) *gorm.DB {
		return h.Where("acted_upon = ? AND expires_at > ?", false, now).Order("id")
	})
}

// Delete removes the signal. Deleting a missing id is not an error.
func (r *SignalRepository) Delete(id uint) error {
	return remove[models.TradeSignal](r.base, id)
}
