package repository

import (
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ForecastRepository handles database operations for AI forecasts
type ForecastRepository struct {
	base
}

// NewForecastRepository creates a new forecast repository
func NewForecastRepository(db *database.DB, log *zap.Logger) *ForecastRepository {
	return &ForecastRepository{base: newBase(db, log, database.TableForecasts, "forecast")}
}

// Add stores a new forecast and returns its id.
func (r *ForecastRepository) Add(forecast *models.AIForecast) (uint, error) {
	forecast.ID = 0
	forecast.CreatedAt = r.db.Now()
	forecast.Normalize()
	if err := forecast.Validate(); err != nil {
		return 0, err
	}

	if err := insert(r.base, forecast); err != nil {
		return 0, err
	}
	r.log.Debug("Forecast added", zap.Uint("id", forecast.ID), zap.String("symbol", forecast.Symbol))
	return forecast.ID, nil
}

// Update merges patch into the stored forecast, typically to record the
// actual outcome and accuracy once known.
func (r *ForecastRepository) Update(id uint, patch models.ForecastPatch) error {
	fields := patch.Fields()
	err := update(r.base, id, fields, func(current *models.AIForecast) error {
		patch.Apply(current)
		return current.Validate()
	})
	if err != nil {
		return err
	}
	r.log.Debug("Forecast updated", zap.Uint("id", id), zap.Int("fields", len(fields)))
	return nil
}

// Get returns the forecast or nil when it does not exist.
func (r *ForecastRepository) Get(id uint) (*models.AIForecast, error) {
	return get[models.AIForecast](r.base, id)
}

// GetAll returns every forecast in id order.
func (r *ForecastRepository) GetAll() ([]models.AIForecast, error) {
	return find[models.AIForecast](r.base, "GetAll", nil)
}

// GetBySymbol returns the forecasts for one symbol, expired or not.
func (r *ForecastRepository) GetBySymbol(symbol string) ([]models.AIForecast, error) {
	return find[models.AIForecast](r.base, "GetBySymbol", func(h *gorm.DB) *gorm.DB {
		return h.Where("symbol = ?", symbol).Order("id")
	})
}

// GetActiveBySymbol returns the forecasts for symbol whose expiry is strictly
// after the current time.
func (r *ForecastRepository) GetActiveBySymbol(symbol string) ([]models.AIForecast, error) {
	now := r.db.Now()
	return find[models.AIForecast](r.base, "GetActiveBySymbol", func(h *gorm.DB) *gorm.DB {
		return h.Where("symbol = ? AND expiry_time > ?", symbol, now).Order("id")
	})
}

// Delete removes the forecast. Signals referring to it are left alone.
func (r *ForecastRepository) Delete(id uint) error {
	if err := remove[models.AIForecast](r.base, id); err != nil {
		return err
	}
	r.log.Debug("Forecast deleted", zap.Uint("id", id))
	return nil
}
