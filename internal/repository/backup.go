package repository

import (
	"time"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/snapshot"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const importBatchSize = 100

// Export reads every table into a snapshot stamped with the current time.
func (r *Repositories) Export() (*snapshot.Snapshot, error) {
	s := snapshot.New(r.db.Now())

	var g errgroup.Group
	if r.h != database.Handles(r.db) {
		// One transaction is one connection; read the tables in turn.
		g.SetLimit(1)
	}
	g.Go(func() (err error) {
		s.Trades, err = r.Trades.GetAll()
		return err
	})
	g.Go(func() (err error) {
		s.Forecasts, err = r.Forecasts.GetAll()
		return err
	})
	g.Go(func() (err error) {
		s.MarketData, err = r.MarketData.GetAll()
		return err
	})
	g.Go(func() (err error) {
		s.Strategies, err = r.Strategies.GetAll()
		return err
	})
	g.Go(func() (err error) {
		s.Signals, err = r.Signals.GetAll()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Info("Exported journal", zap.Int("rows", s.Len()), zap.Time("export_date", s.ExportDate))
	return s, nil
}

// Import inserts every row of s, keeping the ids it carries. Either all rows
// land or none do. Collections that are empty are skipped, so their tables
// keep their current contents.
func (r *Repositories) Import(s *snapshot.Snapshot) error {
	if s == nil {
		return models.NewValidationError("snapshot", "is required")
	}
	if err := s.Prepare(); err != nil {
		return err
	}

	err := r.h.Transaction(database.Tables(), func(tx *database.Tx) error {
		if err := bulkInsert(tx, database.TableTrades, s.Trades); err != nil {
			return err
		}
		if err := bulkInsert(tx, database.TableForecasts, s.Forecasts); err != nil {
			return err
		}
		if err := bulkInsert(tx, database.TableMarketData, s.MarketData); err != nil {
			return err
		}
		if err := bulkInsert(tx, database.TableStrategies, s.Strategies); err != nil {
			return err
		}
		return bulkInsert(tx, database.TableSignals, s.Signals)
	})
	if err != nil {
		r.log.Error("Import rolled back", zap.Error(err))
		return err
	}

	r.log.Info("Imported journal",
		zap.Int("trades", len(s.Trades)),
		zap.Int("forecasts", len(s.Forecasts)),
		zap.Int("market_data", len(s.MarketData)),
		zap.Int("strategies", len(s.Strategies)),
		zap.Int("signals", len(s.Signals)),
	)
	return nil
}

func bulkInsert[T any](tx *database.Tx, table database.Table, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	h, err := tx.Table(table)
	if err != nil {
		return err
	}
	return database.WrapStorageError("Import", table, h.CreateInBatches(rows, importBatchSize).Error)
}

// ClearAll deletes every row of every table in one transaction.
func (r *Repositories) ClearAll() error {
	targets := map[database.Table]interface{}{
		database.TableTrades:     &models.Trade{},
		database.TableForecasts:  &models.AIForecast{},
		database.TableMarketData: &models.MarketData{},
		database.TableStrategies: &models.TradingStrategy{},
		database.TableSignals:    &models.TradeSignal{},
	}

	err := r.h.Transaction(database.Tables(), func(tx *database.Tx) error {
		for _, table := range database.Tables() {
			h, err := tx.Table(table)
			if err != nil {
				return err
			}
			if err := h.Where("1 = 1").Delete(targets[table]).Error; err != nil {
				return database.WrapStorageError("ClearAll", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Warn("Cleared all journal data")
	return nil
}

// Counts returns the number of rows per table.
func (r *Repositories) Counts() (snapshot.Counts, error) {
	var c snapshot.Counts
	targets := []struct {
		table database.Table
		n     *int64
	}{
		{database.TableTrades, &c.Trades},
		{database.TableForecasts, &c.Forecasts},
		{database.TableMarketData, &c.MarketData},
		{database.TableStrategies, &c.Strategies},
		{database.TableSignals, &c.Signals},
	}
	for _, t := range targets {
		h, err := r.h.Table(t.table)
		if err != nil {
			return snapshot.Counts{}, err
		}
		if err := h.Count(t.n).Error; err != nil {
			return snapshot.Counts{}, database.WrapStorageError("Counts", t.table, err)
		}
	}
	return c, nil
}

// AddSampleData stores one open BTC/USD trade and one 24h price forecast so
// a fresh journal has something to show.
func (r *Repositories) AddSampleData() (tradeID, forecastID uint, err error) {
	now := r.db.Now()

	tradeID, err = r.Trades.Add(&models.Trade{
		Symbol:     "BTC/USD",
		TradeType:  models.TradeTypeBuy,
		EntryPrice: 50000,
		Quantity:   0.1,
		EntryTime:  now,
		Status:     models.TradeStatusOpen,
		Notes:      "Sample trade",
	})
	if err != nil {
		return 0, 0, err
	}

	forecastID, err = r.Forecasts.Add(&models.AIForecast{
		Symbol:       "BTC/USD",
		ForecastType: models.ForecastTypePrice,
		Prediction: datatypes.JSONMap{
			"targetPrice": 55000,
			"probability": 0.75,
		},
		ConfidenceScore: 85,
		Timeframe:       "1d",
		ModelVersion:    "v1.0",
		ForecastTime:    now,
		ExpiryTime:      now.Add(24 * time.Hour),
	})
	if err != nil {
		return tradeID, 0, err
	}

	r.log.Info("Sample data added", zap.Uint("trade_id", tradeID), zap.Uint("forecast_id", forecastID))
	return tradeID, forecastID, nil
}

// DB returns the underlying store. Use Transaction, or WithTx inside
// DB().Transaction, to group repository calls atomically.
func (r *Repositories) DB() *database.DB {
	return r.db
}
