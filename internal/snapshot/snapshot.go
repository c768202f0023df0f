// Package snapshot defines the journal's export document: every table's rows
// plus the export time and a format version.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/models"
)

// Version is the only document version this package reads and writes.
const Version = "1.0"

// Snapshot is the complete content of the journal at one point in time.
// On import a nil or empty collection is skipped; it never clears a table.
type Snapshot struct {
	Trades     []models.Trade           `json:"trades"`
	Forecasts  []models.AIForecast      `json:"forecasts"`
	MarketData []models.MarketData      `json:"marketData"`
	Strategies []models.TradingStrategy `json:"strategies"`
	Signals    []models.TradeSignal     `json:"signals"`
	ExportDate time.Time                `json:"exportDate"`
	Version    string                   `json:"version"`
}

// New returns an empty snapshot stamped with exportDate and the current version.
func New(exportDate time.Time) *Snapshot {
	return &Snapshot{
		Trades:     []models.Trade{},
		Forecasts:  []models.AIForecast{},
		MarketData: []models.MarketData{},
		Strategies: []models.TradingStrategy{},
		Signals:    []models.TradeSignal{},
		ExportDate: exportDate.UTC(),
		Version:    Version,
	}
}

// CheckVersion rejects documents this package does not understand.
func CheckVersion(v string) error {
	if v != Version {
		return models.NewValidationErrorWithValue("version", "unsupported snapshot version, want "+Version, v)
	}
	return nil
}

// Len returns the total number of rows in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Trades) + len(s.Forecasts) + len(s.MarketData) + len(s.Strategies) + len(s.Signals)
}

// Prepare checks the version, validates every row and normalises timestamps
// to UTC in place. The first invalid row is reported with its position.
func (s *Snapshot) Prepare() error {
	if err := CheckVersion(s.Version); err != nil {
		return err
	}
	for i := range s.Trades {
		s.Trades[i].Normalize()
		if err := s.Trades[i].Validate(); err != nil {
			return located("trades", i, err)
		}
	}
	for i := range s.Forecasts {
		s.Forecasts[i].Normalize()
		if err := s.Forecasts[i].Validate(); err != nil {
			return located("forecasts", i, err)
		}
	}
	for i := range s.MarketData {
		s.MarketData[i].Normalize()
		if err := s.MarketData[i].Validate(); err != nil {
			return located("marketData", i, err)
		}
	}
	for i := range s.Strategies {
		s.Strategies[i].Normalize()
		if err := s.Strategies[i].Validate(); err != nil {
			return located("strategies", i, err)
		}
	}
	for i := range s.Signals {
		s.Signals[i].Normalize()
		if err := s.Signals[i].Validate(); err != nil {
			return located("signals", i, err)
		}
	}
	return nil
}

func located(collection string, index int, err error) error {
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return &models.ValidationError{
		Field:  fmt.Sprintf("%s[%d].%s", collection, index, ve.Field),
		Reason: ve.Reason,
		Value:  ve.Value,
	}
}

// Counts is the number of rows held in each table.
type Counts struct {
	Trades     int64 `json:"trades"`
	Forecasts  int64 `json:"forecasts"`
	MarketData int64 `json:"marketData"`
	Strategies int64 `json:"strategies"`
	Signals    int64 `json:"signals"`
}

// Total returns the sum over all tables.
func (c Counts) Total() int64 {
	return c.Trades + c.Forecasts + c.MarketData + c.Strategies + c.Signals
}
