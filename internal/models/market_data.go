package models

import "time"

// MarketData is one OHLCV candle. The store does not enforce uniqueness of
// (symbol, timestamp, timeframe); duplicates are kept as inserted.
type MarketData struct {
	ID        uint      `gorm:"primaryKey" json:"id,omitempty"`
	Symbol    string    `gorm:"not null;index;index:idx_market_data_symbol_timestamp,priority:1" json:"symbol"`
	Timestamp time.Time `gorm:"not null;index;index:idx_market_data_symbol_timestamp,priority:2" json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Timeframe string    `gorm:"not null;index" json:"timeframe"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name used by MarketData to `market_data`
func (MarketData) TableName() string {
	return "market_data"
}

// Validate checks the invariants a candle must satisfy before it is stored.
func (m *MarketData) Validate() error {
	if err := requireString("symbol", m.Symbol); err != nil {
		return err
	}
	if err := requireTime("timestamp", m.Timestamp); err != nil {
		return err
	}
	if m.High < m.Low {
		return NewValidationErrorWithValue("high", "must not be below low", m.High)
	}
	if m.Volume < 0 {
		return NewValidationErrorWithValue("volume", "must not be negative", m.Volume)
	}
	return requireString("timeframe", m.Timeframe)
}

// Normalize converts every timestamp to UTC.
func (m *MarketData) Normalize() {
	m.Timestamp = utc(m.Timestamp)
	m.CreatedAt = utc(m.CreatedAt)
}

// MarketDataPatch is a partial update. Nil fields are left untouched.
type MarketDataPatch struct {
	Symbol    *string    `json:"symbol,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Open      *float64   `json:"open,omitempty"`
	High      *float64   `json:"high,omitempty"`
	Low       *float64   `json:"low,omitempty"`
	Close     *float64   `json:"close,omitempty"`
	Volume    *float64   `json:"volume,omitempty"`
	Timeframe *string    `json:"timeframe,omitempty"`
}

// Fields returns the supplied fields keyed by column name.
func (p MarketDataPatch) Fields() map[string]interface{} {
	f := make(map[string]interface{})
	if p.Symbol != nil {
		f["symbol"] = *p.Symbol
	}
	if p.Timestamp != nil {
		f["timestamp"] = p.Timestamp.UTC()
	}
	if p.Open != nil {
		f["open"] = *p.Open
	}
	if p.High != nil {
		f["high"] = *p.High
	}
	if p.Low != nil {
		f["low"] = *p.Low
	}
	if p.Close != nil {
		f["close"] = *p.Close
	}
	if p.Volume != nil {
		f["volume"] = *p.Volume
	}
	if p.Timeframe != nil {
		f["timeframe"] = *p.Timeframe
	}
	return f
}

// Apply copies the supplied fields onto m.
func (p MarketDataPatch) Apply(m *MarketData) {
	if p.Symbol != nil {
		m.Symbol = *p.Symbol
	}
	if p.Timestamp != nil {
		m.Timestamp = p.Timestamp.UTC()
	}
	if p.Open != nil {
		m.Open = *p.Open
	}
	if p.High != nil {
		m.High = *p.High
	}
	if p.Low != nil {
		m.Low = *p.Low
	}
	if p.Close != nil {
		m.Close = *p.Close
	}
	if p.Volume != nil {
		m.Volume = *p.Volume
	}
	if p.Timeframe != nil {
		m.Timeframe = *p.Timeframe
	}
}
