package models

import "time"

// SignalType is the action a signal recommends.
type SignalType string

const (
	SignalTypeBuy  SignalType = "buy"
	SignalTypeSell SignalType = "sell"
	SignalTypeHold SignalType = "hold"
)

// Valid reports whether t is a known signal type.
func (t SignalType) Valid() bool {
	return t == SignalTypeBuy || t == SignalTypeSell || t == SignalTypeHold
}

// TradeSignal is a derived recommendation. StrategyID and ForecastID are
// plain references; they are not checked and may dangle after deletes.
type TradeSignal struct {
	ID          uint       `gorm:"primaryKey" json:"id,omitempty"`
	Symbol      string     `gorm:"not null;index" json:"symbol"`
	SignalType  SignalType `gorm:"not null;index" json:"signalType"`
	Strength    float64    `json:"strength"`
	PriceTarget *float64   `json:"priceTarget,omitempty"`
	StopLoss    *float64   `json:"stopLoss,omitempty"`
	TakeProfit  *float64   `json:"takeProfit,omitempty"`
	Reasoning   string     `json:"reasoning,omitempty"`
	StrategyID  *uint      `json:"strategyId,omitempty"`
	ForecastID  *uint      `json:"forecastId,omitempty"`
	GeneratedAt time.Time  `gorm:"not null;index" json:"generatedAt"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expiresAt"`
	ActedUpon   bool       `gorm:"not null;index" json:"actedUpon"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TableName overrides the table name used by TradeSignal to `trade_signals`
func (TradeSignal) TableName() string {
	return "trade_signals"
}

// IsActive reports whether the signal has not yet expired at now.
func (s *TradeSignal) IsActive(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// Validate checks the invariants a signal must satisfy before it is stored.
func (s *TradeSignal) Validate() error {
	if err := requireString("symbol", s.Symbol); err != nil {
		return err
	}
	if !s.SignalType.Valid() {
		return NewValidationErrorWithValue("signalType", "must be buy, sell or hold", s.SignalType)
	}
	if err := requireTime("generatedAt", s.GeneratedAt); err != nil {
		return err
	}
	return requireAfter("expiresAt", s.ExpiresAt, s.GeneratedAt)
}

// Normalize converts every timestamp to UTC.
func (s *TradeSignal) Normalize() {
	s.GeneratedAt = utc(s.GeneratedAt)
	s.ExpiresAt = utc(s.ExpiresAt)
	s.CreatedAt = utc(s.CreatedAt)
}

// SignalPatch is a partial update. Nil fields are left untouched.
type SignalPatch struct {
	Symbol      *string     `json:"symbol,omitempty"`
	SignalType  *SignalType `json:"signalType,omitempty"`
	Strength    *float64    `json:"strength,omitempty"`
	PriceTarget *float64    `json:"priceTarget,omitempty"`
	StopLoss    *float64    `json:"stopLoss,omitempty"`
	TakeProfit  *float64    `json:"takeProfit,omitempty"`
	Reasoning   *string     `json:"reasoning,omitempty"`
	StrategyID  *uint       `json:"strategyId,omitempty"`
	ForecastID  *uint       `json:"forecastId,omitempty"`
	GeneratedAt *time.Time  `json:"generatedAt,omitempty"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
	ActedUpon   *bool       `json:"actedUpon,omitempty"`
}

// Fields returns the supplied fields keyed by column name.
func (p SignalPatch) Fields() map[string]interface{} {
	f := make(map[string]interface{})
	if p.Symbol != nil {
		f["symbol"] = *p.Symbol
	}
	if p.SignalType != nil {
		f["signal_type"] = *p.SignalType
	}
	if p.Strength != nil {
		f["strength"] = *p.Strength
	}
	if p.PriceTarget != nil {
		f["price_target"] = *p.PriceTarget
	}
	if p.StopLoss != nil {
		f["stop_loss"] = *p.StopLoss
	}
	if p.TakeProfit != nil {
		f["take_profit"] = *p.TakeProfit
	}
	if p.Reasoning != nil {
		f["reasoning"] = *p.Reasoning
	}
	if p.StrategyID != nil {
		f["strategy_id"] = *p.StrategyID
	}
	if p.ForecastID != nil {
		f["forecast_id"] = *p.ForecastID
	}
	if p.GeneratedAt != nil {
		f["generated_at"] = p.GeneratedAt.UTC()
	}
	if p.ExpiresAt != nil {
		f["expires_at"] = p.ExpiresAt.UTC()
	}
	if p.ActedUpon != nil {
		f["acted_upon"] = *p.ActedUpon
	}
	return f
}

// Apply copies the supplied fields onto s.
func (p SignalPatch) Apply(s *TradeSignal) {
	if p.Symbol != nil {
		s.Symbol = *p.Symbol
	}
	if p.SignalType != nil {
		s.SignalType = *p.SignalType
	}
	if p.Strength != nil {
		s.Strength = *p.Strength
	}
	if p.PriceTarget != nil {
		s.PriceTarget = Ptr(*p.PriceTarget)
	}
	if p.StopLoss != nil {
		s.StopLoss = Ptr(*p.StopLoss)
	}
	if p.TakeProfit != nil {
		s.TakeProfit = Ptr(*p.TakeProfit)
	}
	if p.Reasoning != nil {
		s.Reasoning = *p.Reasoning
	}
	if p.StrategyID != nil {
		s.StrategyID = Ptr(*p.StrategyID)
	}
	if p.ForecastID != nil {
		s.ForecastID = Ptr(*p.ForecastID)
	}
	if p.GeneratedAt != nil {
		s.GeneratedAt = p.GeneratedAt.UTC()
	}
	if p.ExpiresAt != nil {
		s.ExpiresAt = p.ExpiresAt.UTC()
	}
	if p.ActedUpon != nil {
		s.ActedUpon = *p.ActedUpon
	}
}
