package models

import "time"

// TradeType is the side of a trade.
type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// Valid reports whether t is a known trade side.
func (t TradeType) Valid() bool {
	return t == TradeTypeBuy || t == TradeTypeSell
}

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeStatusOpen      TradeStatus = "open"
	TradeStatusClosed    TradeStatus = "closed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s TradeStatus) Valid() bool {
	switch s {
	case TradeStatusOpen, TradeStatusClosed, TradeStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a trade in status s may move to next.
// Only open trades change status; re-asserting the current status is allowed.
func (s TradeStatus) CanTransitionTo(next TradeStatus) bool {
	if s == next {
		return true
	}
	return s == TradeStatusOpen && (next == TradeStatusClosed || next == TradeStatusCancelled)
}

// Trade is a single journal entry for a position.
// ExitPrice, ExitTime and ProfitLoss are only present once the trade is closed.
type Trade struct {
	ID         uint        `gorm:"primaryKey" json:"id,omitempty"`
	Symbol     string      `gorm:"not null;index" json:"symbol"`
	TradeType  TradeType   `gorm:"not null;index" json:"tradeType"`
	EntryPrice float64     `gorm:"not null" json:"entryPrice"`
	ExitPrice  *float64    `json:"exitPrice,omitempty"`
	Quantity   float64     `gorm:"not null" json:"quantity"`
	EntryTime  time.Time   `gorm:"not null;index" json:"entryTime"`
	ExitTime   *time.Time  `json:"exitTime,omitempty"`
	Status     TradeStatus `gorm:"not null;index" json:"status"`
	ProfitLoss *float64    `json:"profitLoss,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// TableName overrides the table name used by Trade to `trades`
func (Trade) TableName() string {
	return "trades"
}

// Validate checks the invariants a trade must satisfy before it is stored.
func (t *Trade) Validate() error {
	if err := requireString("symbol", t.Symbol); err != nil {
		return err
	}
	if !t.TradeType.Valid() {
		return NewValidationErrorWithValue("tradeType", "must be buy or sell", t.TradeType)
	}
	if err := requirePositive("entryPrice", t.EntryPrice); err != nil {
		return err
	}
	if err := requirePositive("quantity", t.Quantity); err != nil {
		return err
	}
	if err := requireTime("entryTime", t.EntryTime); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return NewValidationErrorWithValue("status", "must be open, closed or cancelled", t.Status)
	}
	if t.ExitPrice != nil {
		if err := requirePositive("exitPrice", *t.ExitPrice); err != nil {
			return err
		}
	}
	return nil
}

// Normalize converts every timestamp to UTC. A trade recorded without an
// entry time is taken to have been entered when it was created.
func (t *Trade) Normalize() {
	if t.EntryTime.IsZero() {
		t.EntryTime = t.CreatedAt
	}
	t.EntryTime = utc(t.EntryTime)
	t.ExitTime = utcPtr(t.ExitTime)
	t.CreatedAt = utc(t.CreatedAt)
	t.UpdatedAt = utc(t.UpdatedAt)
}

// TradePatch is a partial update. Nil fields are left untouched.
type TradePatch struct {
	Symbol     *string      `json:"symbol,omitempty"`
	TradeType  *TradeType   `json:"tradeType,omitempty"`
	EntryPrice *float64     `json:"entryPrice,omitempty"`
	ExitPrice  *float64     `json:"exitPrice,omitempty"`
	Quantity   *float64     `json:"quantity,omitempty"`
	EntryTime  *time.Time   `json:"entryTime,omitempty"`
	ExitTime   *time.Time   `json:"exitTime,omitempty"`
	Status     *TradeStatus `json:"status,omitempty"`
	ProfitLoss *float64     `json:"profitLoss,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
}

// Fields returns the supplied fields keyed by column name.
func (p TradePatch) Fields() map[string]interface{} {
	f := make(map[string]interface{})
	if p.Symbol != nil {
		f["symbol"] = *p.Symbol
	}
	if p.TradeType != nil {
		f["trade_type"] = *p.TradeType
	}
	if p.EntryPrice != nil {
		f["entry_price"] = *p.EntryPrice
	}
	if p.ExitPrice != nil {
		f["exit_price"] = *p.ExitPrice
	}
	if p.Quantity != nil {
		f["quantity"] = *p.Quantity
	}
	if p.EntryTime != nil {
		f["entry_time"] = p.EntryTime.UTC()
	}
	if p.ExitTime != nil {
		f["exit_time"] = p.ExitTime.UTC()
	}
	if p.Status != nil {
		f["status"] = *p.Status
	}
	if p.ProfitLoss != nil {
		f["profit_loss"] = *p.ProfitLoss
	}
	if p.Notes != nil {
		f["notes"] = *p.Notes
	}
	return f
}

// Apply copies the supplied fields onto t.
func (p TradePatch) Apply(t *Trade) {
	if p.Symbol != nil {
		t.Symbol = *p.Symbol
	}
	if p.TradeType != nil {
		t.TradeType = *p.TradeType
	}
	if p.EntryPrice != nil {
		t.EntryPrice = *p.EntryPrice
	}
	if p.ExitPrice != nil {
		t.ExitPrice = Ptr(*p.ExitPrice)
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.EntryTime != nil {
		t.EntryTime = p.EntryTime.UTC()
	}
	if p.ExitTime != nil {
		t.ExitTime = utcPtr(p.ExitTime)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.ProfitLoss != nil {
		t.ProfitLoss = Ptr(*p.ProfitLoss)
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}
