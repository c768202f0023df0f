package models

import (
	"time"

	"gorm.io/datatypes"
)

// TradingStrategy is a named, parameterised strategy. The aggregate stats are
// maintained by the caller; nothing here recomputes them. Names are not unique.
type TradingStrategy struct {
	ID              uint              `gorm:"primaryKey" json:"id,omitempty"`
	Name            string            `gorm:"not null;index" json:"name"`
	Description     string            `json:"description,omitempty"`
	Parameters      datatypes.JSONMap `json:"parameters"`
	IsActive        bool              `gorm:"not null;index" json:"isActive"`
	TotalTrades     int               `json:"totalTrades"`
	WinRate         float64           `json:"winRate"`
	TotalProfitLoss float64           `json:"totalProfitLoss"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// TableName overrides the table name used by TradingStrategy to `trading_strategies`
func (TradingStrategy) TableName() string {
	return "trading_strategies"
}

// Validate checks the invariants a strategy must satisfy before it is stored.
func (s *TradingStrategy) Validate() error {
	if err := requireString("name", s.Name); err != nil {
		return err
	}
	if s.TotalTrades < 0 {
		return NewValidationErrorWithValue("totalTrades", "must not be negative", s.TotalTrades)
	}
	return nil
}

// Normalize converts every timestamp to UTC.
func (s *TradingStrategy) Normalize() {
	s.CreatedAt = utc(s.CreatedAt)
	s.UpdatedAt = utc(s.UpdatedAt)
}

// StrategyPatch is a partial update. Nil fields are left untouched.
type StrategyPatch struct {
	Name            *string            `json:"name,omitempty"`
	Description     *string            `json:"description,omitempty"`
	Parameters      *datatypes.JSONMap `json:"parameters,omitempty"`
	IsActive        *bool              `json:"isActive,omitempty"`
	TotalTrades     *int               `json:"totalTrades,omitempty"`
	WinRate         *float64           `json:"winRate,omitempty"`
	TotalProfitLoss *float64           `json:"totalProfitLoss,omitempty"`
}

// Fields returns the supplied fields keyed by column name.
func (p StrategyPatch) Fields() map[string]interface{} {
	f := make(map[string]interface{})
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Description != nil {
		f["description"] = *p.Description
	}
	if p.Parameters != nil {
		f["parameters"] = *p.Parameters
	}
	if p.IsActive != nil {
		f["is_active"] = *p.IsActive
	}
	if p.TotalTrades != nil {
		f["total_trades"] = *p.TotalTrades
	}
	if p.WinRate != nil {
		f["win_rate"] = *p.WinRate
	}
	if p.TotalProfitLoss != nil {
		f["total_profit_loss"] = *p.TotalProfitLoss
	}
	return f
}

// Apply copies the supplied fields onto s.
func (p StrategyPatch) Apply(s *TradingStrategy) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Parameters != nil {
		s.Parameters = *p.Parameters
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.TotalTrades != nil {
		s.TotalTrades = *p.TotalTrades
	}
	if p.WinRate != nil {
		s.WinRate = *p.WinRate
	}
	if p.TotalProfitLoss != nil {
		s.TotalProfitLoss = *p.TotalProfitLoss
	}
}
