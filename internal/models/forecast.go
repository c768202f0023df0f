package models

import (
	"time"

	"gorm.io/datatypes"
)

// ForecastType is what an AI forecast predicts.
type ForecastType string

const (
	ForecastTypePrice             ForecastType = "price"
	ForecastTypeTrend             ForecastType = "trend"
	ForecastTypeVolatility        ForecastType = "volatility"
	ForecastTypeSupportResistance ForecastType = "support_resistance"
)

// Valid reports whether t is a known forecast type.
func (t ForecastType) Valid() bool {
	switch t {
	case ForecastTypePrice, ForecastTypeTrend, ForecastTypeVolatility, ForecastTypeSupportResistance:
		return true
	}
	return false
}

// AIForecast is a model-generated prediction for a symbol. Prediction and
// ActualOutcome are opaque payloads stored verbatim.
// A forecast is active while the current time is before ExpiryTime.
type AIForecast struct {
	ID              uint              `gorm:"primaryKey" json:"id,omitempty"`
	Symbol          string            `gorm:"not null;index" json:"symbol"`
	ForecastType    ForecastType      `gorm:"not null;index" json:"forecastType"`
	Prediction      datatypes.JSONMap `json:"prediction"`
	ConfidenceScore float64           `json:"confidenceScore"`
	Timeframe       string            `gorm:"not null" json:"timeframe"`
	ModelVersion    string            `gorm:"not null" json:"modelVersion"`
	ForecastTime    time.Time         `gorm:"not null;index" json:"forecastTime"`
	ExpiryTime      time.Time         `gorm:"not null;index" json:"expiryTime"`
	ActualOutcome   datatypes.JSONMap `json:"actualOutcome,omitempty"`
	AccuracyScore   *float64          `json:"accuracyScore,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// TableName overrides the table name used by AIForecast to `ai_forecasts`
func (AIForecast) TableName() string {
	return "ai_forecasts"
}

// IsActive reports whether the forecast has not yet expired at now.
func (f *AIForecast) IsActive(now time.Time) bool {
	return f.ExpiryTime.After(now)
}

// Validate checks the invariants a forecast must satisfy before it is stored.
func (f *AIForecast) Validate() error {
	if err := requireString("symbol", f.Symbol); err != nil {
		return err
	}
	if !f.ForecastType.Valid() {
		return NewValidationErrorWithValue("forecastType", "must be price, trend, volatility or support_resistance", f.ForecastType)
	}
	if err := validConfidence(f.ConfidenceScore); err != nil {
		return err
	}
	if err := requireString("timeframe", f.Timeframe); err != nil {
		return err
	}
	if err := requireString("modelVersion", f.ModelVersion); err != nil {
		return err
	}
	if err := requireTime("forecastTime", f.ForecastTime); err != nil {
		return err
	}
	return requireAfter("expiryTime", f.ExpiryTime, f.ForecastTime)
}

// Normalize converts every timestamp to UTC.
func (f *AIForecast) Normalize() {
	f.ForecastTime = utc(f.ForecastTime)
	f.ExpiryTime = utc(f.ExpiryTime)
	f.CreatedAt = utc(f.CreatedAt)
}

func validConfidence(v float64) error {
	if v < 0 || v > 100 {
		return NewValidationErrorWithValue("confidenceScore", "must be between 0 and 100", v)
	}
	return nil
}

// ForecastPatch is a partial update. Nil fields are left untouched.
type ForecastPatch struct {
	Symbol          *string            `json:"symbol,omitempty"`
	ForecastType    *ForecastType      `json:"forecastType,omitempty"`
	Prediction      *datatypes.JSONMap `json:"prediction,omitempty"`
	ConfidenceScore *float64           `json:"confidenceScore,omitempty"`
	Timeframe       *string            `json:"timeframe,omitempty"`
	ModelVersion    *string            `json:"modelVersion,omitempty"`
	ForecastTime    *time.Time         `json:"forecastTime,omitempty"`
	ExpiryTime      *time.Time         `json:"expiryTime,omitempty"`
	ActualOutcome   *datatypes.JSONMap `json:"actualOutcome,omitempty"`
	AccuracyScore   *float64           `json:"accuracyScore,omitempty"`
}

// Fields returns the supplied fields keyed by column name.
func (p ForecastPatch) Fields() map[string]interface{} {
	f := make(map[string]interface{})
	if p.Symbol != nil {
		f["symbol"] = *p.Symbol
	}
	if p.ForecastType != nil {
		f["forecast_type"] = *p.ForecastType
	}
	if p.Prediction != nil {
		f["prediction"] = *p.Prediction
	}
	if p.ConfidenceScore != nil {
		f["confidence_score"] = *p.ConfidenceScore
	}
	if p.Timeframe != nil {
		f["timeframe"] = *p.Timeframe
	}
	if p.ModelVersion != nil {
		f["model_version"] = *p.ModelVersion
	}
	if p.ForecastTime != nil {
		f["forecast_time"] = p.ForecastTime.UTC()
	}
	if p.ExpiryTime != nil {
		f["expiry_time"] = p.ExpiryTime.UTC()
	}
	if p.ActualOutcome != nil {
		f["actual_outcome"] = *p.ActualOutcome
	}
	if p.AccuracyScore != nil {
		f["accuracy_score"] = *p.AccuracyScore
	}
	return f
}

// Apply copies the supplied fields onto f.
func (p ForecastPatch) Apply(f *AIForecast) {
	if p.Symbol != nil {
		f.Symbol = *p.Symbol
	}
	if p.ForecastType != nil {
		f.ForecastType = *p.ForecastType
	}
	if p.Prediction != nil {
		f.Prediction = *p.Prediction
	}
	if p.ConfidenceScore != nil {
		f.ConfidenceScore = *p.ConfidenceScore
	}
	if p.Timeframe != nil {
		f.Timeframe = *p.Timeframe
	}
	if p.ModelVersion != nil {
		f.ModelVersion = *p.ModelVersion
	}
	if p.ForecastTime != nil {
		f.ForecastTime = p.ForecastTime.UTC()
	}
	if p.ExpiryTime != nil {
		f.ExpiryTime = p.ExpiryTime.UTC()
	}
	if p.ActualOutcome != nil {
		f.ActualOutcome = *p.ActualOutcome
	}
	if p.AccuracyScore != nil {
		f.AccuracyScore = Ptr(*p.AccuracyScore)
	}
}
