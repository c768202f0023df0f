package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var exportedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleSnapshot() *Snapshot {
	s := New(exportedAt)
	s.Trades = append(s.Trades, models.Trade{
		ID:         1,
		Symbol:     "BTC/USD",
		TradeType:  models.TradeTypeBuy,
		EntryPrice: 50000,
		Quantity:   0.1,
		EntryTime:  exportedAt.Add(-time.Hour),
		Status:     models.TradeStatusOpen,
		CreatedAt:  exportedAt,
		UpdatedAt:  exportedAt,
	})
	s.Forecasts = append(s.Forecasts, models.AIForecast{
		ID:              7,
		Symbol:          "BTC/USD",
		ForecastType:    models.ForecastTypePrice,
		Prediction:      datatypes.JSONMap{"targetPrice": 55000, "levels": []interface{}{1, 2.5}},
		ConfidenceScore: 85,
		Timeframe:       "1d",
		ModelVersion:    "v1.0",
		ForecastTime:    exportedAt,
		ExpiryTime:      exportedAt.Add(24 * time.Hour),
		CreatedAt:       exportedAt,
	})
	return s
}

func TestEncodeJSON_Keys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot(), FormatJSON))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"trades", "forecasts", "marketData", "strategies", "signals", "exportDate", "version"} {
		assert.Contains(t, doc, key)
	}
	assert.JSONEq(t, `"1.0"`, string(doc["version"]))
	assert.JSONEq(t, `"2024-03-01T12:00:00Z"`, string(doc["exportDate"]))
	assert.JSONEq(t, `[]`, string(doc["signals"]))

	var trades []map[string]interface{}
	require.NoError(t, json.Unmarshal(doc["trades"], &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "BTC/USD", trades[0]["symbol"])
	assert.Equal(t, "buy", trades[0]["tradeType"])
	assert.Contains(t, trades[0], "entryPrice")
	assert.NotContains(t, trades[0], "exitPrice", "absent optional fields are omitted")
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			in := sampleSnapshot()

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, in, f))
			out, err := Decode(&buf, f)
			require.NoError(t, err)

			assert.Equal(t, Version, out.Version)
			assert.True(t, out.ExportDate.Equal(exportedAt))
			require.Len(t, out.Trades, 1)
			assert.Equal(t, uint(1), out.Trades[0].ID)
			assert.True(t, out.Trades[0].EntryTime.Equal(in.Trades[0].EntryTime))
			require.Len(t, out.Forecasts, 1)
			assert.Equal(t, uint(7), out.Forecasts[0].ID)

			want, err := json.Marshal(in.Forecasts[0].Prediction)
			require.NoError(t, err)
			got, err := json.Marshal(out.Forecasts[0].Prediction)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
			assert.Empty(t, out.MarketData)
		})
	}
}

func TestEncodeYAML_Readable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot(), FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "version: \"1.0\"")
	assert.Contains(t, out, "symbol: BTC/USD")
	assert.Contains(t, out, "targetPrice: 55000")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("trades: [unterminated"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("{}"), Format("xml"))
	assert.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("1.0"))

	for _, v := range []string{"", "1", "2.0"} {
		err := CheckVersion(v)
		assert.True(t, errors.Is(err, models.ErrValidation), "version %q", v)
	}
}

func TestPrepare(t *testing.T) {
	t.Run("normalises to UTC", func(t *testing.T) {
		s := sampleSnapshot()
		s.Trades[0].EntryTime = time.Date(2024, 3, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))

		require.NoError(t, s.Prepare())
		assert.Equal(t, time.UTC, s.Trades[0].EntryTime.Location())
	})

	t.Run("entry time defaults to creation time", func(t *testing.T) {
		s := sampleSnapshot()
		s.Trades[0].EntryTime = time.Time{}

		require.NoError(t, s.Prepare())
		assert.True(t, s.Trades[0].EntryTime.Equal(exportedAt))
	})

	t.Run("trade without any timestamp", func(t *testing.T) {
		s := sampleSnapshot()
		s.Trades[0].EntryTime = time.Time{}
		s.Trades[0].CreatedAt = time.Time{}

		var ve *models.ValidationError
		require.True(t, errors.As(s.Prepare(), &ve))
		assert.Equal(t, "trades[0].entryTime", ve.Field)
	})

	t.Run("locates the bad row", func(t *testing.T) {
		s := sampleSnapshot()
		s.Forecasts = append(s.Forecasts, s.Forecasts[0])
		s.Forecasts[1].ConfidenceScore = 150

		err := s.Prepare()
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "forecasts[1].confidenceScore", ve.Field)
	})

	t.Run("rejects version", func(t *testing.T) {
		s := sampleSnapshot()
		s.Version = "0.9"

		var ve *models.ValidationError
		require.True(t, errors.As(s.Prepare(), &ve))
		assert.Equal(t, "version", ve.Field)
	})
}

func TestFormats(t *testing.T) {
	testCases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: "YAML", want: FormatYAML},
		{in: " yml ", want: FormatYAML},
		{in: "csv", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	assert.Equal(t, FormatYAML, FormatFromPath("backup/trading-data.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("trading-data.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("trading-data"))
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "trading-data-2024-01-02T08:04:05.006Z.json", FileName(ts, FormatJSON))
	assert.Equal(t, "trading-data-2024-01-02T08:04:05.006Z.yaml", FileName(ts, FormatYAML))
}

func TestCounts_Total(t *testing.T) {
	c := Counts{Trades: 2, Forecasts: 1, Signals: 4}
	assert.Equal(t, int64(7), c.Total())
	assert.Equal(t, 0, New(exportedAt).Len())
	assert.Equal(t, 2, sampleSnapshot().Len())
}
