package repository

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAll(t *testing.T, repos *Repositories) {
	t.Helper()

	tradeID, err := repos.Trades.Add(btcTrade())
	require.NoError(t, err)
	exitTime := t0.Add(time.Hour)
	require.NoError(t, repos.Trades.Update(tradeID, models.TradePatch{
		ExitPrice:  models.Ptr(51000.0),
		ExitTime:   &exitTime,
		Status:     models.Ptr(models.TradeStatusClosed),
		ProfitLoss: models.Ptr(100.0),
	}))
	forecastID, err := repos.Forecasts.Add(priceForecast("BTC/USD", t0.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repos.MarketData.Add(candle("BTC/USD", t0, 50000))
	require.NoError(t, err)
	strategyID, err := repos.Strategies.Add(&models.TradingStrategy{Name: "momentum", IsActive: true})
	require.NoError(t, err)
	s := signal("BTC/USD", t0, t0.Add(time.Hour))
	s.StrategyID = &strategyID
	s.ForecastID = &forecastID
	_, err = repos.Signals.Add(s)
	require.NoError(t, err)
}

func TestExport(t *testing.T) {
	repos, _ := newTestRepos(t)
	seedAll(t, repos)

	s, err := repos.Export()
	require.NoError(t, err)

	assert.Equal(t, snapshot.Version, s.Version)
	assert.True(t, s.ExportDate.Equal(t0))
	assert.Len(t, s.Trades, 1)
	assert.Len(t, s.Forecasts, 1)
	assert.Len(t, s.MarketData, 1)
	assert.Len(t, s.Strategies, 1)
	assert.Len(t, s.Signals, 1)
}

func TestExport_Empty(t *testing.T) {
	repos, _ := newTestRepos(t)

	s, err := repos.Export()
	require.NoError(t, err)

	// Empty collections must still encode as [] rather than null.
	var buf bytes.Buffer
	require.NoError(t, snapshot.Encode(&buf, s, snapshot.FormatJSON))
	assert.Contains(t, buf.String(), `"trades": []`)
	assert.Contains(t, buf.String(), `"signals": []`)
	assert.Zero(t, s.Len())
}

func TestExportClearImportRoundTrip(t *testing.T) {
	for _, format := range []snapshot.Format{snapshot.FormatJSON, snapshot.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			repos, _ := newTestRepos(t)
			seedAll(t, repos)

			before, err := repos.Export()
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, snapshot.Encode(&buf, before, format))

			require.NoError(t, repos.ClearAll())
			counts, err := repos.Counts()
			require.NoError(t, err)
			assert.Zero(t, counts.Total())

			decoded, err := snapshot.Decode(&buf, format)
			require.NoError(t, err)
			require.NoError(t, repos.Import(decoded))

			after, err := repos.Export()
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestImport_OnlyTradesLeavesOtherTables(t *testing.T) {
	repos, _ := newTestRepos(t)
	seedAll(t, repos)

	s := snapshot.New(t0)
	tr := btcTrade()
	tr.ID = 100
	tr.CreatedAt = t0.Add(-48 * time.Hour)
	tr.UpdatedAt = t0.Add(-48 * time.Hour)
	s.Trades = append(s.Trades, *tr)
	s.Forecasts = nil

	require.NoError(t, repos.Import(s))

	counts, err := repos.Counts()
	require.NoError(t, err)
	assert.Equal(t, snapshot.Counts{Trades: 2, Forecasts: 1, MarketData: 1, Strategies: 1, Signals: 1}, counts)

	got, err := repos.Trades.Get(100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(t0.Add(-48*time.Hour)), "imported timestamps are kept")
}

func TestImport_ConflictRollsBack(t *testing.T) {
	repos, _ := newTestRepos(t)

	existing, err := repos.Signals.Add(signal("BTC/USD", t0, t0.Add(time.Hour)))
	require.NoError(t, err)

	s := snapshot.New(t0)
	tr := btcTrade()
	tr.ID = 10
	s.Trades = append(s.Trades, *tr)
	sig := signal("ETH/USD", t0, t0.Add(time.Hour))
	sig.ID = existing
	s.Signals = append(s.Signals, *sig)

	err = repos.Import(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, database.ErrStorage))
	assert.True(t, database.IsDuplicate(err))

	var se *database.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Import", se.Operation)
	assert.Equal(t, string(database.TableSignals), se.Table)

	counts, err := repos.Counts()
	require.NoError(t, err)
	assert.Zero(t, counts.Trades, "trades inserted before the conflict must be rolled back")
	assert.Equal(t, int64(1), counts.Signals)
}

func TestImport_Rejects(t *testing.T) {
	repos, _ := newTestRepos(t)

	t.Run("nil snapshot", func(t *testing.T) {
		assertValidationField(t, repos.Import(nil), "snapshot")
	})

	t.Run("unsupported version", func(t *testing.T) {
		s := snapshot.New(t0)
		s.Version = "2.0"
		s.Trades = append(s.Trades, *btcTrade())
		assertValidationField(t, repos.Import(s), "version")
	})

	t.Run("invalid row", func(t *testing.T) {
		s := snapshot.New(t0)
		bad := btcTrade()
		bad.Quantity = 0
		s.Trades = append(s.Trades, *btcTrade(), *bad)
		assertValidationField(t, repos.Import(s), "trades[1].quantity")
	})

	counts, err := repos.Counts()
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

func TestClearAll_Empty(t *testing.T) {
	repos, _ := newTestRepos(t)

	assert.NoError(t, repos.ClearAll())
	assert.NoError(t, repos.ClearAll())
}

func TestAddSampleData(t *testing.T) {
	repos, _ := newTestRepos(t)

	tradeID, forecastID, err := repos.AddSampleData()
	require.NoError(t, err)

	trade, err := repos.Trades.Get(tradeID)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, "BTC/USD", trade.Symbol)
	assert.Equal(t, models.TradeStatusOpen, trade.Status)
	assert.Equal(t, "Sample trade", trade.Notes)

	active, err := repos.Forecasts.GetActiveBySymbol("BTC/USD")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, forecastID, active[0].ID)
	assert.JSONEq(t, `{"targetPrice":55000,"probability":0.75}`, jsonOf(t, active[0].Prediction))

	counts, err := repos.Counts()
	require.NoError(t, err)
	assert.Equal(t, snapshot.Counts{Trades: 1, Forecasts: 1}, counts)
}
