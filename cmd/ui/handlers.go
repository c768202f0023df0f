package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/repository"
	"trade-journal-go/internal/snapshot"

	"go.uber.org/zap"
)

// maxImportBytes bounds the size of an uploaded snapshot.
const maxImportBytes = 64 << 20

// Journal is the part of the store the bulk endpoints use.
type Journal interface {
	Counts() (snapshot.Counts, error)
	AddSampleData() (tradeID, forecastID uint, err error)
	Export() (*snapshot.Snapshot, error)
	Import(s *snapshot.Snapshot) error
	ClearAll() error
}

// TradeReader is the part of the trade repository the API reads from.
type TradeReader interface {
	GetAll() ([]models.Trade, error)
	GetBySymbol(symbol string) ([]models.Trade, error)
	GetOpen() ([]models.Trade, error)
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	journal Journal
	trades  TradeReader
	now     func() time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, repos *repository.Repositories) *APIHandler {
	return &APIHandler{
		log:     log.Named("api"),
		journal: repos,
		trades:  repos.Trades,
		now:     repos.DB().Now,
	}
}

// Routes registers every endpoint on a new mux.
func (h *APIHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", h.StatusHandler)
	mux.HandleFunc("GET /api/stats", h.StatisticsHandler)
	mux.HandleFunc("GET /api/trades", h.TradesHandler)
	mux.HandleFunc("POST /api/sample", h.SampleHandler)
	mux.HandleFunc("GET /api/export", h.ExportHandler)
	mux.HandleFunc("POST /api/import", h.ImportHandler)
	mux.HandleFunc("POST /api/clear", h.ClearHandler)
	return mux
}

// StatusHandler reports that the store is reachable.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := h.journal.Counts()
	if err != nil {
		h.fail(w, "Failed to read journal status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"rows":   counts.Total(),
		"time":   h.now(),
	})
}

// TradesHandler returns trades, most recent entry first. The optional symbol
// query parameter filters by symbol; status=open returns only open trades.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	var (
		trades []models.Trade
		err    error
	)
	switch symbol, status := r.URL.Query().Get("symbol"), r.URL.Query().Get("status"); {
	case symbol != "":
		trades, err = h.trades.GetBySymbol(symbol)
	case status == string(models.TradeStatusOpen):
		trades, err = h.trades.GetOpen()
	default:
		trades, err = h.trades.GetAll()
	}
	if err != nil {
		h.fail(w, "Failed to get trades", err)
		return
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime.After(trades[j].EntryTime)
	})
	writeJSON(w, http.StatusOK, trades)
}

// StatsDetail holds calculated statistics for a given period.
type StatsDetail struct {
	TotalTrades      int64   `json:"total_trades"`
	ProfitableTrades int64   `json:"profitable_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalProfit      float64 `json:"total_profit"`
}

func (s *StatsDetail) add(t models.Trade) {
	s.TotalTrades++
	if *t.ProfitLoss > 0 {
		s.ProfitableTrades++
	}
	s.TotalProfit += *t.ProfitLoss
}

func (s *StatsDetail) finish() {
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.ProfitableTrades) / float64(s.TotalTrades)
	}
}

// StatisticsResponse is the structure for the /api/stats endpoint.
type StatisticsResponse struct {
	Counts   snapshot.Counts `json:"counts"`
	Since24h StatsDetail     `json:"since_24h"`
	AllTime  StatsDetail     `json:"all_time"`
}

// StatisticsHandler returns row counts and profit statistics over trades
// with a recorded profit/loss.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := h.journal.Counts()
	if err != nil {
		h.fail(w, "Failed to calculate statistics", err)
		return
	}
	trades, err := h.trades.GetAll()
	if err != nil {
		h.fail(w, "Failed to calculate statistics", err)
		return
	}

	since24h := h.now().Add(-24 * time.Hour)
	response := StatisticsResponse{Counts: counts}
	for _, trade := range trades {
		if trade.ProfitLoss == nil {
			continue
		}
		response.AllTime.add(trade)

		closedAt := trade.EntryTime
		if trade.ExitTime != nil {
			closedAt = *trade.ExitTime
		}
		if closedAt.After(since24h) {
			response.Since24h.add(trade)
		}
	}
	response.AllTime.finish()
	response.Since24h.finish()

	writeJSON(w, http.StatusOK, response)
}

// SampleHandler adds the sample trade and forecast.
func (h *APIHandler) SampleHandler(w http.ResponseWriter, r *http.Request) {
	tradeID, forecastID, err := h.journal.AddSampleData()
	if err != nil {
		h.fail(w, "Failed to add sample data", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint{"tradeId": tradeID, "forecastId": forecastID})
}

// ExportHandler downloads a snapshot of the whole journal. The format query
// parameter selects json (default) or yaml.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	f, err := snapshot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.journal.Export()
	if err != nil {
		h.fail(w, "Failed to export data", err)
		return
	}

	w.Header().Set("Content-Type", contentType(f))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snapshot.FileName(s.ExportDate, f)))
	if err := snapshot.Encode(w, s, f); err != nil {
		h.log.Error("Failed to write export", zap.Error(err))
	}
}

// ImportHandler loads a snapshot from the request body. YAML is accepted
// when the format query parameter or the Content-Type says so.
func (h *APIHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = string(snapshot.FormatYAML)
	}
	f, err := snapshot.ParseFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := snapshot.Decode(http.MaxBytesReader(w, r.Body, maxImportBytes), f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.journal.Import(s); err != nil {
		if database.IsDuplicate(err) {
			// Nothing was written.
			h.log.Warn("Import rejected", zap.Error(err))
			http.Error(w, "Failed to import data: the journal already holds a row with the same id", http.StatusConflict)
			return
		}
		h.fail(w, "Failed to import data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": s.Len()})
}

// ClearHandler deletes all journal data.
func (h *APIHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.ClearAll(); err != nil {
		h.fail(w, "Failed to clear data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps err to a status code. Validation problems are the caller's fault
// and are echoed back; anything else is logged and hidden.
func (h *APIHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error(msg, zap.Error(err))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func contentType(f snapshot.Format) string {
	if f == snapshot.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
