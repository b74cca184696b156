package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/store"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log    *zap.Logger
	trades *store.Store
	cfg    *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, trades *store.Store, cfg *config.Config) *APIHandler {
	return &APIHandler{log: log, trades: trades, cfg: cfg}
}

// parseFilter reads the shared filter query params. List params accept
// comma-separated values; from/to are calendar days.
func parseFilter(r *http.Request) analytics.Filter {
	q := r.URL.Query()
	list := func(key string) []string {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	}
	day := func(key string) *time.Time {
		if t, err := time.Parse("2006-01-02", q.Get(key)); err == nil {
			return &t
		}
		return nil
	}
	return analytics.Filter{
		Accounts: list("account"),
		Symbols:  list("symbol"),
		Sides:    list("side"),
		Tiers:    list("tier"),
		Sessions: list("session"),
		From:     day("from"),
		To:       day("to"),
		Preset:   q.Get("range"),
	}
}

// view loads the filtered trade set in analysis order plus its starting
// equity. Every endpoint recomputes from here; nothing is cached.
func (h *APIHandler) view(w http.ResponseWriter, r *http.Request) ([]models.Trade, float64, bool) {
	filter := parseFilter(r)

	all, err := h.trades.ListForAnalysis()
	if err != nil {
		h.log.Error("Failed to load trades", zap.Error(err))
		http.Error(w, "Failed to load trades", http.StatusInternalServerError)
		return nil, 0, false
	}

	startEquity, err := h.trades.StartEquityFor(filter.Accounts)
	if err != nil {
		h.log.Error("Failed to resolve starting equity", zap.Error(err))
		http.Error(w, "Failed to resolve starting equity", http.StatusInternalServerError)
		return nil, 0, false
	}

	return filter.Apply(all), startEquity, true
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

// TradesHandler returns the filtered trades with their derived fields,
// newest first for table views.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	enriched := analytics.ComputeDerived(trades)
	// Analysis order is ascending; tables want the latest on top.
	for i, j := 0, len(enriched)-1; i < j; i, j = i+1, j-1 {
		enriched[i], enriched[j] = enriched[j], enriched[i]
	}
	h.writeJSON(w, enriched)
}

// SummaryHandler returns the KPI block for the filtered view.
func (h *APIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	trades, startEquity, ok := h.view(w, r)
	if !ok {
		return
	}
	policy := analytics.BreakevenPolicy(h.cfg.Journal.BreakevenPolicy)
	h.writeJSON(w, analytics.ComputeSummary(trades, startEquity, policy))
}

// EquityHandler returns the equity curve. ?granularity=daily resamples to
// one point per trading day; ?window=1D|1W|1M|6M|1Y slices the tail.
func (h *APIHandler) EquityHandler(w http.ResponseWriter, r *http.Request) {
	trades, startEquity, ok := h.view(w, r)
	if !ok {
		return
	}
	var points []analytics.EquityPoint
	if r.URL.Query().Get("granularity") == "daily" {
		points = analytics.BuildDailyEquity(trades, startEquity)
	} else {
		points = analytics.BuildEquity(trades, startEquity)
	}
	if window := r.URL.Query().Get("window"); window != "" {
		points = analytics.SliceWindow(points, window)
	}
	h.writeJSON(w, points)
}

// DrawdownHandler returns the drawdown series plus its stats.
func (h *APIHandler) DrawdownHandler(w http.ResponseWriter, r *http.Request) {
	trades, startEquity, ok := h.view(w, r)
	if !ok {
		return
	}
	points := analytics.BuildEquity(trades, startEquity)
	h.writeJSON(w, struct {
		Points []analytics.EquityPoint `json:"points"`
		Stats  analytics.DrawdownStats `json:"stats"`
	}{points, analytics.ComputeDrawdownStats(points)})
}

// StreaksHandler returns trade- and day-level win streaks.
func (h *APIHandler) StreaksHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, struct {
		Trades analytics.StreakStats `json:"trades"`
		Days   analytics.StreakStats `json:"days"`
	}{analytics.TradeStreaks(trades), analytics.DayStreaks(trades)})
}

// BarsHandler returns the fixed-width PnL trend bars.
// ?mode=hourly|daily|weekly|monthly|3m|1y, ?count= overrides the width.
func (h *APIHandler) BarsHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	mode := analytics.BarMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = analytics.BarDaily
	}
	count := analytics.DefaultBucketCount
	if n, err := strconv.Atoi(r.URL.Query().Get("count")); err == nil && n > 0 {
		count = n
	}

	series := make([]analytics.TimeValue, len(trades))
	for i, t := range trades {
		series[i] = analytics.TimeValue{Time: t.EntryTime, Value: t.PnL}
	}
	h.writeJSON(w, analytics.WindowedBars(series, mode, count))
}

// CalendarHandler returns the month grid for ?month=YYYY-MM (default: the
// current month).
func (h *APIHandler) CalendarHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	month := time.Now()
	if m, err := time.Parse("2006-01", r.URL.Query().Get("month")); err == nil {
		month = m
	}
	h.writeJSON(w, analytics.BuildMonthGrid(trades, month))
}

// MonthlyHandler returns the long-range monthly performance table.
func (h *APIHandler) MonthlyHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	yearsBack := h.cfg.Journal.YearsBack
	if n, err := strconv.Atoi(r.URL.Query().Get("years")); err == nil && n > 0 {
		yearsBack = n
	}
	h.writeJSON(w, analytics.BuildMonthlyTable(analytics.ComputeDerived(trades), yearsBack))
}

// PerformanceHandler returns the per-day aggregates plus their rolling
// win-rate/expectancy series. ?window= overrides the 20-day default.
func (h *APIHandler) PerformanceHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	window := 20
	if n, err := strconv.Atoi(r.URL.Query().Get("window")); err == nil && n > 0 {
		window = n
	}
	daily := analytics.DailyStats(analytics.ComputeDerived(trades))
	h.writeJSON(w, struct {
		Daily   []analytics.DailyStat    `json:"daily"`
		Rolling []analytics.RollingPoint `json:"rolling"`
	}{daily, analytics.Rolling(daily, window)})
}

// SymbolsHandler returns net PnL per symbol, top earners plus "Others".
func (h *APIHandler) SymbolsHandler(w http.ResponseWriter, r *http.Request) {
	trades, _, ok := h.view(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, analytics.ProfitBySymbol(trades, 5))
}
