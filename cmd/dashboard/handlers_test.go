package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestAPI builds an APIHandler over a seeded in-memory journal.
func setupTestAPI(t *testing.T) *APIHandler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Trade{}, &models.Account{}))

	trades := store.NewStore(db, 5000, zap.NewNop())

	entry := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	seed := []models.Trade{
		{TradeID: "1", Symbol: "ES", Side: models.SideLong, Account: "Main", EntryTime: entry, ExitTime: entry.Add(time.Hour), PnL: 100},
		{TradeID: "2", Symbol: "NQ", Side: models.SideShort, Account: "Main", EntryTime: entry.Add(time.Hour), ExitTime: entry.Add(2 * time.Hour), PnL: -50},
		{TradeID: "3", Symbol: "ES", Side: models.SideLong, Account: "Sim", EntryTime: entry.Add(2 * time.Hour), ExitTime: entry.Add(3 * time.Hour), PnL: -80},
		{TradeID: "4", Symbol: "ES", Side: models.SideLong, Account: "Main", EntryTime: entry.Add(3 * time.Hour), ExitTime: entry.Add(4 * time.Hour), PnL: 200},
	}
	for i := range seed {
		require.NoError(t, trades.Create(&seed[i]))
	}

	cfg := &config.Config{}
	cfg.Journal.StartEquity = 5000
	cfg.Journal.BreakevenPolicy = "exclude"
	cfg.Journal.YearsBack = 2

	return NewAPIHandler(zap.NewNop(), trades, cfg)
}

func doRequest(t *testing.T, handler http.HandlerFunc, url string, out any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	return rec
}

func TestTradesHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.EnrichedTrade
	rec := doRequest(t, h.TradesHandler, "/api/trades", &got)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, got, 4)
	// Newest first for the table view.
	assert.Equal(t, "4", got[0].TradeID)
	assert.Equal(t, 4, got[0].TradeNo)
	assert.Equal(t, analytics.OutcomeWin, got[0].Outcome)
	assert.Equal(t, "1h", got[0].DurationLabel)
}

func TestTradesHandlerFiltered(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.EnrichedTrade
	doRequest(t, h.TradesHandler, "/api/trades?symbol=ES&account=Main", &got)

	require.Len(t, got, 2)
	assert.Equal(t, "4", got[0].TradeID)
	assert.Equal(t, "1", got[1].TradeID)
}

func TestSummaryHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got analytics.Summary
	doRequest(t, h.SummaryHandler, "/api/summary", &got)

	assert.Equal(t, 4, got.TotalTrades)
	assert.Equal(t, 170.0, got.NetPnL)
	assert.Equal(t, 0.5, got.WinRate)
	assert.Equal(t, 5170.0, got.CurrentBalance)
}

func TestEquityHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.EquityPoint
	doRequest(t, h.EquityHandler, "/api/equity", &got)

	require.Len(t, got, 4)
	assert.Equal(t, 5100.0, got[0].Equity)
	assert.Equal(t, 5170.0, got[3].Equity)
}

func TestEquityHandlerDaily(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.EquityPoint
	doRequest(t, h.EquityHandler, "/api/equity?granularity=daily", &got)

	// All four trades fall on one day.
	require.Len(t, got, 1)
	assert.Equal(t, 5170.0, got[0].Equity)
}

func TestDrawdownHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got struct {
		Points []analytics.EquityPoint `json:"points"`
		Stats  analytics.DrawdownStats `json:"stats"`
	}
	doRequest(t, h.DrawdownHandler, "/api/drawdown", &got)

	require.Len(t, got.Points, 4)
	assert.True(t, got.Stats.Recovered)
	assert.Equal(t, 3, got.Stats.MaxDDTradeNo)
	assert.InDelta(t, -2.5490, got.Stats.MaxDDPct, 0.0001)
}

func TestStreaksHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got struct {
		Trades analytics.StreakStats `json:"trades"`
		Days   analytics.StreakStats `json:"days"`
	}
	doRequest(t, h.StreaksHandler, "/api/streaks", &got)

	assert.Equal(t, 1, got.Trades.Current)
	assert.Equal(t, 1, got.Trades.Best)
	assert.Equal(t, 1, got.Days.Current) // the single day nets +170
}

func TestBarsHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.Bucket
	doRequest(t, h.BarsHandler, "/api/bars?mode=hourly", &got)

	require.Len(t, got, analytics.DefaultBucketCount)
	last := got[len(got)-1]
	assert.Equal(t, 200.0, last.Mean)
	assert.Equal(t, 1, last.Count)
}

func TestBarsHandlerCustomCount(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.Bucket
	doRequest(t, h.BarsHandler, "/api/bars?mode=daily&count=7", &got)
	assert.Len(t, got, 7)
}

func TestCalendarHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got analytics.MonthGrid
	doRequest(t, h.CalendarHandler, "/api/calendar?month=2024-03", &got)

	assert.Equal(t, 170.0, got.NetPnL)
	assert.Equal(t, 4, got.TradeCount)
	assert.Len(t, got.Weeks, 5)
}

func TestMonthlyHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got analytics.MonthlyTable
	doRequest(t, h.MonthlyHandler, "/api/monthly", &got)

	require.Len(t, got.Months, 1)
	assert.Equal(t, 2024, got.Months[0].Year)
	assert.Equal(t, 3, got.Months[0].Month)
	assert.Equal(t, 170.0, got.Months[0].PnLSum)
	require.Len(t, got.Years, 1)
	assert.Equal(t, 170.0, got.Years[0].PnLSum)
}

func TestPerformanceHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got struct {
		Daily   []analytics.DailyStat    `json:"daily"`
		Rolling []analytics.RollingPoint `json:"rolling"`
	}
	doRequest(t, h.PerformanceHandler, "/api/performance", &got)

	require.Len(t, got.Daily, 1)
	assert.Equal(t, 170.0, got.Daily[0].NetPnL)
	assert.Equal(t, 4, got.Daily[0].Trades)
	assert.Equal(t, 2, got.Daily[0].Wins)
	require.Len(t, got.Rolling, 1)
	assert.InDelta(t, 50.0, got.Rolling[0].WinRate, 1e-9)
}

func TestSymbolsHandler(t *testing.T) {
	h := setupTestAPI(t)

	var got []analytics.SymbolPnL
	doRequest(t, h.SymbolsHandler, "/api/symbols", &got)

	require.Len(t, got, 2)
	assert.Equal(t, analytics.SymbolPnL{Symbol: "ES", NetPnL: 220}, got[0])
	assert.Equal(t, analytics.SymbolPnL{Symbol: "NQ", NetPnL: -50}, got[1])
}

func TestParseFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/trades?symbol=ES,NQ&side=Long&from=2024-03-01&to=2024-03-31&range=ytd", nil)

	f := parseFilter(req)

	assert.Equal(t, []string{"ES", "NQ"}, f.Symbols)
	assert.Equal(t, []string{"Long"}, f.Sides)
	require.NotNil(t, f.From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, "ytd", f.Preset)
}
