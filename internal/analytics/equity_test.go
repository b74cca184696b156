package analytics

import (
	"testing"
	"time"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func tradesWithPnL(pnls []float64) []models.Trade {
	base := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	out := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		out[i] = models.Trade{
			EntryTime: base.Add(time.Duration(i) * time.Hour),
			PnL:       p,
		}
	}
	return out
}

func TestBuildEquity(t *testing.T) {
	points := BuildEquity(tradesWithPnL([]float64{100, -50, -80, 200}), 5000)

	assert.Len(t, points, 4)
	assert.Equal(t, []float64{5100, 5050, 4970, 5170}, []float64{
		points[0].Equity, points[1].Equity, points[2].Equity, points[3].Equity,
	})
	assert.Equal(t, []float64{5100, 5100, 5100, 5170}, []float64{
		points[0].Peak, points[1].Peak, points[2].Peak, points[3].Peak,
	})

	// dd_pct = (equity/peak - 1) * 100
	assert.Equal(t, 0.0, points[0].DDPct)
	assert.InDelta(t, -0.9804, points[1].DDPct, 0.0001)
	assert.InDelta(t, -2.5490, points[2].DDPct, 0.0001)
	assert.Equal(t, 0.0, points[3].DDPct)

	assert.Equal(t, 1, points[0].TradeNo)
	assert.Equal(t, 4, points[3].TradeNo)
	assert.Equal(t, 170.0, points[3].CumPnL)
}

func TestBuildEquityEmpty(t *testing.T) {
	points := BuildEquity(nil, 5000)

	assert.Len(t, points, 1)
	assert.Equal(t, 0, points[0].TradeNo)
	assert.Equal(t, 5000.0, points[0].Equity)
	assert.Equal(t, 5000.0, points[0].Peak)
	assert.Equal(t, 0.0, points[0].DDPct)
}

func TestBuildEquityZeroPeakGuard(t *testing.T) {
	// Equity driven below zero with a zero starting capital must not divide
	// by a non-positive peak.
	points := BuildEquity(tradesWithPnL([]float64{-100}), 0)

	assert.Equal(t, -100.0, points[0].Equity)
	assert.Equal(t, 0.0, points[0].Peak)
	assert.Equal(t, 0.0, points[0].DDPct)
	assert.Equal(t, -100.0, points[0].DDAbs)
}

func TestBuildDailyEquity(t *testing.T) {
	day1 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{EntryTime: day1, PnL: 100},
		{EntryTime: day1.Add(2 * time.Hour), PnL: -30},
		{EntryTime: day2, PnL: 50},
	}

	points := BuildDailyEquity(trades, 1000)

	assert.Len(t, points, 2)
	assert.Equal(t, 70.0, points[0].PnL) // 100 - 30 on the first day
	assert.Equal(t, 1070.0, points[0].Equity)
	assert.Equal(t, 1120.0, points[1].Equity)
}

func TestBuildDailyEquityNoTimestamps(t *testing.T) {
	trades := []models.Trade{{PnL: 10}, {PnL: -5}}

	// Falls back to the per-trade pass when no row carries a timestamp.
	points := BuildDailyEquity(trades, 100)
	assert.Len(t, points, 2)
	assert.Equal(t, 105.0, points[1].Equity)
}

func TestComputeDrawdownStats(t *testing.T) {
	testCases := []struct {
		name            string
		pnls            []float64
		expectRecovered bool
		expectMaxDDPct  float64
		expectTradeNo   int
		expectRecoveryN int
		expectMessage   string
	}{
		{
			name:            "recovered after trough",
			pnls:            []float64{100, -50, -80, 200},
			expectRecovered: true,
			expectMaxDDPct:  -2.5490,
			expectTradeNo:   3,
			expectRecoveryN: 1,
			expectMessage:   "recovered from max drawdown in 1 trades",
		},
		{
			name:            "still underwater",
			pnls:            []float64{100, -50, -80},
			expectRecovered: false,
			expectMaxDDPct:  -2.5490,
			expectTradeNo:   3,
			expectMessage:   "not yet recovered from max drawdown",
		},
		{
			name:            "never underwater",
			pnls:            []float64{10, 20, 30},
			expectRecovered: true,
			expectMaxDDPct:  0,
			expectTradeNo:   1,
			expectMessage:   "no drawdown observed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			points := BuildEquity(tradesWithPnL(tc.pnls), 5000)
			stats := ComputeDrawdownStats(points)

			assert.Equal(t, tc.expectRecovered, stats.Recovered)
			assert.InDelta(t, tc.expectMaxDDPct, stats.MaxDDPct, 0.0001)
			assert.Equal(t, tc.expectTradeNo, stats.MaxDDTradeNo)
			assert.Equal(t, tc.expectRecoveryN, stats.RecoveryTrades)
			assert.Equal(t, tc.expectMessage, stats.Message)
		})
	}
}

func TestComputeDrawdownStatsEmpty(t *testing.T) {
	stats := ComputeDrawdownStats(BuildEquity(nil, 5000))

	assert.True(t, stats.Recovered)
	assert.Equal(t, "no rows available to compute drawdown", stats.Message)
	assert.Equal(t, 0.0, stats.MaxDDPct)
}

func TestComputeDrawdownStatsSincePeak(t *testing.T) {
	// Peak at trade 2, trough at trade 4: two trades from peak to trough.
	points := BuildEquity(tradesWithPnL([]float64{50, 50, -30, -40}), 1000)
	stats := ComputeDrawdownStats(points)

	assert.Equal(t, 4, stats.MaxDDTradeNo)
	assert.Equal(t, 2, stats.SincePeakTrades)
	assert.False(t, stats.Recovered)
	assert.InDelta(t, -70.0, stats.CurrentDDAbs, 1e-9)
}

func TestSliceWindow(t *testing.T) {
	base := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	points := make([]EquityPoint, 40)
	for i := range points {
		points[i] = EquityPoint{
			TradeNo: i + 1,
			Time:    base.AddDate(0, 0, -(len(points) - 1 - i)),
		}
	}

	testCases := []struct {
		label     string
		expectLen int
	}{
		{"All", 40},
		{"", 40},
		{"1D", 1},
		{"1W", 7},
		{"1M", 30},
		{"6M", 40}, // shorter history than the window keeps everything
		{"bogus", 40},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			got := SliceWindow(points, tc.label)
			assert.Len(t, got, tc.expectLen)
			if len(got) > 0 {
				assert.Equal(t, 40, got[len(got)-1].TradeNo)
			}
		})
	}
}

func TestSliceWindowNeverEmpty(t *testing.T) {
	// All points older than the window: the final point survives.
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []EquityPoint{
		{TradeNo: 1, Time: old},
		{TradeNo: 2, Time: old.AddDate(0, 0, 1)},
	}
	// Synthetic check through the 1D window relative to the last point.
	got := SliceWindow(points, "1D")
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TradeNo)
}
