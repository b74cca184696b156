package analytics

import (
	"fmt"
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// recoveryEpsilon tolerates floating-point noise when deciding that a
// drawdown has closed back to the running peak.
const recoveryEpsilon = 1e-9

// EquityPoint is one step of the equity curve: running PnL, equity against
// starting capital, the running peak and the drawdown from it.
type EquityPoint struct {
	TradeNo int       `json:"trade_no"`
	Time    time.Time `json:"time,omitempty"`
	PnL     float64   `json:"pnl"`
	CumPnL  float64   `json:"cum_pnl"`
	Equity  float64   `json:"equity"`
	Peak    float64   `json:"peak"`
	DDAbs   float64   `json:"dd_abs"` // ≤ 0
	DDPct   float64   `json:"dd_pct"` // ≤ 0, percent; 0 when peak ≤ 0
}

// DrawdownStats summarizes the curve's current and worst drawdown.
type DrawdownStats struct {
	CurrentDDPct    float64 `json:"current_dd_pct"`
	CurrentDDAbs    float64 `json:"current_dd_abs"`
	MaxDDPct        float64 `json:"max_dd_pct"`
	MaxDDAbs        float64 `json:"max_dd_abs"`
	MaxDDTradeNo    int     `json:"max_dd_trade_no"`
	SincePeakTrades int     `json:"since_peak_trades"`
	Recovered       bool    `json:"recovered"`
	RecoveryTrades  int     `json:"recovery_trades"`
	Message         string  `json:"message"`
}

// BuildEquity runs the single left-to-right equity pass over trades that
// are already in analysis order. The peak initializes at startEquity. An
// empty sequence yields one flat synthetic point at the starting capital.
func BuildEquity(trades []models.Trade, startEquity float64) []EquityPoint {
	if len(trades) == 0 {
		return []EquityPoint{{Equity: startEquity, Peak: startEquity}}
	}

	points := make([]EquityPoint, len(trades))
	cum := 0.0
	peak := startEquity
	for i, t := range trades {
		cum += t.PnL
		equity := startEquity + cum
		if equity > peak {
			peak = equity
		}
		p := EquityPoint{
			TradeNo: i + 1,
			Time:    t.EntryTime,
			PnL:     t.PnL,
			CumPnL:  cum,
			Equity:  equity,
			Peak:    peak,
			DDAbs:   equity - peak,
		}
		if peak > 0 {
			p.DDPct = (equity/peak - 1) * 100
		}
		points[i] = p
	}
	return points
}

// BuildDailyEquity aggregates PnL per calendar day before running the
// equity pass, one point per trading day. Trades without usable timestamps
// fall back to the per-trade pass.
func BuildDailyEquity(trades []models.Trade, startEquity float64) []EquityPoint {
	usable := false
	for _, t := range trades {
		if !t.EntryTime.IsZero() {
			usable = true
			break
		}
	}
	if !usable {
		return BuildEquity(trades, startEquity)
	}

	byDay := make(map[time.Time]float64)
	for _, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		day := dayOf(t.EntryTime)
		byDay[day] += t.PnL
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	daily := make([]models.Trade, len(days))
	for i, d := range days {
		daily[i] = models.Trade{EntryTime: d, PnL: byDay[d]}
	}
	return BuildEquity(daily, startEquity)
}

// ComputeDrawdownStats derives the current/max drawdown and recovery facts
// from an equity curve. A curve that carries no real trades (the synthetic
// flat point) reports recovered with a "no rows" message instead of failing.
func ComputeDrawdownStats(points []EquityPoint) DrawdownStats {
	if len(points) == 0 || (len(points) == 1 && points[0].TradeNo == 0) {
		return DrawdownStats{
			Recovered: true,
			Message:   "no rows available to compute drawdown",
		}
	}

	last := points[len(points)-1]
	stats := DrawdownStats{
		CurrentDDPct: last.DDPct,
		CurrentDDAbs: last.DDAbs,
	}

	// Max drawdown point: minimum dd_pct, earliest occurrence on ties.
	minIdx := 0
	for i, p := range points {
		if p.DDPct < points[minIdx].DDPct {
			minIdx = i
		}
		if p.DDAbs < stats.MaxDDAbs {
			stats.MaxDDAbs = p.DDAbs
		}
	}
	stats.MaxDDPct = points[minIdx].DDPct
	stats.MaxDDTradeNo = points[minIdx].TradeNo

	// Trades between the preceding running peak and the trough.
	peakIdx := 0
	for i := 0; i <= minIdx; i++ {
		if points[i].Equity > points[peakIdx].Equity {
			peakIdx = i
		}
	}
	stats.SincePeakTrades = points[minIdx].TradeNo - points[peakIdx].TradeNo

	if points[minIdx].DDPct >= -recoveryEpsilon {
		// Never underwater: nothing to recover from.
		stats.Recovered = true
		stats.Message = "no drawdown observed"
		return stats
	}

	// First later point back at the peak (within epsilon) marks recovery.
	for i := minIdx + 1; i < len(points); i++ {
		if points[i].DDPct >= -recoveryEpsilon {
			stats.Recovered = true
			stats.RecoveryTrades = points[i].TradeNo - points[minIdx].TradeNo
			stats.Message = fmt.Sprintf("recovered from max drawdown in %d trades", stats.RecoveryTrades)
			return stats
		}
	}

	stats.Message = "not yet recovered from max drawdown"
	return stats
}

// SliceWindow returns the tail of an equity curve covering the requested
// label (1D, 1W, 1M, 6M, 1Y, All) relative to the last point's calendar
// day. A non-empty input never slices to nothing: the final point remains.
func SliceWindow(points []EquityPoint, label string) []EquityPoint {
	if len(points) == 0 || label == "" || label == "All" {
		return points
	}
	last := points[len(points)-1]
	if last.Time.IsZero() {
		return points
	}

	lastDay := dayOf(last.Time)
	var cutoff time.Time
	switch label {
	case "1D":
		cutoff = lastDay
	case "1W":
		cutoff = lastDay.AddDate(0, 0, -6)
	case "1M":
		cutoff = lastDay.AddDate(0, 0, -29)
	case "6M":
		cutoff = lastDay.AddDate(0, 0, -183)
	case "1Y":
		cutoff = lastDay.AddDate(0, 0, -364)
	default:
		return points
	}

	for i, p := range points {
		if !dayOf(p.Time).Before(cutoff) {
			return points[i:]
		}
	}
	return points[len(points)-1:]
}

// dayOf truncates a timestamp to its calendar day in its own location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
