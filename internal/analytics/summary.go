package analytics

import (
	"math"
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// BreakevenPolicy controls how zero-PnL trades count toward the win rate.
type BreakevenPolicy string

const (
	BreakevenExclude BreakevenPolicy = "exclude" // drop from the denominator
	BreakevenLoss    BreakevenPolicy = "loss"    // count as losses
	BreakevenWin     BreakevenPolicy = "win"     // count as wins
)

// Summary is the scalar KPI block for a filtered trade set. Ratio fields
// whose denominator is zero (profit factor with no losses, recovery factor
// with no drawdown) report 0; callers can tell the undefined case apart
// through GrossLoss / MaxDDAbs.
type Summary struct {
	TotalTrades int `json:"total_trades"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Breakevens  int `json:"breakevens"`

	WinRate         float64 `json:"win_rate"` // 0..1 under the breakeven policy
	NetPnL          float64 `json:"net_pnl"`
	GrossProfit     float64 `json:"gross_profit"`
	GrossLoss       float64 `json:"gross_loss"` // ≤ 0
	ProfitFactor    float64 `json:"profit_factor"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"` // ≤ 0
	AvgWinLossRatio float64 `json:"avg_win_loss_ratio"`
	Expectancy      float64 `json:"expectancy"`

	StartEquity    float64 `json:"start_equity"`
	CurrentBalance float64 `json:"current_balance"`
	MaxDDAbs       float64 `json:"max_dd_abs"` // ≤ 0
	MaxDDPct       float64 `json:"max_dd_pct"` // ≤ 0, percent
	RecoveryFactor float64 `json:"recovery_factor"`

	WinLossRatio      float64     `json:"win_loss_ratio"`
	LongestLossStreak int         `json:"longest_loss_streak"`
	TradeStreak       StreakStats `json:"trade_streak"`
	DayStreak         StreakStats `json:"day_streak"`

	TradingDays  int     `json:"trading_days"`
	TradesPerDay float64 `json:"trades_per_day"`
	AvgHoldMin   float64 `json:"avg_hold_min"`
	TotalHoldMin float64 `json:"total_hold_min"`
}

// ComputeSummary derives the full KPI block from trades in analysis order.
func ComputeSummary(trades []models.Trade, startEquity float64, policy BreakevenPolicy) Summary {
	s := Summary{
		TotalTrades:    len(trades),
		StartEquity:    startEquity,
		CurrentBalance: startEquity,
	}

	days := make(map[time.Time]bool)
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			s.Wins++
			s.GrossProfit += t.PnL
		case t.PnL < 0:
			s.Losses++
			s.GrossLoss += t.PnL
		default:
			s.Breakevens++
		}
		s.NetPnL += t.PnL
		s.TotalHoldMin += t.HoldingTime().Minutes()
		if !t.EntryTime.IsZero() {
			days[dayOf(t.EntryTime)] = true
		}
	}
	s.CurrentBalance = startEquity + s.NetPnL

	switch policy {
	case BreakevenLoss:
		if s.TotalTrades > 0 {
			s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
		}
	case BreakevenWin:
		if s.TotalTrades > 0 {
			s.WinRate = float64(s.Wins+s.Breakevens) / float64(s.TotalTrades)
		}
	default: // exclude breakevens from the denominator
		if denom := s.Wins + s.Losses; denom > 0 {
			s.WinRate = float64(s.Wins) / float64(denom)
		}
	}

	if s.Wins > 0 {
		s.AvgWin = s.GrossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.Losses)
		s.ProfitFactor = s.GrossProfit / math.Abs(s.GrossLoss)
		s.WinLossRatio = float64(s.Wins) / float64(s.Losses)
		if s.AvgLoss != 0 {
			s.AvgWinLossRatio = s.AvgWin / math.Abs(s.AvgLoss)
		}
	}
	s.Expectancy = s.WinRate*s.AvgWin + (1-s.WinRate)*s.AvgLoss

	points := BuildEquity(trades, startEquity)
	for _, p := range points {
		if p.DDAbs < s.MaxDDAbs {
			s.MaxDDAbs = p.DDAbs
		}
		if p.DDPct < s.MaxDDPct {
			s.MaxDDPct = p.DDPct
		}
	}
	if s.MaxDDAbs != 0 {
		s.RecoveryFactor = s.NetPnL / math.Abs(s.MaxDDAbs)
	}

	s.LongestLossStreak = longestLosingStreak(trades)
	s.TradeStreak = TradeStreaks(trades)
	s.DayStreak = DayStreaks(trades)

	s.TradingDays = len(days)
	if s.TradingDays > 0 {
		s.TradesPerDay = float64(s.TotalTrades) / float64(s.TradingDays)
	}
	if s.TotalTrades > 0 {
		s.AvgHoldMin = s.TotalHoldMin / float64(s.TotalTrades)
	}

	return s
}

func longestLosingStreak(trades []models.Trade) int {
	streak, longest := 0, 0
	for _, t := range trades {
		if t.PnL < 0 {
			streak++
			if streak > longest {
				longest = streak
			}
		} else {
			streak = 0
		}
	}
	return longest
}

// RSeries returns each trade's R multiple. Trades carry their own R when
// risk was journaled; a set with no risk data anywhere falls back to a
// proxy risk of the median absolute loss, so R charts stay meaningful for
// journals that never record planned risk.
func RSeries(trades []EnrichedTrade) []float64 {
	out := make([]float64, len(trades))
	hasRisk := false
	for _, t := range trades {
		if t.DollarsRisked != 0 {
			hasRisk = true
			break
		}
	}
	if hasRisk {
		for i, t := range trades {
			out[i] = t.RRatio
		}
		return out
	}

	var losses []float64
	for _, t := range trades {
		if t.PnL < 0 {
			losses = append(losses, math.Abs(t.PnL))
		}
	}
	proxy := 1.0
	if len(losses) > 0 {
		sort.Float64s(losses)
		mid := len(losses) / 2
		if len(losses)%2 == 1 {
			proxy = losses[mid]
		} else {
			proxy = (losses[mid-1] + losses[mid]) / 2
		}
		if proxy == 0 {
			proxy = 1.0
		}
	}
	for i, t := range trades {
		out[i] = t.PnL / proxy
	}
	return out
}

// DailyStat is one trading day's aggregate.
type DailyStat struct {
	Date   time.Time `json:"date"`
	NetPnL float64   `json:"net_pnl"`
	Trades int       `json:"trades"`
	Wins   int       `json:"wins"`
	AvgPnL float64   `json:"avg_pnl"`
	RSum   float64   `json:"r_sum"`
}

// DailyStats aggregates trades per calendar day, ascending. Trades with no
// usable timestamp are skipped.
func DailyStats(trades []EnrichedTrade) []DailyStat {
	rs := RSeries(trades)
	byDay := make(map[time.Time]*DailyStat)
	for i, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		day := dayOf(t.EntryTime)
		st, ok := byDay[day]
		if !ok {
			st = &DailyStat{Date: day}
			byDay[day] = st
		}
		st.NetPnL += t.PnL
		st.Trades++
		if t.PnL > 0 {
			st.Wins++
		}
		st.RSum += rs[i]
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, st := range byDay {
		st.AvgPnL = st.NetPnL / float64(st.Trades)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// RollingPoint is one day of the rolling-window metric series.
type RollingPoint struct {
	Date       time.Time `json:"date"`
	WinRate    float64   `json:"win_rate"` // percent
	Expectancy float64   `json:"expectancy"`
}

// Rolling computes window-day rolling means of the daily win rate and
// daily expectancy, with a minimum period of one day.
func Rolling(daily []DailyStat, window int) []RollingPoint {
	if window < 1 {
		window = 1
	}
	out := make([]RollingPoint, len(daily))
	for i := range daily {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		wrSum, expSum := 0.0, 0.0
		n := 0
		for j := lo; j <= i; j++ {
			if daily[j].Trades == 0 {
				continue
			}
			wrSum += float64(daily[j].Wins) / float64(daily[j].Trades)
			expSum += daily[j].AvgPnL
			n++
		}
		out[i] = RollingPoint{Date: daily[i].Date}
		if n > 0 {
			out[i].WinRate = wrSum / float64(n) * 100
			out[i].Expectancy = expSum / float64(n)
		}
	}
	return out
}

// SymbolPnL is the net result for one instrument.
type SymbolPnL struct {
	Symbol string  `json:"symbol"`
	NetPnL float64 `json:"net_pnl"`
}

// ProfitBySymbol sums PnL per symbol, keeps the topN earners and folds the
// rest into an "Others" row, sorted best-first.
func ProfitBySymbol(trades []models.Trade, topN int) []SymbolPnL {
	if topN < 1 {
		topN = 5
	}
	sums := make(map[string]float64)
	for _, t := range trades {
		sums[t.Symbol] += t.PnL
	}

	out := make([]SymbolPnL, 0, len(sums))
	for sym, pnl := range sums {
		out = append(out, SymbolPnL{Symbol: sym, NetPnL: pnl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NetPnL > out[j].NetPnL })

	if len(out) > topN {
		others := 0.0
		for _, s := range out[topN:] {
			others += s.NetPnL
		}
		out = append(out[:topN], SymbolPnL{Symbol: "Others", NetPnL: others})
	}
	return out
}
