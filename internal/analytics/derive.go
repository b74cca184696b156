package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"trade-journal-go/internal/models"
)

// Outcome labels assigned by ComputeDerived.
const (
	OutcomeWin       = "Win"
	OutcomeLoss      = "Loss"
	OutcomeBreakeven = "Break-even"
)

// EnrichedTrade is a canonical trade plus its derived per-trade fields.
// Derivation depends only on canonical inputs, so recomputing from the
// embedded Trade always reproduces the same values.
type EnrichedTrade struct {
	models.Trade
	TradeNo       int     `json:"trade_no"`
	DurationMin   float64 `json:"duration_min"`
	DurationLabel string  `json:"duration"`
	Outcome       string  `json:"outcome"`
	// RRatio is pnl / dollars_risked at full precision; 0 when risk is
	// zero or missing. Use RRatioDisplay for the 2-decimal rendering.
	RRatio float64 `json:"r_ratio"`
}

// RRatioDisplay returns the R multiple rounded to 2 decimals.
func (e *EnrichedTrade) RRatioDisplay() float64 {
	return math.Round(e.RRatio*100) / 100
}

// ComputeDerived sorts trades into analysis order (entry time ascending,
// input order breaking ties) and attaches sequence number, duration,
// outcome label and R multiple to each.
func ComputeDerived(trades []models.Trade) []EnrichedTrade {
	out := make([]EnrichedTrade, len(trades))
	for i, t := range trades {
		out[i] = EnrichedTrade{Trade: t}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryTime.Before(out[j].EntryTime)
	})

	for i := range out {
		t := &out[i]
		t.TradeNo = i + 1
		t.DurationMin = t.HoldingTime().Minutes()
		t.DurationLabel = FormatMinutes(t.DurationMin)

		switch {
		case t.PnL > 0:
			t.Outcome = OutcomeWin
		case t.PnL < 0:
			t.Outcome = OutcomeLoss
		default:
			t.Outcome = OutcomeBreakeven
		}

		if t.DollarsRisked != 0 {
			t.RRatio = t.PnL / t.DollarsRisked
		}
	}
	return out
}

// FormatMinutes renders a duration in minutes as "1d 2h 5m", suppressing
// zero-valued units. A zero duration renders as "0m".
func FormatMinutes(totalMin float64) string {
	m := int(math.Round(math.Max(0, totalMin)))
	d := m / 1440
	m %= 1440
	h := m / 60
	m %= 60

	var parts []string
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, " ")
}
