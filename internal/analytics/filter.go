package analytics

import (
	"strings"
	"time"

	"trade-journal-go/internal/models"
)

// Range presets a view can ask for instead of explicit from/to dates.
const (
	RangeAll        = "all"
	RangeYearToDate = "ytd"
	RangeRecent7    = "7d"
	RangeRecent30   = "30d"
)

// Filter narrows the canonical trade set before it reaches the engine.
// Empty slices mean "no restriction"; From/To are inclusive calendar-day
// bounds. Preset, when set and no explicit bounds are given, derives the
// bounds relative to the reference day.
type Filter struct {
	Accounts []string   `json:"accounts,omitempty"`
	Symbols  []string   `json:"symbols,omitempty"`
	Sides    []string   `json:"sides,omitempty"`
	Tiers    []string   `json:"tiers,omitempty"`
	Sessions []string   `json:"sessions,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	Preset   string     `json:"preset,omitempty"`
}

// Apply filters trades, preserving their order. Preset bounds are resolved
// against today.
func (f Filter) Apply(trades []models.Trade) []models.Trade {
	return f.ApplyAt(trades, time.Now())
}

// ApplyAt is Apply with an explicit reference day for preset resolution.
func (f Filter) ApplyAt(trades []models.Trade, now time.Time) []models.Trade {
	from, to := f.bounds(now)

	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if !matchSet(f.Accounts, t.Account) ||
			!matchSet(f.Symbols, t.Symbol) ||
			!matchSet(f.Sides, t.Side) ||
			!matchSet(f.Tiers, t.SetupTier) ||
			!matchSet(f.Sessions, t.Session) {
			continue
		}
		if from != nil && t.EntryTime.Before(*from) {
			continue
		}
		if to != nil && !t.EntryTime.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// bounds resolves the effective date window. Explicit From/To win over the
// preset.
func (f Filter) bounds(now time.Time) (*time.Time, *time.Time) {
	if f.From != nil || f.To != nil {
		var from, to *time.Time
		if f.From != nil {
			d := dayOf(*f.From)
			from = &d
		}
		if f.To != nil {
			d := dayOf(*f.To)
			to = &d
		}
		return from, to
	}

	today := dayOf(now)
	switch f.Preset {
	case RangeYearToDate:
		from := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return &from, &today
	case RangeRecent7:
		from := today.AddDate(0, 0, -6)
		return &from, &today
	case RangeRecent30:
		from := today.AddDate(0, 0, -29)
		return &from, &today
	default: // all dates
		return nil, nil
	}
}

func matchSet(want []string, got string) bool {
	if len(want) == 0 {
		return true
	}
	got = strings.ToLower(strings.TrimSpace(got))
	for _, w := range want {
		if strings.ToLower(strings.TrimSpace(w)) == got {
			return true
		}
	}
	return false
}
