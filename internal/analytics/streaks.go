package analytics

import (
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// StreakStats is the win-streak summary for one outcome series.
type StreakStats struct {
	// Current is the length of the winning run ending at the most recent
	// element. A series ending in a loss reports 0, not the losing run.
	Current int `json:"current"`
	// Best is the longest winning run anywhere in the series.
	Best int `json:"best"`
	// Resets counts win→loss transitions, i.e. how many winning runs ended.
	Resets int `json:"resets"`
}

// Streaks computes run statistics over any boolean outcome series.
// An empty series yields all zeros.
func Streaks(wins []bool) StreakStats {
	var stats StreakStats
	run := 0
	for i, w := range wins {
		if w {
			run++
			if run > stats.Best {
				stats.Best = run
			}
		} else {
			if i > 0 && wins[i-1] {
				stats.Resets++
			}
			run = 0
		}
	}
	if len(wins) > 0 && wins[len(wins)-1] {
		stats.Current = run
	}
	return stats
}

// TradeStreaks evaluates streaks at trade granularity: each trade with
// positive PnL is a win. Trades must be in analysis order.
func TradeStreaks(trades []models.Trade) StreakStats {
	wins := make([]bool, len(trades))
	for i, t := range trades {
		wins[i] = t.PnL > 0
	}
	return Streaks(wins)
}

// DayStreaks evaluates streaks at calendar-day granularity: a day wins
// when its net PnL is positive. Days are ordered ascending.
func DayStreaks(trades []models.Trade) StreakStats {
	byDay := make(map[time.Time]float64)
	var days []time.Time
	for _, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		day := dayOf(t.EntryTime)
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] += t.PnL
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	wins := make([]bool, len(days))
	for i, d := range days {
		wins[i] = byDay[d] > 0
	}
	return Streaks(wins)
}
