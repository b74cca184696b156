package analytics

import (
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// DayCell is one calendar cell. Cells outside the month are blank
// placeholders (InMonth false) that keep the grid aligned Monday-first.
type DayCell struct {
	Day        int       `json:"day,omitempty"`
	Date       time.Time `json:"date,omitempty"`
	InMonth    bool      `json:"in_month"`
	NetPnL     float64   `json:"net_pnl"`
	TradeCount int       `json:"trade_count"`
}

// WeekRow is one grid row: seven day cells plus the week's totals.
type WeekRow struct {
	Cells      [7]DayCell `json:"cells"`
	NetPnL     float64    `json:"net_pnl"`
	TradeCount int        `json:"trade_count"`
}

// MonthGrid is the calendar heatmap for one month: Monday-first rows with
// leading/trailing blanks, weekly roll-ups and the month total.
type MonthGrid struct {
	Month      time.Time `json:"month"`
	Weeks      []WeekRow `json:"weeks"`
	NetPnL     float64   `json:"net_pnl"`
	TradeCount int       `json:"trade_count"`
}

// BuildMonthGrid aggregates trades into the month's daily PnL/count cells.
// month may be any timestamp inside the wanted month.
func BuildMonthGrid(trades []models.Trade, month time.Time) MonthGrid {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	type dayAgg struct {
		pnl   float64
		count int
	}
	byDay := make(map[int]dayAgg)
	for _, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		if t.EntryTime.Year() != monthStart.Year() || t.EntryTime.Month() != monthStart.Month() {
			continue
		}
		agg := byDay[t.EntryTime.Day()]
		agg.pnl += t.PnL
		agg.count++
		byDay[t.EntryTime.Day()] = agg
	}

	leading := (int(monthStart.Weekday()) + 6) % 7 // Monday = 0
	totalSlots := leading + daysInMonth
	rows := (totalSlots + 6) / 7

	grid := MonthGrid{Month: monthStart, Weeks: make([]WeekRow, rows)}
	for slot := 0; slot < rows*7; slot++ {
		dayN := slot - leading + 1
		row := &grid.Weeks[slot/7]
		cell := &row.Cells[slot%7]
		if dayN < 1 || dayN > daysInMonth {
			continue
		}
		cell.Day = dayN
		cell.Date = monthStart.AddDate(0, 0, dayN-1)
		cell.InMonth = true
		if agg, ok := byDay[dayN]; ok {
			cell.NetPnL = agg.pnl
			cell.TradeCount = agg.count
			row.NetPnL += agg.pnl
			row.TradeCount += agg.count
			grid.NetPnL += agg.pnl
			grid.TradeCount += agg.count
		}
	}
	return grid
}

// MonthlyCell is one month's (or one year's) performance summary.
type MonthlyCell struct {
	Year       int     `json:"year"`
	Month      int     `json:"month,omitempty"` // 0 on yearly total rows
	RSum       float64 `json:"r_sum"`
	PnLSum     float64 `json:"pnl_sum"`
	Wins       int     `json:"wins"`
	TradeCount int     `json:"trade_count"`
	WinRate    float64 `json:"win_rate"` // percent
}

// MonthlyTable is the long-range performance grid: per-month cells for the
// covered years, newest year first, plus a total row per year.
type MonthlyTable struct {
	Months []MonthlyCell `json:"months"`
	Years  []MonthlyCell `json:"years"`
}

// BuildMonthlyTable aggregates R, PnL and win rate per (year, month) over
// the last yearsBack years (relative to the newest trade). Months without
// trades are absent, which the consumer renders as blank cells.
func BuildMonthlyTable(trades []EnrichedTrade, yearsBack int) MonthlyTable {
	if yearsBack < 1 {
		yearsBack = 1
	}

	rs := RSeries(trades)
	type key struct{ year, month int }
	cells := make(map[key]*MonthlyCell)
	maxYear := 0
	for i, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		k := key{t.EntryTime.Year(), int(t.EntryTime.Month())}
		c, ok := cells[k]
		if !ok {
			c = &MonthlyCell{Year: k.year, Month: k.month}
			cells[k] = c
		}
		c.RSum += rs[i]
		c.PnLSum += t.PnL
		c.TradeCount++
		if t.PnL > 0 {
			c.Wins++
		}
		if k.year > maxYear {
			maxYear = k.year
		}
	}

	var table MonthlyTable
	if maxYear == 0 {
		return table
	}
	minYear := maxYear - yearsBack + 1

	years := make(map[int]*MonthlyCell)
	for k, c := range cells {
		if k.year < minYear {
			continue
		}
		if c.TradeCount > 0 {
			c.WinRate = float64(c.Wins) / float64(c.TradeCount) * 100
		}
		table.Months = append(table.Months, *c)

		y, ok := years[k.year]
		if !ok {
			y = &MonthlyCell{Year: k.year}
			years[k.year] = y
		}
		y.RSum += c.RSum
		y.PnLSum += c.PnLSum
		y.Wins += c.Wins
		y.TradeCount += c.TradeCount
	}
	for _, y := range years {
		if y.TradeCount > 0 {
			y.WinRate = float64(y.Wins) / float64(y.TradeCount) * 100
		}
		table.Years = append(table.Years, *y)
	}

	sort.Slice(table.Months, func(i, j int) bool {
		if table.Months[i].Year != table.Months[j].Year {
			return table.Months[i].Year > table.Months[j].Year
		}
		return table.Months[i].Month < table.Months[j].Month
	})
	sort.Slice(table.Years, func(i, j int) bool {
		return table.Years[i].Year > table.Years[j].Year
	})
	return table
}
