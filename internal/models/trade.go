package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade side values. The importer normalizes free-form synonyms onto these.
const (
	SideLong  = "Long"
	SideShort = "Short"
)

// Trade is one canonical journal row. All analytics operate on ordered
// slices of this type; derived values are never stored back.
type Trade struct {
	gorm.Model
	TradeID       string    `gorm:"uniqueIndex" json:"trade_id"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"` // SideLong or SideShort
	EntryTime     time.Time `json:"entry_time"`
	ExitTime      time.Time `json:"exit_time"`
	EntryPrice    float64   `json:"entry_price,omitempty"`
	ExitPrice     float64   `json:"exit_price,omitempty"`
	Qty           float64   `json:"qty,omitempty"`
	PnL           float64   `json:"pnl"`
	Fees          float64   `json:"fees"`
	DollarsRisked float64   `json:"dollars_risked,omitempty"`
	Account       string    `json:"account"`
	Session       string    `json:"session,omitempty"`
	SetupTier     string    `json:"setup_tier,omitempty"`
	Score         float64   `json:"score,omitempty"`
	Grade         string    `json:"grade,omitempty"`
	Confirmations string    `json:"confirmations,omitempty"`
	Comments      string    `json:"comments,omitempty"`
}

// IsWin reports whether the trade closed with positive PnL.
func (t *Trade) IsWin() bool { return t.PnL > 0 }

// HoldingTime returns exit minus entry, clamped to zero for rows where the
// exit precedes the entry (a data-quality condition the importer reports).
func (t *Trade) HoldingTime() time.Duration {
	d := t.ExitTime.Sub(t.EntryTime)
	if d < 0 {
		return 0
	}
	return d
}
