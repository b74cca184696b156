package models

import "gorm.io/gorm"

// Account groups trades into a starting-equity bucket. The dashboard sums
// starting equity over whichever accounts a view has selected.
type Account struct {
	gorm.Model
	Label       string  `gorm:"uniqueIndex" json:"label"`
	StartEquity float64 `gorm:"not null" json:"start_equity"`
}
