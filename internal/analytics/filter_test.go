package analytics

import (
	"testing"
	"time"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFilterApply(t *testing.T) {
	at := func(m time.Month, d int) time.Time {
		return time.Date(2024, m, d, 10, 0, 0, 0, time.UTC)
	}
	trades := []models.Trade{
		{TradeID: "1", Symbol: "ES", Side: models.SideLong, Account: "Main", SetupTier: "A", Session: "NY", EntryTime: at(3, 4)},
		{TradeID: "2", Symbol: "NQ", Side: models.SideShort, Account: "Main", SetupTier: "B", Session: "London", EntryTime: at(3, 5)},
		{TradeID: "3", Symbol: "ES", Side: models.SideShort, Account: "Sim", SetupTier: "A", Session: "NY", EntryTime: at(4, 1)},
	}

	ids := func(got []models.Trade) []string {
		out := make([]string, len(got))
		for i, t := range got {
			out[i] = t.TradeID
		}
		return out
	}

	testCases := []struct {
		name   string
		filter Filter
		expect []string
	}{
		{"no restriction", Filter{}, []string{"1", "2", "3"}},
		{"by symbol", Filter{Symbols: []string{"ES"}}, []string{"1", "3"}},
		{"by side case-insensitive", Filter{Sides: []string{"short"}}, []string{"2", "3"}},
		{"by account", Filter{Accounts: []string{"Sim"}}, []string{"3"}},
		{"by tier and session", Filter{Tiers: []string{"A"}, Sessions: []string{"NY"}}, []string{"1", "3"}},
		{"multiple values union", Filter{Symbols: []string{"ES", "NQ"}}, []string{"1", "2", "3"}},
		{"no match", Filter{Symbols: []string{"CL"}}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Apply(trades)
			assert.Equal(t, tc.expect, ids(got))
		})
	}
}

func TestFilterDateBounds(t *testing.T) {
	at := func(d int, hour int) time.Time {
		return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
	}
	trades := []models.Trade{
		{TradeID: "1", EntryTime: at(3, 10)},
		{TradeID: "2", EntryTime: at(5, 10)},
		{TradeID: "3", EntryTime: at(5, 23)}, // late on the To day, still inside
		{TradeID: "4", EntryTime: at(8, 10)},
	}

	from := at(4, 0)
	to := at(5, 15) // time of day is irrelevant, the bound is the whole day

	got := Filter{From: &from, To: &to}.Apply(trades)

	assert.Len(t, got, 2)
	assert.Equal(t, "2", got[0].TradeID)
	assert.Equal(t, "3", got[1].TradeID)
}

func TestFilterPresets(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	at := func(m time.Month, d int) time.Time {
		return time.Date(2024, m, d, 10, 0, 0, 0, time.UTC)
	}
	trades := []models.Trade{
		{TradeID: "old", EntryTime: time.Date(2023, 12, 28, 10, 0, 0, 0, time.UTC)},
		{TradeID: "jan", EntryTime: at(1, 5)},
		{TradeID: "recent", EntryTime: at(3, 15)},
		{TradeID: "today", EntryTime: at(3, 20)},
	}

	testCases := []struct {
		preset string
		expect int
	}{
		{RangeAll, 4},
		{"", 4},
		{RangeYearToDate, 3},
		{RangeRecent7, 2},
		{RangeRecent30, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.preset, func(t *testing.T) {
			got := Filter{Preset: tc.preset}.ApplyAt(trades, now)
			assert.Len(t, got, tc.expect)
		})
	}
}

func TestFilterExplicitBoundsBeatPreset(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{TradeID: "old", EntryTime: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
	}

	got := Filter{Preset: RangeRecent7, From: &from}.ApplyAt(trades, now)
	assert.Len(t, got, 1)
}
