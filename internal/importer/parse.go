package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"trade-journal-go/internal/models"
)

// numberPattern matches the numeric core of messy tokens like
// "4.51 K USDT", "$1,234.56" or "24.7%".
var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)

// kiloPattern matches a standalone K/k unit token ("4.51 K USDT").
var kiloPattern = regexp.MustCompile(`\b[kK]\b`)

// ParseNumber converts a free-form numeric token to a float64. Currency
// symbols, thousands separators, percent signs and unit text are stripped;
// a standalone K token multiplies by 1000. The second return value is false
// when no number can be extracted.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	mult := 1.0
	if kiloPattern.MatchString(s) {
		mult = 1000.0
	}

	m := numberPattern.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

// timeLayouts are tried in order. The TradingView export layout
// ("Jan 2, 2006 15:04") sits alongside the usual ISO variants.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
}

// ParseTime permissively parses a timestamp token. Besides the known
// layouts it accepts raw unix timestamps in seconds or milliseconds.
// Unparseable values report false, never an error.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Epoch seconds (10 digits) or milliseconds (13 digits).
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		switch {
		case len(s) == 13:
			return time.UnixMilli(n).UTC(), true
		case len(s) == 10:
			return time.Unix(n, 0).UTC(), true
		}
	}

	return time.Time{}, false
}

// sideSynonyms is the fixed table mapping free-form direction tokens onto
// the canonical side values. Unmapped tokens become missing, not defaulted.
var sideSynonyms = map[string]string{
	"long":  models.SideLong,
	"buy":   models.SideLong,
	"l":     models.SideLong,
	"1":     models.SideLong,
	"true":  models.SideLong,
	"short": models.SideShort,
	"sell":  models.SideShort,
	"s":     models.SideShort,
	"-1":    models.SideShort,
	"false": models.SideShort,
}

// NormalizeSide maps a direction token to SideLong/SideShort. The second
// return value is false for tokens outside the synonym table.
func NormalizeSide(s string) (string, bool) {
	side, ok := sideSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return side, ok
}
