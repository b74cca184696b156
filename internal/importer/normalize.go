package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"trade-journal-go/internal/models"
)

// RawTable is an untyped table as read from an upload or export: a header
// row and string cells. Column names are arbitrary; Normalize maps them
// onto the canonical schema.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Canonical column names. Everything the alias table resolves to is one of
// these; anything else in an input header is reported as unrecognized.
const (
	colTradeID       = "trade_id"
	colSymbol        = "symbol"
	colSide          = "side"
	colEntryTime     = "entry_time"
	colExitTime      = "exit_time"
	colEntryPrice    = "entry_price"
	colExitPrice     = "exit_price"
	colQty           = "qty"
	colFees          = "fees"
	colPnL           = "pnl"
	colDollarsRisked = "dollars_risked"
	colAccount       = "account"
	colSession       = "session"
	colSetupTier     = "setup_tier"
	colScore         = "score"
	colGrade         = "grade"
	colConfirmations = "confirmations"
	colComments      = "comments"
)

// AliasVersion identifies the alias table below. Bump it when the accepted
// header variants change so imports can be traced to the mapping they used.
const AliasVersion = 1

// columnAliases maps lowercased header variants onto canonical column
// names. Canonical names map to themselves implicitly.
var columnAliases = map[string]string{
	// ids
	"id":       colTradeID,
	"tradeid":  colTradeID,
	"trade #":  colTradeID,
	"trade no": colTradeID,
	// symbol
	"ticker": colSymbol,
	"asset":  colSymbol,
	"pair":   colSymbol,
	// times
	"time":               colEntryTime,
	"timestamp":          colEntryTime,
	"date":               colEntryTime,
	"datetime":           colEntryTime,
	"date/time":          colEntryTime,
	"entry time":         colEntryTime,
	"entry time (local)": colEntryTime,
	"open_time":          colEntryTime,
	"exit time":          colExitTime,
	"exit time (local)":  colExitTime,
	"close_time":         colExitTime,
	// prices
	"entry":       colEntryPrice,
	"entry price": colEntryPrice,
	"exit":        colExitPrice,
	"exit price":  colExitPrice,
	// qty / fees
	"quantity":      colQty,
	"size":          colQty,
	"amount":        colQty,
	"position size": colQty,
	"units":         colQty,
	"fee":           colFees,
	"commission":    colFees,
	// side
	"direction": colSide,
	// pnl
	"profit":      colPnL,
	"net p&l":     colPnL,
	"realized_pl": colPnL,
	// risk
	"dollars risked": colDollarsRisked,
	"dollar risk":    colDollarsRisked,
	"risk $":         colDollarsRisked,
	"risk_usd":       colDollarsRisked,
	"risk":           colDollarsRisked,
	"max_loss":       colDollarsRisked,
	"planned_loss":   colDollarsRisked,
	// metadata
	"tier":          colSetupTier,
	"setup tier":    colSetupTier,
	"exec tier":     colGrade,
	"notes":         colComments,
	"note":          colComments,
	"comment":       colComments,
	"confirmation":  colConfirmations,
	"confirmations": colConfirmations,
}

var canonicalColumns = map[string]bool{
	colTradeID: true, colSymbol: true, colSide: true,
	colEntryTime: true, colExitTime: true,
	colEntryPrice: true, colExitPrice: true, colQty: true,
	colFees: true, colPnL: true, colDollarsRisked: true,
	colAccount: true, colSession: true, colSetupTier: true,
	colScore: true, colGrade: true, colConfirmations: true, colComments: true,
}

// resolveColumns maps header names to canonical column indexes. The first
// column claiming a canonical name wins; unknown headers are reported.
func resolveColumns(header []string) (map[string]int, []string) {
	var unknown []string
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if !canonicalColumns[name] {
			alias, ok := columnAliases[name]
			if !ok {
				unknown = append(unknown, strings.TrimSpace(h))
				continue
			}
			name = alias
		}
		if _, taken := cols[name]; !taken {
			cols[name] = i
		}
	}
	return cols, unknown
}

// Normalize maps a raw table onto canonical trade rows. It never fails on
// data quality: rows that cannot be salvaged are dropped, and every drop
// condition, coercion failure and unrecognized column is reported in the
// returned issues list. accountLabel labels rows without an account column.
func Normalize(raw RawTable, accountLabel string) ([]models.Trade, []string) {
	var issues []string
	if len(raw.Rows) == 0 {
		return nil, append(issues, "empty table: no data rows")
	}
	if accountLabel == "" {
		accountLabel = "Journal"
	}

	cols, unknown := resolveColumns(raw.Header)
	for _, u := range unknown {
		issues = append(issues, fmt.Sprintf("unrecognized column %q (alias table v%d), ignored", u, AliasVersion))
	}

	_, hasPnLCol := cols[colPnL]
	_, hasEntryPrice := cols[colEntryPrice]
	_, hasExitPrice := cols[colExitPrice]
	_, hasQty := cols[colQty]
	hasComponents := hasEntryPrice && hasExitPrice && hasQty
	if !hasPnLCol && !hasComponents {
		issues = append(issues, "no 'pnl' column and missing price/qty components: PnL cannot be computed")
	}

	cell := func(row []string, name string) (string, bool) {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}
	number := func(row []string, name string) (float64, bool) {
		s, ok := cell(row, name)
		if !ok || s == "" {
			return 0, false
		}
		return ParseNumber(s)
	}

	dropReasons := map[string]int{}
	timeOrderViolations := 0
	var trades []models.Trade

	for i, row := range raw.Rows {
		var t models.Trade

		if id, ok := cell(row, colTradeID); ok && id != "" {
			t.TradeID = id
		} else {
			// Stable fallback: 1-based row position within this import.
			t.TradeID = strconv.Itoa(i + 1)
		}

		sym, _ := cell(row, colSymbol)
		t.Symbol = strings.ToUpper(sym)

		sideOK := false
		if s, ok := cell(row, colSide); ok && s != "" {
			t.Side, sideOK = NormalizeSide(s)
		}

		entryOK := false
		if s, ok := cell(row, colEntryTime); ok {
			t.EntryTime, entryOK = ParseTime(s)
		}
		exitOK := false
		if s, ok := cell(row, colExitTime); ok {
			t.ExitTime, exitOK = ParseTime(s)
		}
		// A journal often carries a single date; reuse it as the exit.
		if !exitOK && entryOK {
			t.ExitTime = t.EntryTime
			exitOK = true
		}

		entryPrice, entryPriceOK := number(row, colEntryPrice)
		exitPrice, exitPriceOK := number(row, colExitPrice)
		qty, qtyOK := number(row, colQty)
		t.EntryPrice, t.ExitPrice, t.Qty = entryPrice, exitPrice, qty

		if fees, ok := number(row, colFees); ok {
			t.Fees = fees
		}
		if risk, ok := number(row, colDollarsRisked); ok {
			t.DollarsRisked = risk
		}
		if score, ok := number(row, colScore); ok {
			t.Score = score
		}

		// Direct pnl always wins over recomputation from components.
		pnl, pnlOK := number(row, colPnL)
		if !pnlOK && entryPriceOK && exitPriceOK && qtyOK && sideOK {
			pnl = (exitPrice - entryPrice) * qty
			if t.Side == models.SideShort {
				pnl = -pnl
			}
			pnl -= t.Fees
			pnlOK = true
		}
		t.PnL = pnl

		switch {
		case t.Symbol == "":
			dropReasons["missing symbol"]++
			continue
		case !sideOK:
			dropReasons["unmapped or missing side value"]++
			continue
		case !entryOK || !exitOK:
			dropReasons["unparseable entry/exit time"]++
			continue
		case !pnlOK:
			dropReasons["no pnl and incomplete price/qty components"]++
			continue
		}

		if t.ExitTime.Before(t.EntryTime) {
			// Kept: ordering violations are the caller's data-quality call.
			timeOrderViolations++
		}

		if acc, ok := cell(row, colAccount); ok && acc != "" {
			t.Account = acc
		} else {
			t.Account = accountLabel
		}
		t.Session, _ = cell(row, colSession)
		t.SetupTier, _ = cell(row, colSetupTier)
		t.Grade, _ = cell(row, colGrade)
		t.Confirmations, _ = cell(row, colConfirmations)
		t.Comments, _ = cell(row, colComments)

		trades = append(trades, t)
	}

	reasons := make([]string, 0, len(dropReasons))
	for r := range dropReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		issues = append(issues, fmt.Sprintf("dropped %d row(s): %s", dropReasons[r], r))
	}
	if timeOrderViolations > 0 {
		issues = append(issues, fmt.Sprintf("%d row(s) have exit_time before entry_time", timeOrderViolations))
	}
	if len(trades) == 0 {
		issues = append(issues, "no usable rows after normalization")
	}

	return trades, issues
}
