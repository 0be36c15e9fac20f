// Package holdings defines the portfolio holding data model and the pure
// filter/sort derivation used by the dashboard.
package holdings

import (
	"encoding/json"
	"fmt"
)

// Number is a numeric field that may be absent or null in the upstream
// payload. Decoding coerces missing values to zero once, at the model
// boundary, so display code never deals with optionality.
type Number float64

// UnmarshalJSON treats null as zero and otherwise decodes a JSON number.
func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Value returns the coerced float64 value.
func (n Number) Value() float64 { return float64(n) }

// Holding is one position in the user's portfolio. The upstream API is
// inconsistent about the trading symbol field name, so both spellings are
// kept explicit; see Symbol.
type Holding struct {
	ISIN             string `json:"isin"`
	CompanyName      string `json:"company_name"`
	TradingSymbol    string `json:"tradingsymbol"`
	TradingSymbolAlt string `json:"trading_symbol"`
	Exchange         string `json:"exchange"`
	Product          string `json:"product"`
	CollateralType   string `json:"collateral_type"`

	Quantity         Number `json:"quantity"`
	AveragePrice     Number `json:"average_price"`
	LastPrice        Number `json:"last_price"`
	PnL              Number `json:"pnl"`
	DayChangePercent Number `json:"day_change_percentage"`
}

// Symbol returns the trading symbol, preferring `tradingsymbol` and falling
// back to `trading_symbol` when the first is empty.
func (h Holding) Symbol() string {
	if h.TradingSymbol != "" {
		return h.TradingSymbol
	}
	return h.TradingSymbolAlt
}

// Snapshot is the full holdings list as of one poll. It is replaced
// wholesale on every refresh; entries are never patched in place.
type Snapshot []Holding

// ParseResponse decodes an upstream holdings payload. The API wraps the
// list in a {"data": [...]} envelope; a bare array is accepted too.
func ParseResponse(body []byte) (Snapshot, error) {
	var env struct {
		Data []Holding `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		return env.Data, nil
	}

	var list []Holding
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing holdings payload: %w", err)
	}
	return list, nil
}
