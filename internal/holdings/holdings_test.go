package holdings

import (
	"testing"
)

func TestParseResponseEnvelope(t *testing.T) {
	body := []byte(`{
		"status": "success",
		"data": [
			{
				"isin": "INE002A01018",
				"company_name": "Reliance Industries",
				"tradingsymbol": "RELIANCE",
				"exchange": "NSE",
				"product": "D",
				"quantity": 10,
				"average_price": 2400.5,
				"last_price": 2500.25,
				"pnl": 997.5,
				"day_change_percentage": 1.2
			}
		]
	}`)

	snap, err := ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse returned error: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("len(snap) = %d, want 1", len(snap))
	}

	h := snap[0]
	if h.ISIN != "INE002A01018" {
		t.Errorf("ISIN = %q, want %q", h.ISIN, "INE002A01018")
	}
	if h.Symbol() != "RELIANCE" {
		t.Errorf("Symbol() = %q, want %q", h.Symbol(), "RELIANCE")
	}
	if h.Quantity.Value() != 10 {
		t.Errorf("Quantity = %v, want 10", h.Quantity.Value())
	}
	if h.PnL.Value() != 997.5 {
		t.Errorf("PnL = %v, want 997.5", h.PnL.Value())
	}
}

func TestParseResponseBareArray(t *testing.T) {
	body := []byte(`[{"isin": "X1", "trading_symbol": "TCS"}]`)
	snap, err := ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse returned error: %v", err)
	}
	if len(snap) != 1 || snap[0].ISIN != "X1" {
		t.Errorf("snap = %+v, want one holding with isin X1", snap)
	}
}

func TestParseResponseMalformed(t *testing.T) {
	if _, err := ParseResponse([]byte(`not json`)); err == nil {
		t.Error("ParseResponse accepted malformed payload")
	}
}

func TestNumberCoercesNullAndAbsent(t *testing.T) {
	body := []byte(`{"data": [{"isin": "A", "pnl": null, "last_price": 12.5}]}`)
	snap, err := ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse returned error: %v", err)
	}
	h := snap[0]
	if h.PnL.Value() != 0 {
		t.Errorf("null pnl = %v, want 0", h.PnL.Value())
	}
	if h.AveragePrice.Value() != 0 {
		t.Errorf("absent average_price = %v, want 0", h.AveragePrice.Value())
	}
	if h.LastPrice.Value() != 12.5 {
		t.Errorf("last_price = %v, want 12.5", h.LastPrice.Value())
	}
}

func TestSymbolPrecedence(t *testing.T) {
	h := Holding{TradingSymbol: "PRIMARY", TradingSymbolAlt: "FALLBACK"}
	if h.Symbol() != "PRIMARY" {
		t.Errorf("Symbol() = %q, want tradingsymbol to win", h.Symbol())
	}

	h = Holding{TradingSymbolAlt: "FALLBACK"}
	if h.Symbol() != "FALLBACK" {
		t.Errorf("Symbol() = %q, want trading_symbol fallback", h.Symbol())
	}
}
