package holdings

import (
	"reflect"
	"testing"
)

func snap() Snapshot {
	return Snapshot{
		{ISIN: "A", CompanyName: "Alpha Co", TradingSymbol: "ALPHA", PnL: 100},
		{ISIN: "B", CompanyName: "Beta Co", TradingSymbol: "BETA", PnL: -50},
		{ISIN: "C", CompanyName: "Gamma Industries", TradingSymbol: "GAMMA", PnL: 25},
	}
}

func isins(s Snapshot) []string {
	out := make([]string, len(s))
	for i, h := range s {
		out[i] = h.ISIN
	}
	return out
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	s := snap()
	got := Filter(s, "")
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Filter(s, \"\") = %v, want unchanged snapshot", isins(got))
	}
}

func TestFilterMatchesCompanyNameCaseInsensitive(t *testing.T) {
	got := Filter(snap(), "beta")
	if want := []string{"B"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("Filter(beta) = %v, want %v", isins(got), want)
	}
}

func TestFilterMatchesTradingSymbol(t *testing.T) {
	got := Filter(snap(), "gam")
	if want := []string{"C"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("Filter(gam) = %v, want %v", isins(got), want)
	}
}

func TestFilterMatchesSymbolFallbackField(t *testing.T) {
	s := Snapshot{
		{ISIN: "X", CompanyName: "Xray Ltd", TradingSymbolAlt: "XRAY"},
	}
	got := Filter(s, "xray")
	if len(got) != 1 {
		t.Errorf("Filter did not match trading_symbol fallback, got %d holdings", len(got))
	}
}

func TestFilterNoMatch(t *testing.T) {
	got := Filter(snap(), "zzz")
	if len(got) != 0 {
		t.Errorf("Filter(zzz) = %v, want empty", isins(got))
	}
}

func TestSortPnLDescending(t *testing.T) {
	got := Sort(snap(), SortSpec{Field: FieldPnL, Desc: true})
	if want := []string{"A", "C", "B"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("Sort(pnl desc) = %v, want %v", isins(got), want)
	}
}

func TestSortAscendingReversesDescending(t *testing.T) {
	for _, f := range SortFields {
		asc := Sort(snap(), SortSpec{Field: f})
		desc := Sort(snap(), SortSpec{Field: f, Desc: true})
		n := len(asc)
		for i := range asc {
			if asc[i].ISIN != desc[n-1-i].ISIN {
				t.Errorf("field %s: asc is not the reverse of desc: asc=%v desc=%v",
					f, isins(asc), isins(desc))
				break
			}
		}
	}
}

func TestSortStableOnTies(t *testing.T) {
	s := Snapshot{
		{ISIN: "A", PnL: 10},
		{ISIN: "B", PnL: 10},
		{ISIN: "C", PnL: 10},
	}
	got := Sort(s, SortSpec{Field: FieldPnL, Desc: true})
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("tied sort reordered entries: got %v, want %v", isins(got), want)
	}
}

func TestSortUnknownFieldPreservesOrder(t *testing.T) {
	s := snap()
	got := Sort(s, SortSpec{Field: "company_name", Desc: true})
	if !reflect.DeepEqual(isins(got), isins(s)) {
		t.Errorf("Sort(company_name) reordered: got %v, want %v", isins(got), isins(s))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	s := snap()
	before := isins(s)
	Sort(s, SortSpec{Field: FieldPnL})
	if !reflect.DeepEqual(isins(s), before) {
		t.Errorf("Sort mutated its input: %v", isins(s))
	}
}

func TestDeriveIdempotent(t *testing.T) {
	s := snap()
	spec := SortSpec{Field: FieldPnL, Desc: true}
	first := Derive(s, "co", spec)
	second := Derive(s, "co", spec)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Derive is not idempotent: %v vs %v", isins(first), isins(second))
	}
}

func TestDeriveScenarios(t *testing.T) {
	s := Snapshot{
		{ISIN: "A", CompanyName: "Alpha Co", PnL: 100},
		{ISIN: "B", CompanyName: "Beta Co", PnL: -50},
	}

	// No filter, pnl descending.
	got := Derive(s, "", DefaultSort)
	if want := []string{"A", "B"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("Derive(\"\", pnl desc) = %v, want %v", isins(got), want)
	}

	// Filter "beta".
	got = Derive(s, "beta", DefaultSort)
	if want := []string{"B"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("Derive(beta) = %v, want %v", isins(got), want)
	}
}

func TestSortAbsentValuesCompareAsZero(t *testing.T) {
	s := Snapshot{
		{ISIN: "A", PnL: -5},
		{ISIN: "B"}, // pnl absent upstream, coerced to 0
		{ISIN: "C", PnL: 5},
	}
	got := Sort(s, SortSpec{Field: FieldPnL})
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(isins(got), want) {
		t.Errorf("Sort with absent pnl = %v, want %v", isins(got), want)
	}
}
