package holdings

import (
	"sort"
	"strings"
)

// Field identifies a Holding field used for sorting.
type Field string

// Sortable numeric fields. String fields are deliberately not sortable:
// the comparator is a no-op for them and the prior order is preserved.
const (
	FieldQuantity     Field = "quantity"
	FieldAveragePrice Field = "average_price"
	FieldLastPrice    Field = "last_price"
	FieldPnL          Field = "pnl"
	FieldDayChange    Field = "day_change_percentage"
)

// SortFields lists the sortable fields in display-cycle order.
var SortFields = []Field{
	FieldPnL,
	FieldDayChange,
	FieldQuantity,
	FieldAveragePrice,
	FieldLastPrice,
}

// SortSpec selects the sort field and direction.
type SortSpec struct {
	Field Field
	Desc  bool
}

// DefaultSort is PnL descending.
var DefaultSort = SortSpec{Field: FieldPnL, Desc: true}

// numericValue returns the value of a sortable field. ok is false for
// fields that do not sort numerically.
func numericValue(h Holding, f Field) (float64, bool) {
	switch f {
	case FieldQuantity:
		return h.Quantity.Value(), true
	case FieldAveragePrice:
		return h.AveragePrice.Value(), true
	case FieldLastPrice:
		return h.LastPrice.Value(), true
	case FieldPnL:
		return h.PnL.Value(), true
	case FieldDayChange:
		return h.DayChangePercent.Value(), true
	}
	return 0, false
}

// Filter keeps holdings whose company name or trading symbol contains the
// query, case-insensitively. An empty query returns the snapshot unchanged.
func Filter(s Snapshot, query string) Snapshot {
	if query == "" {
		return s
	}
	q := strings.ToLower(query)
	out := make(Snapshot, 0, len(s))
	for _, h := range s {
		if strings.Contains(strings.ToLower(h.CompanyName), q) ||
			strings.Contains(strings.ToLower(h.Symbol()), q) {
			out = append(out, h)
		}
	}
	return out
}

// Sort returns a copy of the snapshot ordered by the given spec. The sort
// is stable: ties keep their prior relative order. Non-numeric fields
// leave the order untouched.
func Sort(s Snapshot, spec SortSpec) Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)

	if _, ok := numericValue(Holding{}, spec.Field); !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := numericValue(out[i], spec.Field)
		b, _ := numericValue(out[j], spec.Field)
		if spec.Desc {
			return a > b
		}
		return a < b
	})
	return out
}

// Derive is the full view derivation: filter by query, then sort. It is
// pure and recomputed whenever any of its three inputs changes.
func Derive(s Snapshot, query string, spec SortSpec) Snapshot {
	return Sort(Filter(s, query), spec)
}
