package tour

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortOrder selects how a listing is ordered.
type SortOrder string

const (
	SortRecommended  SortOrder = "recommended"
	SortPriceLowHigh SortOrder = "price-low-high"
	SortPriceHighLow SortOrder = "price-high-low"
)

// ErrUnknownSortOrder is returned by ParseSortOrder for unsupported values.
var ErrUnknownSortOrder = errors.New("unknown sort order")

// ParseSortOrder maps user input to a SortOrder. Empty input means recommended.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortRecommended, nil
	case SortRecommended, SortPriceLowHigh, SortPriceHighLow:
		return o, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownSortOrder)
	}
}

// Sort returns a reordered copy of tours. Price orders are stable and numeric on
// SalePrice; tours whose price does not parse keep their relative order after
// all priced tours.
func Sort(tours []Tour, order SortOrder) []Tour {
	out := slices.Clone(tours)
	if out == nil {
		out = []Tour{}
	}

	var desc bool
	switch order {
	case SortPriceLowHigh:
	case SortPriceHighLow:
		desc = true
	default:
		return out
	}

	slices.SortStableFunc(out, func(a, b Tour) int {
		pa, okA := a.SalePrice.Float()
		pb, okB := b.SalePrice.Float()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		if desc {
			return cmp.Compare(pb, pa)
		}
		return cmp.Compare(pa, pb)
	})
	return out
}
