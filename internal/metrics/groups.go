package metrics

import (
	"sort"

	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Default top-N sizes.
const (
	DefaultTopK = 10
	MinTopN     = 5
	MaxTopN     = 20
	DefaultTopN = 10
)

// Segment labels for the B2B flag.
const (
	SegmentB2C = "B2C"
	SegmentB2B = "B2B"
)

// Group is one key of a grouped aggregate.
type Group struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// PairGroup is a count keyed by (fulfilment, status).
type PairGroup struct {
	Fulfilment string `json:"fulfilment"`
	Status     string `json:"status"`
	Count      int64  `json:"count"`
}

// accumulator sums values per key and remembers first-encounter order.
type accumulator struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{sums: make(map[string]decimal.Decimal)}
}

func (a *accumulator) add(key string, v decimal.Decimal) {
	cur, ok := a.sums[key]
	if !ok {
		a.order = append(a.order, key)
		cur = decimal.Zero
	}
	a.sums[key] = cur.Add(v)
}

func (a *accumulator) groups() []Group {
	out := make([]Group, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, Group{Key: k, Value: a.sums[k]})
	}
	return out
}

// groupBy folds orders into groups in first-encounter order. Orders with an
// empty (null) key are left out.
func groupBy(orders []*domain.Order, key func(*domain.Order) string, value func(*domain.Order) decimal.Decimal) []Group {
	acc := newAccumulator()
	for _, o := range orders {
		k := key(o)
		if k == "" {
			continue
		}
		acc.add(k, value(o))
	}
	return acc.groups()
}

// TopN sorts groups by value descending and keeps at most n. Ties keep their
// input order, which is first-encounter order for the grouping helpers.
// n <= 0 keeps every group.
func TopN(groups []Group, n int) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func amount(o *domain.Order) decimal.Decimal   { return o.Amount }
func quantity(o *domain.Order) decimal.Decimal { return decimal.NewFromInt(o.Quantity) }
func one(*domain.Order) decimal.Decimal        { return decimal.NewFromInt(1) }

// SalesByMonth sums amount per calendar month, in chronological order.
func SalesByMonth(orders []*domain.Order) []Group {
	groups := groupBy(orders, (*domain.Order).Month, amount)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// QuantityByCategory sums quantity per category and keeps the top k.
func QuantityByCategory(orders []*domain.Order, k int) []Group {
	return TopN(groupBy(orders, func(o *domain.Order) string { return o.Category }, quantity), k)
}

// CountBySize counts orders per size and keeps the top k.
func CountBySize(orders []*domain.Order, k int) []Group {
	return TopN(groupBy(orders, func(o *domain.Order) string { return o.Size }, one), k)
}

// CountByFulfilment counts orders per fulfilment method, largest first.
func CountByFulfilment(orders []*domain.Order) []Group {
	return TopN(groupBy(orders, func(o *domain.Order) string { return o.Fulfilment }, one), 0)
}

// CountByFulfilmentStatus counts orders per (fulfilment, status) pair,
// ordered by fulfilment and then status. Pairs with a null side are left out.
func CountByFulfilmentStatus(orders []*domain.Order) []PairGroup {
	type pair struct{ fulfilment, status string }

	counts := make(map[pair]int64)
	for _, o := range orders {
		if o.Fulfilment == "" || o.Status == "" {
			continue
		}
		counts[pair{o.Fulfilment, o.Status}]++
	}

	out := make([]PairGroup, 0, len(counts))
	for p, n := range counts {
		out = append(out, PairGroup{Fulfilment: p.fulfilment, Status: p.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fulfilment != out[j].Fulfilment {
			return out[i].Fulfilment < out[j].Fulfilment
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// SalesBySegment sums amount for B2C and B2B orders. Both buckets are always
// present, B2C first.
func SalesBySegment(orders []*domain.Order) []Group {
	b2c, b2b := decimal.Zero, decimal.Zero
	for _, o := range orders {
		if o.B2B {
			b2b = b2b.Add(o.Amount)
		} else {
			b2c = b2c.Add(o.Amount)
		}
	}
	return []Group{
		{Key: SegmentB2C, Value: b2c},
		{Key: SegmentB2B, Value: b2b},
	}
}

// SalesByState sums amount per ship state and keeps the top n.
func SalesByState(orders []*domain.Order, n int) []Group {
	return TopN(groupBy(orders, func(o *domain.Order) string { return o.ShipState }, amount), n)
}

// CountByCity counts orders per ship city and keeps the top n.
func CountByCity(orders []*domain.Order, n int) []Group {
	return TopN(groupBy(orders, func(o *domain.Order) string { return o.ShipCity }, one), n)
}

// Sum adds up the values of groups.
func Sum(groups []Group) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Value)
	}
	return total
}
