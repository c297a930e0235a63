package filter

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/dvloznov/sales-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *civil.Date {
	return &civil.Date{Year: y, Month: m, Day: d}
}

func ids(orders []*domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OrderID)
	}
	return out
}

func TestOptionsOf(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)

	opts := OptionsOf(table)

	assert.Equal(t, []string{"Set", "kurta", "Western Dress", "Top"}, opts.Categories)
	assert.Equal(t, []string{"S", "3XL", "XL", "L"}, opts.Sizes)
	assert.Equal(t, []string{"Amazon", "Merchant"}, opts.Fulfilments)
	assert.Equal(t, *date(2022, time.January, 5), opts.MinDate)
	assert.Equal(t, *date(2022, time.March, 31), opts.MaxDate)
}

func TestOptionsOf_EmptyTable(t *testing.T) {
	opts := OptionsOf(&domain.Table{})
	assert.Empty(t, opts.Categories)
	assert.NotNil(t, opts.Categories)
}

func TestApply_ZeroStateReturnsEverything(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)

	got := Apply(table, OptionsOf(table), State{})

	assert.Equal(t, ids(table.Orders), ids(got))
}

func TestApply_DateRangeInclusive(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)
	state := State{Start: date(2022, time.February, 1), End: date(2022, time.February, 28)}

	got := Apply(table, OptionsOf(table), state)

	assert.Equal(t, []string{
		"404-0687676-7273146",
		"403-9615377-8133951",
		"407-1069790-7240320",
	}, ids(got))
}

func TestApply_EmptySelectionMatchesNothing(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)
	opts := OptionsOf(table)

	tests := []struct {
		name  string
		state State
	}{
		{"categories", State{Categories: []string{}}},
		{"sizes", State{Sizes: []string{}}},
		{"fulfilments", State{Fulfilments: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(table, opts, tt.state)
			assert.Empty(t, got)
		})
	}
}

func TestApply_Membership(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)

	got := Apply(table, OptionsOf(table), State{
		Categories:  []string{"kurta"},
		Fulfilments: []string{"Merchant"},
	})

	assert.Equal(t, []string{"171-9198151-1101146", "408-5748499-6859555"}, ids(got))
}

func TestApply_B2BOnly(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)

	got := Apply(table, OptionsOf(table), State{B2BOnly: true})

	assert.Equal(t, []string{"404-0687676-7273146", "408-5748499-6859555"}, ids(got))
}

func TestApply_B2BOnlyWithoutB2BRows(t *testing.T) {
	rows := testutil.Quarter()
	for i := range rows {
		rows[i].B2B = false
	}
	table := testutil.Table(t, rows...)

	got := Apply(table, OptionsOf(table), State{B2BOnly: true})

	assert.Empty(t, got)
}

func TestApply_Idempotent(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)
	opts := OptionsOf(table)
	state := State{
		Start:      date(2022, time.January, 10),
		Categories: []string{"Set", "kurta"},
		Sizes:      []string{"XL", "S", "L"},
	}

	once := Apply(table, opts, state)
	twice := NewSelectionPipeline(state.Resolve(opts)).Run(once)

	assert.Equal(t, ids(once), ids(twice))
}

func TestApply_OrderIndependent(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)
	byCategory := NewMemberStep(func(o *domain.Order) string { return o.Category }, []string{"Set", "kurta"})
	bySize := NewMemberStep(func(o *domain.Order) string { return o.Size }, []string{"XL", "S"})

	catThenSize := NewPipeline(byCategory, bySize).Run(table.Orders)
	sizeThenCat := NewPipeline(bySize, byCategory).Run(table.Orders)

	require.NotEmpty(t, catThenSize)
	assert.Equal(t, ids(catThenSize), ids(sizeThenCat))
}

func TestApply_AlwaysSubsetOfTable(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)
	loaded := make(map[*domain.Order]bool, len(table.Orders))
	for _, o := range table.Orders {
		loaded[o] = true
	}

	got := Apply(table, OptionsOf(table), State{Sizes: []string{"XL", "L"}})

	for _, o := range got {
		assert.True(t, loaded[o], "order %s not from the loaded table", o.OrderID)
	}
}

func TestResolve_KeepsExplicitSelections(t *testing.T) {
	opts := Options{
		Categories:  []string{"Set", "kurta"},
		Sizes:       []string{"S"},
		Fulfilments: []string{"Amazon"},
		MinDate:     *date(2022, time.January, 1),
		MaxDate:     *date(2022, time.March, 31),
	}

	got := State{Categories: []string{}, Sizes: []string{"M"}}.Resolve(opts)

	assert.Equal(t, []string{}, got.Categories)
	assert.Equal(t, []string{"M"}, got.Sizes)
	assert.Equal(t, opts.Fulfilments, got.Fulfilments)
	assert.Equal(t, opts.MinDate, *got.Start)
	assert.Equal(t, opts.MaxDate, *got.End)
}

func TestSearch(t *testing.T) {
	table := testutil.Table(t, testutil.Quarter()...)

	tests := []struct {
		q    string
		want []string
	}{
		{"8078784", []string{"405-8078784-5731545"}},
		{"  404-  ", []string{"404-0687676-7273146", "404-1490984-4578765"}},
		{"", []string{}},
		{"no-such-order", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Search(table.Orders, tt.q)))
		})
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	table := testutil.Table(t, testutil.Row{ID: "S02-ABCdef", Date: "2022-04-01", Amount: "10"})

	assert.Len(t, Search(table.Orders, "abcDEF"), 1)
}
