package filter

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/domain"
)

// Step is a single predicate of the filter pipeline.
type Step interface {
	Keep(o *domain.Order) bool
}

// DateRangeStep keeps orders dated within [Start, End], both inclusive.
type DateRangeStep struct {
	Start civil.Date
	End   civil.Date
}

func (s DateRangeStep) Keep(o *domain.Order) bool {
	return !o.Date.Before(s.Start) && !o.Date.After(s.End)
}

// MemberStep keeps orders whose field value is in the selected set.
// An empty set keeps nothing.
type MemberStep struct {
	Field  func(o *domain.Order) string
	Values map[string]bool
}

// NewMemberStep builds a MemberStep over the given selection.
func NewMemberStep(field func(o *domain.Order) string, selected []string) MemberStep {
	values := make(map[string]bool, len(selected))
	for _, v := range selected {
		values[v] = true
	}
	return MemberStep{Field: field, Values: values}
}

func (s MemberStep) Keep(o *domain.Order) bool {
	return s.Values[s.Field(o)]
}

// B2BStep keeps business-to-business orders.
type B2BStep struct{}

func (B2BStep) Keep(o *domain.Order) bool {
	return o.B2B
}

// Pipeline applies its steps in order; an order must pass every step.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run returns the orders that pass every step, in source order.
func (p *Pipeline) Run(orders []*domain.Order) []*domain.Order {
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if p.keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (p *Pipeline) keep(o *domain.Order) bool {
	for _, step := range p.steps {
		if !step.Keep(o) {
			return false
		}
	}
	return true
}

// NewSelectionPipeline builds the standard pipeline for a resolved state:
// date range, category, size, fulfilment, then the optional B2B step.
func NewSelectionPipeline(s State) *Pipeline {
	var steps []Step
	if s.Start != nil && s.End != nil {
		steps = append(steps, DateRangeStep{Start: *s.Start, End: *s.End})
	}
	steps = append(steps,
		NewMemberStep(func(o *domain.Order) string { return o.Category }, s.Categories),
		NewMemberStep(func(o *domain.Order) string { return o.Size }, s.Sizes),
		NewMemberStep(func(o *domain.Order) string { return o.Fulfilment }, s.Fulfilments),
	)
	if s.B2BOnly {
		steps = append(steps, B2BStep{})
	}
	return NewPipeline(steps...)
}

// Apply filters the full loaded table by state. Unset selections resolve to
// every option of the table, so the zero State returns every order.
func Apply(table *domain.Table, opts Options, s State) []*domain.Order {
	if table.Len() == 0 {
		return []*domain.Order{}
	}
	return NewSelectionPipeline(s.Resolve(opts)).Run(table.Orders)
}

// Search returns the orders whose id contains q, ignoring case.
// An empty query matches nothing.
func Search(orders []*domain.Order, q string) []*domain.Order {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []*domain.Order{}
	if q == "" {
		return out
	}
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.OrderID), q) {
			out = append(out, o)
		}
	}
	return out
}
