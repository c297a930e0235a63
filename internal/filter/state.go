package filter

import (
	"cloud.google.com/go/civil"
)

// State is the user's filter selection for one render pass.
//
// A nil selection slice means "not set" and resolves to every option; a
// non-nil empty slice is an explicit empty selection and matches nothing.
type State struct {
	Start       *civil.Date `json:"start,omitempty"`
	End         *civil.Date `json:"end,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
	Sizes       []string    `json:"sizes,omitempty"`
	Fulfilments []string    `json:"fulfilments,omitempty"`
	B2BOnly     bool        `json:"b2b_only"`
}

// Resolve returns a copy of s with unset fields filled from opts.
func (s State) Resolve(opts Options) State {
	out := s
	if out.Start == nil {
		d := opts.MinDate
		out.Start = &d
	}
	if out.End == nil {
		d := opts.MaxDate
		out.End = &d
	}
	if out.Categories == nil {
		out.Categories = opts.Categories
	}
	if out.Sizes == nil {
		out.Sizes = opts.Sizes
	}
	if out.Fulfilments == nil {
		out.Fulfilments = opts.Fulfilments
	}
	return out
}
