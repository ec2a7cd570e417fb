package model

import "github.com/rotisserie/eris"

// Evidence is a verbatim snippet proving where an extracted value came from.
type Evidence struct {
	Page    int    `json:"page"`
	Quote   string `json:"quote"`
	Section string `json:"section,omitempty"`
}

// Field wraps an extracted value with the evidence backing it. Fields are
// created once by the extractor and read-only afterward; the scoring engine
// only reads Value and re-emits Evidence references.
type Field[T any] struct {
	Value    T          `json:"value"`
	Evidence []Evidence `json:"evidence"`
}

// NewField constructs a Field with the given value and evidence.
func NewField[T any](value T, evidence ...Evidence) *Field[T] {
	return &Field[T]{Value: value, Evidence: evidence}
}

// Validate checks the provenance contract: a field that claims provenance
// must carry at least one evidence item.
func (f *Field[T]) Validate() error {
	if len(f.Evidence) == 0 {
		return eris.New("model: field claims provenance but has no evidence")
	}
	return nil
}

// PageText is one page of a document as supplied by the page-text extractor.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}
