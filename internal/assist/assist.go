// Package assist holds the contracts for the external language-model
// collaborators: semantic extraction of expenses from free text, and
// free-text spending advice. Only the request/response shape matters here;
// the model's reasoning is out of scope.
package assist

import (
	"context"
	"errors"
)

// Extraction is the collaborator's best-effort structured guess for one
// expense. Amount is in rubles; Category is raw model output and must be
// normalized by the caller before use.
type Extraction struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// Extractor turns free text into a structured expense guess.
type Extractor interface {
	ExtractExpense(ctx context.Context, text string) (Extraction, error)
}

// Advisor produces free-text savings advice from serialized ledger lines.
type Advisor interface {
	Advise(ctx context.Context, lines []string) (string, error)
}

// ErrEmptyResponse is returned when the collaborator answers with no usable
// content.
var ErrEmptyResponse = errors.New("empty model response")
