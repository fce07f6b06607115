package llm

import "context"

// Status is the outcome of a model round trip. Fallback behavior is a visible
// branch on this value, not a caught-all around the call.
type Status int

const (
	StatusOK Status = iota
	// StatusUnavailable means the model could not be reached (or is not
	// configured). Callers fall back deterministically.
	StatusUnavailable
	// StatusMalformed means the model answered but its output could not be
	// parsed or validated. Treated like a failed rule match.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ClassifyResult carries the intent label the model answered with.
// Membership validation has already coerced unknown labels to "otro".
type ClassifyResult struct {
	Status Status
	Label  string
}

// ProductField is one product in the model's JSON extraction answer.
type ProductField struct {
	Name     string `json:"nombre"`
	Quantity int    `json:"cantidad"`
}

// InvoiceFields is the normalized shape we want from the model's JSON
// extraction fallback.
type InvoiceFields struct {
	RFC      string         `json:"rfc,omitempty"`
	Products []ProductField `json:"productos"`
}

// ExtractResult is the outcome of the JSON extraction fallback. Raw holds the
// model's answer for observability regardless of Status.
type ExtractResult struct {
	Status Status
	Fields InvoiceFields
	Raw    []byte
}

// Classifier maps a message to one of the five intent labels.
type Classifier interface {
	ClassifyIntent(ctx context.Context, text string) ClassifyResult
}

// FieldExtractor is the model-driven extraction fallback the pipeline depends on.
type FieldExtractor interface {
	ExtractInvoiceFields(ctx context.Context, text string) ExtractResult
}
