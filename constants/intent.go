package constants

import (
	"strings"
)

// Intent is the categorical purpose of an inbound message. The values are the
// Spanish labels the classifier prompt enumerates; they are the wire vocabulary
// and must not be translated.
type Intent string

const (
	IntentInvoice Intent = "facturar"
	IntentQuery   Intent = "consultar"
	IntentHelp    Intent = "ayuda"
	IntentStatus  Intent = "estado"
	IntentOther   Intent = "otro"
)

var allIntents = []Intent{
	IntentInvoice,
	IntentQuery,
	IntentHelp,
	IntentStatus,
	IntentOther,
}

func AsStringSlice() []string {
	result := make([]string, len(allIntents))
	for i, in := range allIntents {
		result[i] = string(in)
	}
	return result
}

// Canonicalize maps a raw model answer to an Intent. Unrecognized input maps to
// IntentOther with ok=false so callers can log it.
func Canonicalize(input string) (Intent, bool) {
	if input == "" {
		return IntentOther, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.Trim(normalized, ".\"'")

	// synonyms map
	synonyms := map[string]Intent{
		"factura":    IntentInvoice,
		"facturas":   IntentInvoice,
		"invoice":    IntentInvoice,
		"consulta":   IntentQuery,
		"consultas":  IntentQuery,
		"query":      IntentQuery,
		"help":       IntentHelp,
		"asistencia": IntentHelp,
		"status":     IntentStatus,
	}

	if in, ok := synonyms[normalized]; ok {
		return in, true
	}

	for _, in := range allIntents {
		if normalized == string(in) {
			return in, true
		}
	}
	return IntentOther, false
}
