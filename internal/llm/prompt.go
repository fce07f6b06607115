package llm

import (
	"strings"

	"facturabot/constants"
)

// BuildClassifyPrompt composes the fixed instruction prompt that enumerates
// the five intents with an example for each and asks for a single-word answer.
func BuildClassifyPrompt(text string) string {
	parts := []string{
		"Clasifica este mensaje usando exactamente una de estas opciones:",
		"- facturar (si solicita generar una factura; ej: \"Facturar 2 licencias a RFC ABC123456XYZ\")",
		"- consultar (si solicita ver facturas existentes; ej: \"Consultar facturas de RFC ABC123456XYZ\")",
		"- ayuda (si pide instrucciones o ayuda; ej: \"¿Cómo genero una factura?\")",
		"- estado (si pregunta por el estado de un trámite o factura; ej: \"¿Ya salió mi factura?\")",
		"- otro (si no encaja en las anteriores; ej: \"Hola, buenos días\")",
		"",
		"Mensaje: " + text,
		"Respuesta (solo una palabra):",
	}
	return strings.Join(parts, "\n")
}

// BuildExtractPrompt asks the model for the JSON extraction fallback answer.
func BuildExtractPrompt(text string) string {
	parts := []string{
		"Extrae los datos de facturación de este mensaje.",
		"Responde SOLO con un objeto JSON, sin explicaciones, con esta forma:",
		`{"rfc": "RFC del cliente o cadena vacía", "productos": [{"nombre": "nombre del producto", "cantidad": 1}]}`,
		"Las cantidades son enteros positivos. Si no hay productos, usa una lista vacía.",
		"",
		"Mensaje: " + text,
	}
	return strings.Join(parts, "\n")
}

// BuildInvoiceJSONSchema returns the JSON-Schema (draft 2020-12 subset) the
// fallback answer must satisfy. Used locally to validate before accepting.
func BuildInvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"rfc": map[string]any{"type": "string"},
			"productos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"nombre":   map[string]any{"type": "string", "minLength": 1},
						"cantidad": map[string]any{"type": "integer", "minimum": 1},
					},
					"required": []string{"nombre", "cantidad"},
				},
			},
		},
		"required": []string{"productos"},
	}
}

// ValidLabel reports whether the model's classification answer is one of the
// five intent labels after trimming and lowercasing.
func ValidLabel(answer string) (constants.Intent, bool) {
	return constants.Canonicalize(answer)
}
