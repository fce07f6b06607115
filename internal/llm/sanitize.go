package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtractJSONObject trims markdown code fences and surrounding prose from a
// model answer and returns the first balanced {...} block. ok is false when no
// object is present at all.
func ExtractJSONObject(raw string) ([]byte, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(s[start : end+1]), true
}

// SanitizeInvoiceJSON normalizes a fallback answer so a well-meaning but
// sloppy model response can still validate:
//   - renames known synonyms (items/products -> productos, name -> nombre, qty -> cantidad)
//   - coerces numeric-looking cantidad values to integers
//   - trims and upper-cases rfc, dropping it when empty
//   - drops products with empty names or non-positive quantities
//   - removes unknown keys (additionalProperties=false friendliness)
func SanitizeInvoiceJSON(doc []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	rename("products", "productos")
	rename("items", "productos")

	if v, ok := m["rfc"].(string); ok {
		s := strings.ToUpper(strings.TrimSpace(v))
		if s == "" {
			delete(m, "rfc")
			dropped = append(dropped, "rfc(empty)")
		} else {
			m["rfc"] = s
		}
	} else if _, present := m["rfc"]; present {
		delete(m, "rfc")
		dropped = append(dropped, "rfc(type)")
	}

	rawProducts, present := m["productos"]
	if !present {
		// leave it missing; schema validation rejects the document
		return marshalSanitized(m, dropped, logger)
	}
	products, ok := rawProducts.([]any)
	if !ok {
		return nil, dropped, fmt.Errorf("sanitize: productos is not an array")
	}
	clean := make([]any, 0, len(products))
	for i, raw := range products {
		p, ok := raw.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("productos[%d](type)", i))
			continue
		}
		renameItem := func(from, to string) {
			if v, ok := p[from]; ok {
				if _, exists := p[to]; !exists {
					p[to] = v
				}
				delete(p, from)
			}
		}
		renameItem("name", "nombre")
		renameItem("producto", "nombre")
		renameItem("qty", "cantidad")
		renameItem("quantity", "cantidad")

		name, _ := p["nombre"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			dropped = append(dropped, fmt.Sprintf("productos[%d](nombre)", i))
			continue
		}

		qty := 0
		switch t := p["cantidad"].(type) {
		case float64:
			qty = int(t)
		case string:
			fmt.Sscanf(strings.TrimSpace(t), "%d", &qty)
		}
		if qty < 1 {
			dropped = append(dropped, fmt.Sprintf("productos[%d](cantidad)", i))
			continue
		}

		clean = append(clean, map[string]any{"nombre": name, "cantidad": qty})
	}
	m["productos"] = clean

	return marshalSanitized(m, dropped, logger)
}

func marshalSanitized(m map[string]any, dropped []string, logger *slog.Logger) ([]byte, []string, error) {
	for k := range m {
		if k != "rfc" && k != "productos" {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// ValidateAgainstSchema validates data against the schema map.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
