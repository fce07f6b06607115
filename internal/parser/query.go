package parser

import (
	"regexp"
	"strings"

	"facturabot/internal/entity"
	"facturabot/internal/rfc"
)

var queryPatterns = []pattern{
	// "consultar facturas de RFC ABC123456XYZ"
	{"consultar", regexp.MustCompile(`(?i)\bconsultar\s+facturas?\s+(?:de\s+|del\s+)?rfc\s+([0-9a-zñ&]+)`)},
	// "ver facturas del RFC ABC123456XYZ"
	{"ver", regexp.MustCompile(`(?i)\bver\s+facturas?\s+(?:de\s+|del\s+)?rfc\s+([0-9a-zñ&]+)`)},
	// "mostrar facturas RFC ABC123456XYZ"
	{"mostrar", regexp.MustCompile(`(?i)\bmostrar\s+facturas?\s+(?:de\s+|del\s+)?rfc\s+([0-9a-zñ&]+)`)},
	// "facturas emitidas a RFC ABC123456XYZ"
	{"emitidas", regexp.MustCompile(`(?i)\bfacturas?\s+emitidas\s+(?:a|al|para)\s+rfc\s+([0-9a-zñ&]+)`)},
}

// queryIndicators trigger the bare "RFC <token>" fallback scan when none of
// the fixed query patterns match.
var queryIndicators = []string{
	"consultar", "consulta", "ver", "mostrar", "listar", "facturas", "emitidas",
}

// ExtractQuery pulls the RFC out of a query-intent message. It returns an
// empty request when nothing matches; it never fails.
func (p *Parser) ExtractQuery(text string) entity.QueryRequest {
	for _, pat := range queryPatterns {
		if m := pat.re.FindStringSubmatch(text); m != nil {
			p.logger.Debug("parser.query.matched", "pattern", pat.name)
			return entity.QueryRequest{RFC: rfc.Normalize(m[1])}
		}
	}

	lower := strings.ToLower(text)
	for _, word := range queryIndicators {
		if strings.Contains(lower, word) {
			if m := reRFCToken.FindStringSubmatch(text); m != nil {
				return entity.QueryRequest{RFC: rfc.Normalize(m[1])}
			}
			break
		}
	}

	p.logger.Warn("parser.query.unmatched", "text", text)
	return entity.QueryRequest{}
}
