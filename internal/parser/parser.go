// Package parser pulls structured invoice and query requests out of free-form
// Spanish messages using an ordered rule cascade.
package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"facturabot/internal/entity"
	"facturabot/internal/rfc"
)

// pattern is one entry of the single-item cascade. The list order is a
// behavioral contract: looser patterns can spuriously match text intended for
// a stricter one, so the first match wins and reordering changes results on
// ambiguous input.
type pattern struct {
	name string
	re   *regexp.Regexp
}

var singleItemPatterns = []pattern{
	// "facturar 2 licencias a RFC ABC123456XYZ"
	{"canonical", regexp.MustCompile(`(?i)\bfacturar\s+(\d+)\s+(.+?)\s+a\s+rfc\s+([0-9a-zñ&]+)`)},
	// "facturar 2 licencias RFC ABC123456XYZ" / "... al RFC ..."
	{"sin_preposicion", regexp.MustCompile(`(?i)\bfacturar\s+(\d+)\s+(.+?)\s+(?:al\s+)?rfc\s+([0-9a-zñ&]+)`)},
	// "quiero facturar 2 licencias al RFC ABC123456XYZ"
	{"quiero_facturar", regexp.MustCompile(`(?i)\bquiero\s+facturar\s+(\d+)\s+(.+?)\s+(?:al|a)\s+rfc\s+([0-9a-zñ&]+)`)},
	// "necesito una factura de 2 licencias para el RFC ABC123456XYZ"
	{"necesito_factura", regexp.MustCompile(`(?i)\bnecesito\s+(?:una\s+)?factura\s+(?:de|por)\s+(\d+)\s+(.+?)\s+(?:para|a|al)\s+(?:el\s+)?rfc\s+([0-9a-zñ&]+)`)},
	// "generar factura de 2 licencias para RFC ABC123456XYZ"
	{"generar_factura", regexp.MustCompile(`(?i)\bgenerar?\s+(?:una\s+)?factura\s+de\s+(\d+)\s+(.+?)\s+(?:para|a|al)\s+rfc\s+([0-9a-zñ&]+)`)},
	// "emitir factura: 2 licencias RFC ABC123456XYZ"
	{"emitir_factura", regexp.MustCompile(`(?i)\bemitir\s+factura:?\s+(\d+)\s+(.+?)\s+(?:(?:para|a|al)\s+)?rfc\s+([0-9a-zñ&]+)`)},
}

var (
	// standalone "RFC <token>" scan, independent of the item patterns
	reRFCToken = regexp.MustCompile(`(?i)\brfc\s+([0-9a-zñ&]+)`)
	// the full RFC clause including its optional preposition, for removal
	reRFCClause = regexp.MustCompile(`(?i)(?:\b(?:a|al|para)\s+)?\brfc\s+[0-9a-zñ&]+`)
	// one "<qty> <name>" segment, delimited by comma, " y ", or end-of-string
	reSegment = regexp.MustCompile(`(?i)(\d+)\s+([^,\d]+?)(?:\s*,|\s+y\s+|$)`)
	// a quantity followed by a word: two or more of these plus a join marker
	// means the multi-item shape
	reQtyTerm  = regexp.MustCompile(`(?i)\b\d+\s+\p{L}`)
	reAndDigit = regexp.MustCompile(`(?i)\s+y\s+\d`)
	// explicit enumeration clause, the secondary pass of multi-item extraction
	reEnumClause = regexp.MustCompile(`(?i)\b(?:productos|artículos|articulos|items)\s*:\s*(.+)$`)
)

type Parser struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ExtractInvoice applies the rule cascade to text. It never fails: when no
// pattern matches it returns an empty request and logs the unmatched text.
func (p *Parser) ExtractInvoice(text string) entity.InvoiceRequest {
	if p.isMultiItem(text) {
		return p.extractMultiItem(text)
	}

	for _, pat := range singleItemPatterns {
		m := pat.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty < 1 {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}
		p.logger.Debug("parser.invoice.matched", "pattern", pat.name)
		return entity.InvoiceRequest{
			RFC:       rfc.Normalize(m[3]),
			LineItems: []entity.LineItem{{ProductName: name, Quantity: qty}},
		}
	}

	p.logger.Warn("parser.invoice.unmatched", "text", text)
	return entity.InvoiceRequest{}
}

// isMultiItem reports whether text has two or more quantity-noun segments
// joined by a comma or " y ".
func (p *Parser) isMultiItem(text string) bool {
	if len(reQtyTerm.FindAllStringIndex(text, -1)) < 2 {
		return false
	}
	return strings.Contains(text, ",") || reAndDigit.MatchString(text)
}

// extractMultiItem locates the RFC anywhere in the text, then repeatedly scans
// quantity+product segments. If free-form scanning finds nothing, it retries
// inside an explicit "productos:" enumeration clause.
func (p *Parser) extractMultiItem(text string) entity.InvoiceRequest {
	var req entity.InvoiceRequest
	if m := reRFCToken.FindStringSubmatch(text); m != nil {
		req.RFC = rfc.Normalize(m[1])
	}

	body := reRFCClause.ReplaceAllString(text, " , ")
	req.LineItems = scanSegments(body)
	if len(req.LineItems) == 0 {
		if m := reEnumClause.FindStringSubmatch(body); m != nil {
			req.LineItems = scanSegments(m[1])
		}
	}

	if req.RFC == "" && len(req.LineItems) == 0 {
		p.logger.Warn("parser.invoice.unmatched", "text", text)
	}
	return req
}

func scanSegments(body string) []entity.LineItem {
	var items []entity.LineItem
	for _, m := range reSegment.FindAllStringSubmatch(body, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty < 1 {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}
		items = append(items, entity.LineItem{ProductName: name, Quantity: qty})
	}
	return items
}
