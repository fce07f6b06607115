// Package pipeline sequences normalization, classification, extraction,
// validation, and price resolution for one inbound message.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"facturabot/constants"
	"facturabot/internal/catalog"
	"facturabot/internal/entity"
	"facturabot/internal/llm"
	"facturabot/internal/parser"
	"facturabot/internal/rfc"
	"facturabot/internal/textnorm"
)

// State of a pipeline run. Every run ends in a terminal state; for invoice
// intent that is exactly one of Priced or Failed.
type State string

const (
	StateReceived   State = "received"
	StateNormalized State = "normalized"
	StateClassified State = "classified"
	StateExtracted  State = "extracted"
	StateValidated  State = "validated"
	StatePriced     State = "priced"
	StateFailed     State = "failed"
)

// FailReason is the specific cause behind StateFailed. Each reason maps to a
// distinct user-facing message; there is no generic failure.
type FailReason string

const (
	ReasonMissingRFC FailReason = "missing_rfc"
	ReasonInvalidRFC FailReason = "invalid_rfc_format"
	ReasonNoProducts FailReason = "no_products_identified"
)

// Result is everything a pipeline run hands back to the caller. The pipeline
// never returns an error: every failure path lands here as a typed state.
type Result struct {
	State  State
	Intent constants.Intent
	Reason FailReason

	Invoice *entity.InvoiceRequest
	Query   *entity.QueryRequest
	Items   []entity.PricedLineItem
	Prices  map[string]decimal.Decimal
}

// Pipeline holds no per-message state; Run is safe to call concurrently.
type Pipeline struct {
	logger     *slog.Logger
	classifier llm.Classifier
	fallback   llm.FieldExtractor // optional; nil disables the model fallback
	parser     *parser.Parser
	resolver   *catalog.Resolver
}

func New(logger *slog.Logger, classifier llm.Classifier, fallback llm.FieldExtractor, p *parser.Parser, r *catalog.Resolver) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:     logger,
		classifier: classifier,
		fallback:   fallback,
		parser:     p,
		resolver:   r,
	}
}

// Run processes one message to a terminal state.
func (p *Pipeline) Run(ctx context.Context, msg entity.Message) Result {
	normalized := textnorm.Normalize(msg.Text)

	intent := p.classify(ctx, normalized)
	p.logger.Info("pipeline.classified", "sender", msg.Sender, "intent", string(intent))

	switch intent {
	case constants.IntentInvoice:
		return p.runInvoice(ctx, msg.Text, intent)
	case constants.IntentQuery:
		return p.runQuery(msg.Text, intent)
	default:
		// ayuda, estado, and otro are terminal right after classification;
		// the caller decides what to say for each.
		return Result{State: StateClassified, Intent: intent}
	}
}

// classify is the decision table over the model-call outcome: a reachable
// model's validated label wins; an unavailable model degrades to "otro".
func (p *Pipeline) classify(ctx context.Context, text string) constants.Intent {
	res := p.classifier.ClassifyIntent(ctx, text)
	switch res.Status {
	case llm.StatusOK:
		intent, _ := constants.Canonicalize(res.Label)
		return intent
	default:
		p.logger.Warn("pipeline.classify_fallback", "status", res.Status.String())
		return constants.IntentOther
	}
}

func (p *Pipeline) runInvoice(ctx context.Context, text string, intent constants.Intent) Result {
	req := p.parser.ExtractInvoice(text)

	// Model fallback fires only when the cascade produced nothing at all, and
	// its answer fully replaces the rule output.
	if req.RFC == "" && len(req.LineItems) == 0 && p.fallback != nil {
		res := p.fallback.ExtractInvoiceFields(ctx, text)
		switch res.Status {
		case llm.StatusOK:
			req = fromFields(res.Fields)
			p.logger.Info("pipeline.fallback_extraction", "rfc", req.RFC, "items", len(req.LineItems))
		default:
			p.logger.Warn("pipeline.fallback_unusable", "status", res.Status.String())
		}
	}

	if req.RFC == "" {
		return Result{State: StateFailed, Intent: intent, Reason: ReasonMissingRFC, Invoice: &req}
	}
	if !rfc.Valid(req.RFC) {
		return Result{State: StateFailed, Intent: intent, Reason: ReasonInvalidRFC, Invoice: &req}
	}
	if len(req.LineItems) == 0 {
		return Result{State: StateFailed, Intent: intent, Reason: ReasonNoProducts, Invoice: &req}
	}

	items := p.resolver.PriceLineItems(ctx, req.LineItems)
	prices := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		prices[strings.ToLower(strings.TrimSpace(it.ProductName))] = it.UnitPrice
	}

	return Result{
		State:   StatePriced,
		Intent:  intent,
		Invoice: &req,
		Items:   items,
		Prices:  prices,
	}
}

func (p *Pipeline) runQuery(text string, intent constants.Intent) Result {
	q := p.parser.ExtractQuery(text)
	if q.RFC == "" {
		return Result{State: StateFailed, Intent: intent, Reason: ReasonMissingRFC, Query: &q}
	}
	if !rfc.Valid(q.RFC) {
		return Result{State: StateFailed, Intent: intent, Reason: ReasonInvalidRFC, Query: &q}
	}
	return Result{State: StateValidated, Intent: intent, Query: &q}
}

func fromFields(f llm.InvoiceFields) entity.InvoiceRequest {
	req := entity.InvoiceRequest{RFC: rfc.Normalize(f.RFC)}
	for _, prod := range f.Products {
		if prod.Name == "" || prod.Quantity < 1 {
			continue
		}
		req.LineItems = append(req.LineItems, entity.LineItem{
			ProductName: prod.Name,
			Quantity:    prod.Quantity,
		})
	}
	return req
}
