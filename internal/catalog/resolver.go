// Package catalog resolves extracted product names to catalog entries and
// unit prices.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/shopspring/decimal"

	"facturabot/internal/entity"
	"facturabot/internal/textnorm"
)

// DefaultUnitPrice is assigned when no catalog entry matches a product name.
var DefaultUnitPrice = decimal.NewFromInt(100)

// MatchTier identifies which tier of the cascade produced a match.
type MatchTier string

const (
	TierExact       MatchTier = "exact"
	TierKeyword     MatchTier = "keyword"
	TierApproximate MatchTier = "approximate"
	TierDefault     MatchTier = "default"
)

// MatchPolicy is the tunable matching cascade: cheap, unambiguous checks run
// before fuzzy scoring. Swapping the similarity metric or cutoff happens here,
// not at call sites.
type MatchPolicy struct {
	// MinKeywordLen is the minimum token length considered in the keyword tier.
	MinKeywordLen int
	// SimilarityCutoff is the minimum similarity ratio for the approximate
	// tier to accept a candidate.
	SimilarityCutoff float64
	// DefaultUnitPrice is assigned when every tier misses.
	DefaultUnitPrice decimal.Decimal
}

func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		MinKeywordLen:    3,
		SimilarityCutoff: 0.6,
		DefaultUnitPrice: DefaultUnitPrice,
	}
}

// Source lists catalog products. It must be safe for concurrent reads.
type Source interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
}

// Match is the result of one lookup. Product is nil on the default tier.
type Match struct {
	Product   *entity.Product
	Tier      MatchTier
	UnitPrice decimal.Decimal
}

// Resolver matches product names against the catalog with an
// exact -> keyword -> approximate -> default cascade. It never fails: an
// unreachable catalog degrades every name to the default price.
type Resolver struct {
	source Source
	policy MatchPolicy
	logger *slog.Logger
	params *levenshtein.Params
}

func NewResolver(source Source, policy MatchPolicy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MinKeywordLen <= 0 {
		policy.MinKeywordLen = 3
	}
	if policy.SimilarityCutoff <= 0 {
		policy.SimilarityCutoff = 0.6
	}
	if policy.DefaultUnitPrice.IsZero() {
		policy.DefaultUnitPrice = DefaultUnitPrice
	}
	return &Resolver{
		source: source,
		policy: policy,
		logger: logger,
		params: levenshtein.NewParams(),
	}
}

// Lookup resolves a single product name.
func (r *Resolver) Lookup(ctx context.Context, name string) Match {
	normalized := textnorm.Normalize(name)

	products, err := r.source.ListProducts(ctx)
	if err != nil {
		r.logger.Warn("catalog.unavailable", "error", err, "name", name)
		return Match{Tier: TierDefault, UnitPrice: r.policy.DefaultUnitPrice}
	}
	if len(products) == 0 {
		r.logger.Warn("catalog.empty", "name", name)
		return Match{Tier: TierDefault, UnitPrice: r.policy.DefaultUnitPrice}
	}

	names := make([]string, len(products))
	for i := range products {
		names[i] = textnorm.Normalize(products[i].Name)
	}

	// exact
	for i := range products {
		if normalized == names[i] {
			r.logger.Debug("catalog.match", "tier", TierExact, "product", products[i].Name)
			return Match{Product: &products[i], Tier: TierExact, UnitPrice: products[i].UnitPrice}
		}
	}

	// keyword containment
	for _, word := range strings.Fields(normalized) {
		if len([]rune(word)) < r.policy.MinKeywordLen {
			continue
		}
		for i := range products {
			if strings.Contains(names[i], word) {
				r.logger.Debug("catalog.match", "tier", TierKeyword, "product", products[i].Name, "keyword", word)
				return Match{Product: &products[i], Tier: TierKeyword, UnitPrice: products[i].UnitPrice}
			}
		}
	}

	// approximate, best single candidate above the cutoff
	bestIdx, bestScore := -1, 0.0
	for i := range products {
		score := similarityRatio(normalized, names[i], r.params)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx >= 0 && bestScore >= r.policy.SimilarityCutoff {
		r.logger.Debug("catalog.match",
			"tier", TierApproximate, "product", products[bestIdx].Name, "score", bestScore)
		return Match{Product: &products[bestIdx], Tier: TierApproximate, UnitPrice: products[bestIdx].UnitPrice}
	}

	r.logger.Warn("catalog.no_match", "name", name)
	return Match{Tier: TierDefault, UnitPrice: r.policy.DefaultUnitPrice}
}

// similarityRatio scores two strings by edit distance normalized over the
// combined length. Unlike a max-length normalization, a short query against a
// longer catalog name is not penalized by the length gap alone, so
// "licencias" still clears the cutoff against "licencia software".
func similarityRatio(a, b string, p *levenshtein.Params) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 1
	}
	dist := levenshtein.Distance(a, b, p)
	return float64(total-dist) / float64(total)
}

// ResolvePrices maps each line item's lowercased product name to a unit price.
func (r *Resolver) ResolvePrices(ctx context.Context, items []entity.LineItem) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.ProductName))
		if name == "" {
			continue
		}
		prices[name] = r.Lookup(ctx, name).UnitPrice
	}
	return prices
}

// PriceLineItems resolves every line item to a priced one, computing subtotals
// and flagging items whose price was assumed rather than looked up.
func (r *Resolver) PriceLineItems(ctx context.Context, items []entity.LineItem) []entity.PricedLineItem {
	priced := make([]entity.PricedLineItem, 0, len(items))
	for _, item := range items {
		m := r.Lookup(ctx, item.ProductName)
		priced = append(priced, entity.PricedLineItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   m.UnitPrice,
			Subtotal:    m.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Assumed:     m.Tier == TierDefault,
		})
	}
	return priced
}
