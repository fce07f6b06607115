package docgen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facturabot/internal/entity"
)

// Generator writes invoice documents into an output directory and hands back
// the path for persistence and download links.
type Generator struct {
	outputDir string
	renderer  Renderer
	logger    *slog.Logger
}

func NewGenerator(outputDir string, renderer Renderer, logger *slog.Logger) *Generator {
	if renderer == nil {
		renderer = &TextRenderer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{outputDir: outputDir, renderer: renderer, logger: logger}
}

// Generate renders one invoice document and returns its path relative to the
// output directory. The folio is derived from a fresh UUID.
func (g *Generator) Generate(customer entity.Customer, items []entity.PricedLineItem, issuedAt time.Time) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	folio := strings.ToUpper(uuid.New().String()[:8])
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}

	name := fmt.Sprintf("factura_%s_%s%s", customer.RFC, folio, g.renderer.Ext())
	path := filepath.Join(g.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create invoice file: %w", err)
	}
	defer f.Close()

	doc := &Document{
		Folio:    folio,
		Customer: customer,
		Items:    items,
		Total:    total,
		IssuedAt: issuedAt.Format("02/01/2006 15:04"),
	}
	if err := g.renderer.Render(f, doc); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}

	g.logger.Info("generated invoice document", "rfc", customer.RFC, "folio", folio, "path", path)
	return name, nil
}
