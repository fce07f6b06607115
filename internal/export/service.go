package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"facturabot/internal/repository"
)

// Service is a tiny façade over the invoice repository that produces XLSX
// bytes for invoice-history exports.
type Service struct {
	invoices *repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices *repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

// ExportInvoicesXLSX returns an XLSX workbook (as bytes) with every invoice
// issued to the customer identified by rfc.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, rfc string) ([]byte, error) {
	start := time.Now()

	invoices, err := s.invoices.ListByRFC(ctx, rfc)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Facturas"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Fecha de emisión",
		"Producto",
		"Cantidad",
		"Precio unitario",
		"Total",
		"Documento",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, inv.IssuedAt.Format("2006-01-02"))
		write(2, inv.ProductName)
		write(3, inv.Quantity)
		write(4, inv.UnitPrice.StringFixed(2))
		write(5, inv.Total.StringFixed(2))
		write(6, inv.DocumentPath)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "E", 16)
	_ = f.SetColWidth(sheet, "F", "F", 44)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rfc", rfc,
		"rows", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
