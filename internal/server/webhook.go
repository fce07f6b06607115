package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"facturabot/constants"
	"facturabot/internal/docgen"
	"facturabot/internal/entity"
	"facturabot/internal/export"
	"facturabot/internal/pipeline"
	"facturabot/internal/repository"
	"facturabot/internal/rfc"
	"facturabot/internal/twilio"
)

// MessageSender delivers an outbound WhatsApp message.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Server handles the Twilio WhatsApp webhook and the supporting HTTP routes.
type Server struct {
	logger    *slog.Logger
	pipeline  *pipeline.Pipeline
	products  *repository.ProductRepository
	invoices  *repository.InvoiceRepository
	docs      *docgen.Generator
	exporter  *export.Service
	sender    MessageSender
	baseURL   string
	staticDir string
}

func New(logger *slog.Logger, p *pipeline.Pipeline, products *repository.ProductRepository,
	invoices *repository.InvoiceRepository, docs *docgen.Generator, exporter *export.Service,
	sender MessageSender, baseURL, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		pipeline:  p,
		products:  products,
		invoices:  invoices,
		docs:      docs,
		exporter:  exporter,
		sender:    sender,
		baseURL:   strings.TrimRight(baseURL, "/"),
		staticDir: staticDir,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Post("/webhook", s.handleWebhook)
	r.Get("/invoices/{rfc}/export", s.handleExport)
	if s.staticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}
	return r
}

const (
	replyBadFormat     = "⚠️ Formato incorrecto. Ejemplo: 'Facturar 2 licencias a RFC ABC123'"
	replyBadRFC        = "⚠️ El RFC proporcionado no tiene un formato válido"
	replyInvoiceSent   = "✅ Factura generada y enviada. Revisa tus archivos adjuntos."
	replySendFailed    = "⚠️ Factura generada pero hubo un error al enviarla. Intente nuevamente."
	replyInvoiceFailed = "❌ Error generando la factura. Por favor, intente más tarde."
	replyQueryHelp     = "Para consultar facturas, especifique el RFC. Ejemplo: 'Consultar facturas RFC ABC123'"
	replyNotUnderstood = "🤖 No he entendido tu mensaje. Puedes:\n- Facturar: 'Facturar 2 productos a RFC TU_RFC'\n- Consultar: 'Consultar facturas'"
	replyStatusOK      = "✅ El servicio de facturación está operando correctamente."
	replyHelp          = "🔍 *Asistente de Facturación* 🔍\n\n" +
		"Puedes realizar las siguientes acciones:\n\n" +
		"📝 *Generar una factura*\n" +
		"Ejemplo: \"Facturar 2 licencias a RFC ABC123456XYZ\"\n\n" +
		"📊 *Consultar facturas*\n" +
		"Ejemplo: \"Consultar facturas de RFC ABC123456XYZ\"\n\n" +
		"❓ *Ayuda*\n" +
		"Escribe \"ayuda\" para ver este mensaje\n\n" +
		"📱 *Estado de facturas*\n" +
		"Ejemplo: \"Estado de mi factura para RFC ABC123456XYZ\""
)

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "solicitud inválida", http.StatusBadRequest)
		return
	}
	body := r.PostForm.Get("Body")
	sender := r.PostForm.Get("From")

	if !strings.HasPrefix(sender, "whatsapp:") {
		s.logger.Warn("rejected non-whatsapp sender", "from", sender)
		http.Error(w, "Remitente no válido", http.StatusBadRequest)
		return
	}

	reqID := uuid.New().String()
	start := time.Now()
	logger := s.logger.With("req_id", reqID, "from", sender)
	logger.Info("webhook message received", "length", len(body))

	res := s.pipeline.Run(r.Context(), entity.Message{Text: body, Sender: sender})
	logger.Info("pipeline finished",
		"state", string(res.State),
		"intent", string(res.Intent),
		"reason", string(res.Reason),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	replies := s.repliesFor(r.Context(), logger, sender, res)
	s.writeTwiML(w, logger, replies...)
}

func (s *Server) repliesFor(ctx context.Context, logger *slog.Logger, sender string, res pipeline.Result) []string {
	switch res.Intent {
	case constants.IntentInvoice:
		return s.invoiceReplies(ctx, logger, sender, res)
	case constants.IntentQuery:
		if res.State != pipeline.StateValidated || res.Query == nil {
			return []string{replyQueryHelp}
		}
		return []string{fmt.Sprintf("📄 Consulta tus facturas aquí: %s/invoices/%s/export", s.baseURL, res.Query.RFC)}
	case constants.IntentHelp:
		return []string{replyHelp}
	case constants.IntentStatus:
		return []string{replyStatusOK}
	default:
		return []string{replyNotUnderstood}
	}
}

func (s *Server) invoiceReplies(ctx context.Context, logger *slog.Logger, sender string, res pipeline.Result) []string {
	if res.State == pipeline.StateFailed {
		if res.Reason == pipeline.ReasonInvalidRFC {
			return []string{replyBadRFC}
		}
		return []string{replyBadFormat}
	}

	customer, err := s.invoices.FindOrCreateCustomer(ctx, res.Invoice.RFC)
	if err != nil {
		logger.Error("failed to persist customer", "error", err)
		return []string{replyInvoiceFailed}
	}

	issuedAt := time.Now().UTC()
	docName, err := s.docs.Generate(*customer, res.Items, issuedAt)
	if err != nil {
		logger.Error("failed to generate invoice document", "error", err)
		return []string{replyInvoiceFailed}
	}

	rows := make([]entity.Invoice, 0, len(res.Items))
	var assumed []string
	for _, it := range res.Items {
		rows = append(rows, entity.Invoice{
			CustomerID:   customer.ID,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Total:        it.Subtotal,
			IssuedAt:     issuedAt,
			DocumentPath: docName,
		})
		if it.Assumed {
			assumed = append(assumed, it.ProductName)
		}
	}
	if _, err := s.invoices.CreateInvoiceBatch(ctx, rows); err != nil {
		logger.Error("failed to persist invoice", "error", err)
		return []string{replyInvoiceFailed}
	}
	for _, it := range res.Items {
		if !it.Assumed {
			continue
		}
		// Remember the assumed price so the next quote is consistent.
		if _, err := s.products.FindOrCreate(ctx, it.ProductName, it.UnitPrice); err != nil {
			logger.Warn("failed to record assumed product", "error", err, "product", it.ProductName)
		}
	}

	docURL := fmt.Sprintf("%s/static/%s", s.baseURL, docName)
	if err := s.sender.SendMessage(ctx, sender, "📎 Tu factura: "+docURL); err != nil {
		logger.Error("failed to send invoice link", "error", err)
		return []string{replySendFailed}
	}

	replies := []string{replyInvoiceSent}
	if len(assumed) > 0 {
		replies = append(replies, "ℹ️ Precio estimado aplicado a: "+strings.Join(assumed, ", "))
	}
	return replies
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	taxID := rfc.Normalize(chi.URLParam(r, "rfc"))
	if !rfc.Valid(taxID) {
		http.Error(w, "RFC inválido", http.StatusBadRequest)
		return
	}
	data, err := s.exporter.ExportInvoicesXLSX(r.Context(), taxID)
	if err != nil {
		s.logger.Error("export failed", "rfc", taxID, "error", err)
		http.Error(w, "error generando el reporte", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=facturas_%s.xlsx", taxID))
	_, _ = w.Write(data)
}

func (s *Server) writeTwiML(w http.ResponseWriter, logger *slog.Logger, bodies ...string) {
	out, err := twilio.NewMessagingResponse(bodies...).Render()
	if err != nil {
		logger.Error("failed to render twiml", "error", err)
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(out)
}
