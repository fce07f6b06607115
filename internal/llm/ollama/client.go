// Package ollama implements llm.Classifier and llm.FieldExtractor against a
// local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"facturabot/constants"
	"facturabot/internal/llm"
)

// Config for the Ollama client.
type Config struct {
	BaseURL     string        // default http://localhost:11434
	Model       string        // e.g. "llama2:7b"
	Temperature float32       // 0..1
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama2:7b"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// generate is a single synchronous round trip to /api/generate. No retry, no
// streaming.
func (c *Client) generate(ctx context.Context, reqID, prompt string) (string, error) {
	body := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": c.cfg.Temperature,
		},
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("llm.ollama.body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, buf.String())
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return gr.Response, nil
}

// ClassifyIntent sends the fixed classification prompt and validates the
// answer's membership in the intent vocabulary. Empty text short-circuits to
// "otro" without touching the model.
func (c *Client) ClassifyIntent(ctx context.Context, text string) llm.ClassifyResult {
	if strings.TrimSpace(text) == "" {
		return llm.ClassifyResult{Status: llm.StatusOK, Label: string(constants.IntentOther)}
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.classify.start", "req_id", rid, "model", c.cfg.Model, "text_len", len(text))

	answer, err := c.generate(ctx, rid, llm.BuildClassifyPrompt(text))
	if err != nil {
		c.logger.Error("llm.classify.unavailable",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ClassifyResult{Status: llm.StatusUnavailable}
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	intent, known := llm.ValidLabel(answer)
	if !known {
		c.logger.Warn("llm.classify.unexpected_label",
			"req_id", rid, "answer", answer,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	} else {
		c.logger.Info("llm.classify.ok",
			"req_id", rid, "intent", string(intent),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	return llm.ClassifyResult{Status: llm.StatusOK, Label: string(intent)}
}

// ExtractInvoiceFields asks the model for the JSON fallback answer, sanitizes
// it, and validates it against the invoice schema. A response that cannot be
// parsed or validated yields StatusMalformed.
func (c *Client) ExtractInvoiceFields(ctx context.Context, text string) llm.ExtractResult {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.extract.start", "req_id", rid, "model", c.cfg.Model, "text_len", len(text))

	answer, err := c.generate(ctx, rid, llm.BuildExtractPrompt(text))
	if err != nil {
		c.logger.Error("llm.extract.unavailable",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Status: llm.StatusUnavailable}
	}
	raw := []byte(answer)

	doc, ok := llm.ExtractJSONObject(answer)
	if !ok {
		c.logger.Error("llm.extract.no_json",
			"req_id", rid, "answer", answer,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Status: llm.StatusMalformed, Raw: raw}
	}

	cleaned, _, err := llm.SanitizeInvoiceJSON(doc, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Status: llm.StatusMalformed, Raw: raw}
	}
	if err := llm.ValidateAgainstSchema(llm.BuildInvoiceJSONSchema(), cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Status: llm.StatusMalformed, Raw: raw}
	}

	var fields llm.InvoiceFields
	if err := json.Unmarshal(cleaned, &fields); err != nil {
		c.logger.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Status: llm.StatusMalformed, Raw: raw}
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid, "rfc", fields.RFC, "products", len(fields.Products),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.ExtractResult{Status: llm.StatusOK, Fields: fields, Raw: raw}
}
