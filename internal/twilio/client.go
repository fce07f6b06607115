package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"facturabot/internal/common"
)

const apiBase = "https://api.twilio.com/2010-04-01"

// Error code Twilio returns when the sandbox daily message limit is hit.
const codeDailyLimitReached = 63038

// Config holds the credentials and sending options for the REST client.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	TestMode   bool
	Timeout    time.Duration
}

// Client sends outbound WhatsApp messages through Twilio's REST API. In test
// mode no HTTP call is made and the message is only logged.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		baseURL: apiBase,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SendMessage delivers body to the given whatsapp: address.
func (c *Client) SendMessage(ctx context.Context, to, body string) error {
	if c.cfg.TestMode {
		c.logger.Info("test mode, skipping outbound message", "to", to, "body", body)
		return nil
	}

	form := url.Values{}
	form.Set("From", c.cfg.FromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code == codeDailyLimitReached {
			c.logger.Warn("twilio daily message limit reached", "to", to)
			return common.NewAppError("TWILIO_LIMIT", "daily message limit reached", common.ErrUnreachable)
		}
		c.logger.Error("twilio rejected message", "status", resp.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
		return common.NewAppError("TWILIO_ERROR", fmt.Sprintf("status %d", resp.StatusCode), common.ErrInternal)
	}

	c.logger.Info("sent outbound message", "to", to, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
