package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"facturabot/internal/common"
	"facturabot/internal/llm"
)

func fakeOllama(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if stream, _ := req["stream"].(bool); stream {
			t.Error("client must not request streaming")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": response,
			"done":     true,
		})
	}))
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     string
	}{
		{"exact label", "facturar", "facturar"},
		{"padded answer", "  Consultar.\n", "consultar"},
		{"unrecognized coerced to otro", "no tengo idea", "otro"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := fakeOllama(t, tc.response)
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL, Model: "test"}, nil)
			got := c.ClassifyIntent(context.Background(), "facturar 2 licencias a rfc xaxx010101000")
			if got.Status != llm.StatusOK {
				t.Fatalf("status = %v", got.Status)
			}
			if got.Label != tc.want {
				t.Errorf("label = %q, want %q", got.Label, tc.want)
			}
		})
	}
}

func TestGenerateCarriesTemperature(t *testing.T) {
	var gotTemp float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if opts, ok := req["options"].(map[string]any); ok {
			gotTemp, _ = opts["temperature"].(float64)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "facturar", "done": true})
	}))
	defer srv.Close()

	// The field must accept the loaded configuration's value as-is.
	cfg := common.LoadConfig()
	c := NewClient(Config{BaseURL: srv.URL, Model: "test", Temperature: cfg.LLM.Temperature}, nil)
	c.ClassifyIntent(context.Background(), "facturar 2 licencias")
	if float32(gotTemp) != cfg.LLM.Temperature {
		t.Errorf("temperature = %v, want %v", gotTemp, cfg.LLM.Temperature)
	}
}

func TestClassifyIntentEmptyTextSkipsModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("model must not be called for empty text")
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	got := c.ClassifyIntent(context.Background(), "   ")
	if got.Status != llm.StatusOK || got.Label != "otro" {
		t.Errorf("got %+v, want otro", got)
	}
}

func TestClassifyIntentServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, so the call fails

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	got := c.ClassifyIntent(context.Background(), "facturar algo")
	if got.Status != llm.StatusUnavailable {
		t.Errorf("status = %v, want unavailable", got.Status)
	}
}

func TestExtractInvoiceFields(t *testing.T) {
	srv := fakeOllama(t, "```json\n{\"rfc\":\"xaxx010101000\",\"productos\":[{\"nombre\":\"licencias\",\"cantidad\":2}]}\n```")
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	got := c.ExtractInvoiceFields(context.Background(), "quiero 2 licencias, mi rfc es xaxx010101000")
	if got.Status != llm.StatusOK {
		t.Fatalf("status = %v", got.Status)
	}
	if got.Fields.RFC != "XAXX010101000" {
		t.Errorf("rfc = %q", got.Fields.RFC)
	}
	if len(got.Fields.Products) != 1 || got.Fields.Products[0].Name != "licencias" || got.Fields.Products[0].Quantity != 2 {
		t.Errorf("products = %+v", got.Fields.Products)
	}
}

func TestExtractInvoiceFieldsMalformed(t *testing.T) {
	for _, response := range []string{
		"no puedo generar ese JSON",
		`{"productos": "ninguno"}`,
		`{"rfc": 12345}`,
	} {
		srv := fakeOllama(t, response)
		c := NewClient(Config{BaseURL: srv.URL}, nil)
		got := c.ExtractInvoiceFields(context.Background(), "mensaje")
		srv.Close()
		if got.Status != llm.StatusMalformed {
			t.Errorf("response %q: status = %v, want malformed", response, got.Status)
		}
	}
}

func TestExtractInvoiceFieldsServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	got := c.ExtractInvoiceFields(context.Background(), "mensaje")
	if got.Status != llm.StatusUnavailable {
		t.Errorf("status = %v, want unavailable", got.Status)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{}, nil)
	if c.cfg.BaseURL != "http://localhost:11434" {
		t.Errorf("base url = %q", c.cfg.BaseURL)
	}
	if c.cfg.Model == "" {
		t.Error("model default missing")
	}
	if c.cfg.Timeout <= 0 {
		t.Error("timeout default missing")
	}
}
