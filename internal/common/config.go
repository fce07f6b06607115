package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	LLM      LLMConfig
	Twilio   TwilioConfig
	Docs     DocsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr    string
	BaseURL string
}

// LLMConfig holds configuration for the Ollama backend
type LLMConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// TwilioConfig holds WhatsApp messaging configuration
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	TestMode   bool
	Timeout    time.Duration
}

// DocsConfig holds invoice document generation configuration
type DocsConfig struct {
	OutputDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "file:facturabot.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr:    getEnv("HTTP_ADDR", ":5000"),
			BaseURL: getEnv("BASE_URL", "http://localhost:5000"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:       getEnv("LLM_MODEL", "llama2:7b"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
			TestMode:   getEnvAsBool("TEST_MODE", false),
			Timeout:    getEnvAsDuration("TWILIO_TIMEOUT", 10*time.Second),
		},
		Docs: DocsConfig{
			OutputDir: getEnv("DOCS_OUTPUT_DIR", "./static/facturas"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "LLM_MODEL is required", ErrInvalidInput)
	}
	if !c.Twilio.TestMode {
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" {
			return NewAppError("CONFIG_ERROR", "TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required outside TEST_MODE", ErrInvalidInput)
		}
		if c.Twilio.FromNumber == "" {
			return NewAppError("CONFIG_ERROR", "TWILIO_WHATSAPP_NUMBER is required outside TEST_MODE", ErrInvalidInput)
		}
	}
	return nil
}
