package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrInvalidPort        = errors.New("PORT must be a number between 1 and 65535")
	ErrInvalidMaxTokens   = errors.New("MAX_TOKENS must be a positive number")
	ErrInvalidTemperature = errors.New("TEMPERATURE must be between 0 and 2")
	ErrInvalidMaxLength   = errors.New("MAX_LATEX_LENGTH must be a positive number")
)

// Config holds the global texai configuration, read from the environment.
type Config struct {
	Host string
	Port int

	OllamaBaseURL string
	OllamaModel   string

	Temperature float64
	MaxTokens   int

	// MaxLatexLength is the largest document (in bytes) accepted by the
	// chat/improve/analyze endpoints.
	MaxLatexLength int

	CORSOrigins []string

	DBPath string
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset. Call godotenv.Load first if a .env file
// should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		Host:          getEnv("HOST", "0.0.0.0"),
		OllamaBaseURL: strings.TrimSuffix(getEnv("OLLAMA_BASE_URL", "http://127.0.0.1:11434"), "/"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "gemma3:4b"),
	}

	port, err := intEnv("PORT", 8000)
	if err != nil || port < 1 || port > 65535 {
		return nil, ErrInvalidPort
	}
	cfg.Port = port

	cfg.MaxTokens, err = intEnv("MAX_TOKENS", 4000)
	if err != nil || cfg.MaxTokens <= 0 {
		return nil, ErrInvalidMaxTokens
	}

	cfg.Temperature, err = floatEnv("TEMPERATURE", 0.7)
	if err != nil || cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, ErrInvalidTemperature
	}

	cfg.MaxLatexLength, err = intEnv("MAX_LATEX_LENGTH", 50000)
	if err != nil || cfg.MaxLatexLength <= 0 {
		return nil, ErrInvalidMaxLength
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	} else {
		cfg.CORSOrigins = []string{
			"http://localhost:8080",
			"http://localhost:5173",
			"http://127.0.0.1:8080",
			"http://127.0.0.1:5173",
		}
	}

	cfg.DBPath = os.Getenv("TEXAI_DB_PATH")
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "texai.db")
	}

	return cfg, nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
