package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.OllamaBaseURL != "http://127.0.0.1:11434" {
		t.Errorf("OllamaBaseURL = %q", cfg.OllamaBaseURL)
	}
	if cfg.OllamaModel != "gemma3:4b" {
		t.Errorf("OllamaModel = %q", cfg.OllamaModel)
	}
	if cfg.MaxTokens != 4000 {
		t.Errorf("MaxTokens = %d, want 4000", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.MaxLatexLength != 50000 {
		t.Errorf("MaxLatexLength = %d, want 50000", cfg.MaxLatexLength)
	}
	if len(cfg.CORSOrigins) != 4 {
		t.Errorf("CORSOrigins = %v, want 4 defaults", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OLLAMA_BASE_URL", "http://10.0.0.5:11434/")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("MAX_LATEX_LENGTH", "1234")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.OllamaBaseURL != "http://10.0.0.5:11434" {
		t.Errorf("OllamaBaseURL = %q, want trailing slash trimmed", cfg.OllamaBaseURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.MaxLatexLength != 1234 {
		t.Errorf("MaxLatexLength = %d, want 1234", cfg.MaxLatexLength)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "notaport")
		if _, err := Load(); err != ErrInvalidPort {
			t.Errorf("err = %v, want ErrInvalidPort", err)
		}
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		if _, err := Load(); err != ErrInvalidPort {
			t.Errorf("err = %v, want ErrInvalidPort", err)
		}
	})

	t.Run("negative max tokens", func(t *testing.T) {
		t.Setenv("MAX_TOKENS", "-5")
		if _, err := Load(); err != ErrInvalidMaxTokens {
			t.Errorf("err = %v, want ErrInvalidMaxTokens", err)
		}
	})

	t.Run("temperature too high", func(t *testing.T) {
		t.Setenv("TEMPERATURE", "3.5")
		if _, err := Load(); err != ErrInvalidTemperature {
			t.Errorf("err = %v, want ErrInvalidTemperature", err)
		}
	})
}
