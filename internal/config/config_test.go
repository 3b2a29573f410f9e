package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("RECORDS_MAX", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := Load()
	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, ":3000")
	}
	if cfg.RecordsMax != 1000 {
		t.Errorf("RecordsMax = %d, want 1000", cfg.RecordsMax)
	}
	if cfg.LLMProvider != ProviderGemini {
		t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, ProviderGemini)
	}
	if cfg.LLMRetryDelay != 10*time.Second {
		t.Errorf("LLMRetryDelay = %v, want 10s", cfg.LLMRetryDelay)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RECORDS_MAX", "25")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")

	cfg := Load()
	if cfg.RecordsMax != 25 {
		t.Errorf("RecordsMax = %d, want 25", cfg.RecordsMax)
	}
	if cfg.SearchTimeout != 3*time.Second {
		t.Errorf("SearchTimeout = %v, want 3s", cfg.SearchTimeout)
	}
	if cfg.RateLimitMax != 60 {
		t.Errorf("RateLimitMax = %d, want fallback 60", cfg.RateLimitMax)
	}
}

func TestValidateProcessing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"all keys", Config{LLMProvider: ProviderGemini, GeminiAPIKey: "g", SerperAPIKey: "s"}, nil},
		{"missing serper", Config{LLMProvider: ProviderGemini, GeminiAPIKey: "g"}, ErrMissingSerperKey},
		{"missing gemini", Config{LLMProvider: ProviderGemini, SerperAPIKey: "s"}, ErrMissingLLMKey},
		{"anthropic uses its own key", Config{LLMProvider: ProviderAnthropic, GeminiAPIKey: "g", SerperAPIKey: "s"}, ErrMissingLLMKey},
		{"anthropic configured", Config{LLMProvider: ProviderAnthropic, AnthropicAPIKey: "a", SerperAPIKey: "s"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateProcessing()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProcessing() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadYAMLConfigFrom(t *testing.T) {
	t.Run("missing file is optional", func(t *testing.T) {
		cfg, err := LoadYAMLConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("LoadYAMLConfigFrom() error = %v", err)
		}
		if cfg != nil {
			t.Errorf("expected nil config, got %+v", cfg)
		}
		if cfg.PDFTitleDenylist() != nil || cfg.DefaultCampaign() != "" {
			t.Error("nil config accessors should return zero values")
		}
	})

	t.Run("parses lists and defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "search:\n  pdf_title_denylist:\n    - thesis\n    - dissertation\n  default_filters: [reddit, quora]\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadYAMLConfigFrom(path)
		if err != nil {
			t.Fatalf("LoadYAMLConfigFrom() error = %v", err)
		}
		if got := cfg.PDFTitleDenylist(); len(got) != 2 || got[0] != "thesis" {
			t.Errorf("PDFTitleDenylist() = %v", got)
		}
		if got := cfg.DefaultFilters(); len(got) != 2 || got[1] != "quora" {
			t.Errorf("DefaultFilters() = %v", got)
		}
		if got := cfg.DefaultCampaign(); got != "community_outreach" {
			t.Errorf("DefaultCampaign() = %q, want community_outreach", got)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("search: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadYAMLConfigFrom(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}
