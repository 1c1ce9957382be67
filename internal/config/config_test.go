package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("REDDIT_USER_AGENT", "persona-test/0.1")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.PeopleTimeout != 15*time.Second {
		t.Fatalf("expected people timeout 15s, got %s", cfg.PeopleTimeout)
	}
	if cfg.TopicMinClusterSize != 5 || cfg.TopicMaxFeatures != 3000 {
		t.Fatalf("unexpected topic defaults: %d/%d", cfg.TopicMinClusterSize, cfg.TopicMaxFeatures)
	}
	if cfg.EnrichmentEnabled() {
		t.Fatalf("expected enrichment disabled without PEOPLE_API_KEY")
	}
	if cfg.LLMProvider != "gemini" || cfg.LLMModel != "gemini-2.5-flash" {
		t.Fatalf("expected gemini/gemini-2.5-flash defaults, got %s/%s", cfg.LLMProvider, cfg.LLMModel)
	}
}

func TestLoadConfigMissingLLMKey(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when LLM_API_KEY is empty")
	}
}

func TestLoadConfigEnrichmentKey(t *testing.T) {
	setRequired(t)
	t.Setenv("PEOPLE_API_KEY", "pdl")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.EnrichmentEnabled() {
		t.Fatalf("expected enrichment enabled")
	}
}
