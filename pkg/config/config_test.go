package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Backend "rules" so the loader does not insist on an API key.
	t.Setenv("EXTRACTION_BACKEND", "rules")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("default port: got %s", cfg.Server.Port)
	}
	if cfg.Database.AutoMigrate {
		t.Error("auto-migrate must default to off")
	}
	if cfg.Extraction.Timeout != 120*time.Second {
		t.Errorf("default extraction timeout: got %v", cfg.Extraction.Timeout)
	}
	if cfg.Alerts.OverdueAfter != 168*time.Hour || cfg.Alerts.AcknowledgeWithin != 48*time.Hour {
		t.Errorf("default alert thresholds: %+v", cfg.Alerts)
	}
	if cfg.Scoring.DecisionWeight != 20 || cfg.Scoring.OwnedActionWeight != 15 || cfg.Scoring.UnownedActionWeight != 5 {
		t.Errorf("default score weights: %+v", cfg.Scoring)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 || cfg.RAG.TopK != 5 {
		t.Errorf("default RAG tuning: %+v", cfg.RAG)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_BACKEND", "rules")
	t.Setenv("RAG_CHUNK_SIZE", "200")
	t.Setenv("RAG_CHUNK_OVERLAP", "20")
	t.Setenv("ALERT_OVERDUE_AFTER", "24h")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RAG.ChunkSize != 200 || cfg.RAG.ChunkOverlap != 20 {
		t.Errorf("RAG overrides not applied: %+v", cfg.RAG)
	}
	if cfg.Alerts.OverdueAfter != 24*time.Hour {
		t.Errorf("overdue override not applied: %v", cfg.Alerts.OverdueAfter)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("auto-migrate override not applied")
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("EXTRACTION_BACKEND", "rules")
	t.Setenv("ALERT_ACK_WITHIN", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Alerts.AcknowledgeWithin != 48*time.Hour {
		t.Errorf("bad duration should fall back to default, got %v", cfg.Alerts.AcknowledgeWithin)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Extraction: ExtractionConfig{Backend: "rules", MinConfidence: 0.1},
			RAG:        RAGConfig{ChunkSize: 500, ChunkOverlap: 50},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := base()
	c.Extraction.Backend = "llm"
	if err := c.Validate(); err == nil {
		t.Error("llm backend without an API key must be rejected")
	}

	c = base()
	c.RAG.ChunkOverlap = 500
	if err := c.Validate(); err == nil {
		t.Error("overlap >= chunk size must be rejected")
	}

	c = base()
	c.Extraction.MinConfidence = 1.5
	if err := c.Validate(); err == nil {
		t.Error("confidence threshold outside [0, 1] must be rejected")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	c := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5433", User: "app", Password: "secret", Name: "ledger", SSLMode: "require",
	}}
	want := "host=db port=5433 user=app password=secret dbname=ledger sslmode=require"
	if got := c.GetDatabaseDSN(); got != want {
		t.Errorf("dsn mismatch:\n got %s\nwant %s", got, want)
	}
}
