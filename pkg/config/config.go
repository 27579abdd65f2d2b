package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	OpenAI     OpenAIConfig
	Ollama     OllamaConfig
	Extraction ExtractionConfig
	Alerts     AlertsConfig
	Scoring    ScoringConfig
	RAG        RAGConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
	// AutoMigrate applies sql-migrate migrations at startup. Development
	// convenience only; production schema is managed in CI/CD.
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds the transcript archive (MinIO) configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// OpenAIConfig holds the remote AI provider configuration
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
	Dimensions int
}

// OllamaConfig holds the local AI provider configuration
type OllamaConfig struct {
	URL   string
	Model string
}

// ExtractionConfig tunes the insight extraction pipeline
type ExtractionConfig struct {
	Backend       string // "llm" or "rules"
	MinConfidence float64
	Timeout       time.Duration
}

// AlertsConfig tunes alert rule thresholds
type AlertsConfig struct {
	OverdueAfter       time.Duration
	AcknowledgeWithin  time.Duration
	RepeatedSimilarity float64
	RepeatedLookback   time.Duration
	CacheTTL           time.Duration
}

// ScoringConfig holds productivity score weights and classification cutoffs
type ScoringConfig struct {
	DecisionWeight      float64
	OwnedActionWeight   float64
	UnownedActionWeight float64
	ProductiveAt        float64
	NeedsFollowUpAt     float64
}

// RAGConfig tunes chunking and retrieval
type RAGConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	Synthesizer     string // default backend, "openai" or "ollama"; requests may override
	WeeklyWindow    int    // weeks covered by weekly metrics
	IndexConcurrent int    // parallel meetings during index-all
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "meeting_ledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),

			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-ledger"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			ChatModel:  getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			EmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
			Dimensions: getEnvAsInt("OPENAI_EMBED_DIMENSIONS", 1536),
		},
		Ollama: OllamaConfig{
			URL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model: getEnv("OLLAMA_MODEL", "llama3.1"),
		},
		Extraction: ExtractionConfig{
			Backend:       getEnv("EXTRACTION_BACKEND", "llm"),
			MinConfidence: getEnvAsFloat("EXTRACTION_MIN_CONFIDENCE", 0.05),
			Timeout:       getEnvAsDuration("EXTRACTION_TIMEOUT", "120s"),
		},
		Alerts: AlertsConfig{
			OverdueAfter:       getEnvAsDuration("ALERT_OVERDUE_AFTER", "168h"),
			AcknowledgeWithin:  getEnvAsDuration("ALERT_ACK_WITHIN", "48h"),
			RepeatedSimilarity: getEnvAsFloat("ALERT_REPEATED_SIMILARITY", 0.82),
			RepeatedLookback:   getEnvAsDuration("ALERT_REPEATED_LOOKBACK", "720h"),
			CacheTTL:           getEnvAsDuration("ALERT_CACHE_TTL", "5m"),
		},
		Scoring: ScoringConfig{
			DecisionWeight:      getEnvAsFloat("SCORE_DECISION_WEIGHT", 20),
			OwnedActionWeight:   getEnvAsFloat("SCORE_OWNED_ACTION_WEIGHT", 15),
			UnownedActionWeight: getEnvAsFloat("SCORE_UNOWNED_ACTION_WEIGHT", 5),
			ProductiveAt:        getEnvAsFloat("SCORE_PRODUCTIVE_AT", 40),
			NeedsFollowUpAt:     getEnvAsFloat("SCORE_NEEDS_FOLLOW_UP_AT", 15),
		},
		RAG: RAGConfig{
			ChunkSize:       getEnvAsInt("RAG_CHUNK_SIZE", 500),
			ChunkOverlap:    getEnvAsInt("RAG_CHUNK_OVERLAP", 50),
			TopK:            getEnvAsInt("RAG_TOP_K", 5),
			Synthesizer:     getEnv("RAG_SYNTHESIZER", "openai"),
			WeeklyWindow:    getEnvAsInt("METRICS_WEEKLY_WINDOW", 4),
			IndexConcurrent: getEnvAsInt("RAG_INDEX_CONCURRENCY", 4),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Extraction.Backend == "llm" && c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when EXTRACTION_BACKEND=llm")
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("RAG_CHUNK_OVERLAP must be smaller than RAG_CHUNK_SIZE")
	}
	if c.Extraction.MinConfidence < 0 || c.Extraction.MinConfidence > 1 {
		return fmt.Errorf("EXTRACTION_MIN_CONFIDENCE must be within [0, 1]")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
