package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type StorageConfig struct {
	MaxFileSize int64
	MaxCVCount  int
}

// PipelineConfig carries the tunables of the matching pipeline. Every
// value is passed into the component constructors explicitly.
type PipelineConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	EmbeddingDimension int
	UpsertBatchSize    int
	AnalysisMaxChars   int
	SemanticMaxChars   int
	AnalysisTimeout    time.Duration
	RetryMaxAttempts   int
	Weights            WeightsConfig
}

// WeightsConfig holds the five ranking weights. They must sum to 1.0;
// Validate enforces this at startup.
type WeightsConfig struct {
	SkillMatch float64
	Experience float64
	ToolTech   float64
	Seniority  float64
	Semantic   float64
}

func (w WeightsConfig) Sum() float64 {
	return w.SkillMatch + w.Experience + w.ToolTech + w.Seniority + w.Semantic
}

func (w WeightsConfig) Validate() error {
	const epsilon = 1e-9
	if diff := w.Sum() - 1.0; diff > epsilon || diff < -epsilon {
		return fmt.Errorf("ranking weights must sum to 1.0, got %v", w.Sum())
	}
	return nil
}

type SessionConfig struct {
	BaseDir       string
	MaxAge        time.Duration
	SweepInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_ranker"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "cv_ranker_docs"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxCVCount:  getEnvAsInt("MAX_CV_COUNT", 50),
		},
		Pipeline: PipelineConfig{
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			UpsertBatchSize:    getEnvAsInt("UPSERT_BATCH_SIZE", 100),
			AnalysisMaxChars:   getEnvAsInt("ANALYSIS_MAX_CHARS", 15000),
			SemanticMaxChars:   getEnvAsInt("SEMANTIC_MAX_CHARS", 8000),
			AnalysisTimeout:    getEnvAsDuration("ANALYSIS_TIMEOUT", "60s"),
			RetryMaxAttempts:   getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			Weights: WeightsConfig{
				SkillMatch: getEnvAsFloat("WEIGHT_SKILL_MATCH", 0.40),
				Experience: getEnvAsFloat("WEIGHT_EXPERIENCE", 0.25),
				ToolTech:   getEnvAsFloat("WEIGHT_TOOL_TECH", 0.20),
				Seniority:  getEnvAsFloat("WEIGHT_SENIORITY", 0.10),
				Semantic:   getEnvAsFloat("WEIGHT_SEMANTIC", 0.05),
			},
		},
		Session: SessionConfig{
			BaseDir:       getEnv("SESSION_DIR", "./temp_sessions"),
			MaxAge:        getEnvAsDuration("SESSION_MAX_AGE", "24h"),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", "1h"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
