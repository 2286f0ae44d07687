package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	JWTSecret        string
	SessionTTL       time.Duration
	StorageBucket    string
	StorageDir       string
	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	S3PublicBaseURL  string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	GenerationLimit  int
	QuestionsPerGen  int
	MaxContextChunks int
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A resolved value containing the literal
// "PLACEHOLDER" substring is treated as unset, so templated deployment
// files never leak into a running instance.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      lookupEnv("DATABASE_URL"),
		JWTSecret:        lookupEnv("JWT_SECRET"),
		SessionTTL:       time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)),
		StorageBucket:    getEnv("STORAGE_BUCKET", "fulldocs"),
		StorageDir:       lookupEnv("STORAGE_DIR"),
		S3Endpoint:       lookupEnv("S3_ENDPOINT"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:      lookupEnv("S3_ACCESS_KEY"),
		S3SecretKey:      lookupEnv("S3_SECRET_KEY"),
		S3PublicBaseURL:  lookupEnv("S3_PUBLIC_BASE_URL"),
		OpenAIAPIKey:     lookupEnv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4.1-nano"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GenerationLimit:  getEnvInt("GENERATION_LIMIT_PER_HOUR", 5),
		QuestionsPerGen:  getEnvInt("QUESTIONS_PER_GENERATION", 5),
		MaxContextChunks: getEnvInt("MAX_CONTEXT_CHUNKS", 20),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

// UseS3 reports whether the object store should be backed by S3. With no
// endpoint configured the filesystem store takes over (development).
func (c *Config) UseS3() bool {
	return c.S3Endpoint != ""
}

func lookupEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if strings.Contains(v, "PLACEHOLDER") {
		return ""
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := lookupEnv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := lookupEnv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := lookupEnv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
