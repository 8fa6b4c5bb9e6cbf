package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	TemplateDir string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	ExportBaseURL   string

	DatabaseURL string

	GitHubAPIURL   string
	VercelAPIURL   string
	VercelToken    string
	PublishBranch  string
	PublishTimeout time.Duration

	SummaryEnhancer string
	OpenAIAPIKey    string
	LLMModel        string

	RateLimitDeployPerMin int
	RateLimitUploadPerMin int
	MaxUploadBytes        int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience. Variables
	// already set in the process environment win.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL not set; deployment history is kept in memory")
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   env,
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		TemplateDir:           getEnv("TEMPLATE_DIR", ""),
		ObjectStoreType:       normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:         getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:             getEnv("AWS_REGION", ""),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		S3Prefix:              getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:           getEnv("SSE_KMS_KEY_ID", ""),
		ExportBaseURL:         strings.TrimRight(getEnv("EXPORT_BASE_URL", ""), "/"),
		DatabaseURL:           dbURL,
		GitHubAPIURL:          getEnv("GITHUB_API_URL", ""),
		VercelAPIURL:          getEnv("VERCEL_API_URL", "https://api.vercel.com"),
		VercelToken:           getEnv("VERCEL_TOKEN", ""),
		PublishBranch:         getEnv("PUBLISH_BRANCH", "main"),
		PublishTimeout:        time.Duration(getEnvInt("PUBLISH_TIMEOUT_SECONDS", 30)) * time.Second,
		SummaryEnhancer:       normalizeEnhancer(getEnv("SUMMARY_ENHANCER", "placeholder")),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		LLMModel:              getEnv("LLM_MODEL", "gpt-4o-mini"),
		RateLimitDeployPerMin: getEnvInt("RATE_LIMIT_DEPLOY_PER_MIN", 5),
		RateLimitUploadPerMin: getEnvInt("RATE_LIMIT_UPLOAD_PER_MIN", 20),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("env file %s ignored: %v", path, err)
		}
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeEnhancer(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "placeholder"
	}
}
