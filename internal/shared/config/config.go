package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port             string
	CORSAllowOrigin  []string
	ObjectStoreType  string
	DocsDir          string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	DatabaseURL      string
	Env              string
	PDFServices      PDFServices
	ExtractRateLimit float64
	ExtractBurst     int
}

// PDFServices configures the remote extraction service client.
type PDFServices struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTPTimeout  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		DocsDir:         getEnv("DOCS_DIR", "./storage/docs"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:     dbURL,
		Env:             env,
		PDFServices: PDFServices{
			ClientID:     strings.TrimSpace(os.Getenv("PDF_SERVICES_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("PDF_SERVICES_CLIENT_SECRET")),
			BaseURL:      getEnv("PDF_SERVICES_BASE_URL", "https://pdf-services.adobe.io"),
			PollInterval: getSeconds("PDF_SERVICES_POLL_INTERVAL_SECONDS", 2*time.Second),
			PollTimeout:  getSeconds("PDF_SERVICES_POLL_TIMEOUT_SECONDS", 120*time.Second),
			HTTPTimeout:  getSeconds("PDF_SERVICES_HTTP_TIMEOUT_SECONDS", 60*time.Second),
		},
		ExtractRateLimit: getFloat("EXTRACT_RATE_PER_SECOND", 0.2),
		ExtractBurst:     getInt("EXTRACT_BURST", 3),
	}

	if cfg.PDFServices.ClientID == "" || cfg.PDFServices.ClientSecret == "" {
		log.Printf("PDF_SERVICES_CLIENT_ID / PDF_SERVICES_CLIENT_SECRET not set; TOC extraction will fail")
	}

	return cfg
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		log.Printf("config %s invalid seconds %q, using %s", key, raw, def)
		return def
	}
	return time.Duration(parsed * float64(time.Second))
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid number %q, using %v", key, raw, def)
		return def
	}
	return parsed
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
