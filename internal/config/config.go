// Package config reads service settings from the environment. A .env file,
// when present, is loaded into the environment by the root command first.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the service reads at startup
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	CatalogPath string
	ImagesDir   string
	UploadsDir  string

	Provider          string
	ClassifierURL     string
	ClassifierAPIKey  string
	ClassifierModel   string
	ClassifierTimeout time.Duration
	TopK              int
	DemoFallback      bool

	MaxUploadBytes int64
	SessionTTL     time.Duration
	CORSOrigins    []string

	GeminiAPIKey  string
	OllamaURL     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset
func Load() (*Config, error) {
	c := &Config{
		Port:             getenv("PORT", "8000"),
		Environment:      strings.ToLower(getenv("PLANTCARE_ENV", "development")),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		CatalogPath:      getenv("PLANTCARE_CATALOG", "plant_care_data.json"),
		ImagesDir:        getenv("PLANTCARE_IMAGES_DIR", "plant_images"),
		UploadsDir:       getenv("PLANTCARE_UPLOADS_DIR", "uploads"),
		Provider:         strings.ToLower(getenv("CLASSIFIER_PROVIDER", "hosted")),
		ClassifierURL:    os.Getenv("CLASSIFIER_URL"),
		ClassifierAPIKey: os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierModel:  os.Getenv("CLASSIFIER_MODEL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OllamaURL:        os.Getenv("OLLAMA_URL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		CORSOrigins:      splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
	}
	if c.OllamaURL == "" {
		c.OllamaURL = getenv("OLLAMA_HOST", "http://localhost:11434")
	}

	var err error
	if c.ClassifierTimeout, err = durationEnv("CLASSIFIER_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if c.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if c.TopK, err = intEnv("CLASSIFIER_TOP_K", 5); err != nil {
		return nil, err
	}
	if c.DemoFallback, err = boolEnv("DEMO_FALLBACK", true); err != nil {
		return nil, err
	}
	maxMB, err := intEnv("MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	c.MaxUploadBytes = int64(maxMB) << 20

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks settings that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Provider {
	case "hosted", "gemini", "ollama", "openai", "demo":
	default:
		return fmt.Errorf("unsupported classifier provider: %s", c.Provider)
	}
	if c.Provider == "demo" && c.IsProduction() {
		return fmt.Errorf("the demo classifier cannot be used in production")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("CLASSIFIER_TOP_K must be positive, got %d", c.TopK)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// FallbackEnabled reports whether classifier failures may be replaced by
// demo predictions. Never true in production.
func (c *Config) FallbackEnabled() bool {
	return c.DemoFallback && !c.IsProduction()
}

// Model returns the configured model or the provider's default
func (c *Config) Model() string {
	if c.ClassifierModel != "" {
		return c.ClassifierModel
	}
	switch c.Provider {
	case "gemini":
		return getenv("GEMINI_MODEL", "gemini-1.5-flash")
	case "ollama":
		return getenv("OLLAMA_MODEL", "llava")
	case "openai":
		return getenv("OPENAI_MODEL", "gpt-4o-mini")
	default:
		return ""
	}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name onto a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
