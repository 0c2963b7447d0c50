package identification

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/config"
	"github.com/lehigh-university-libraries/plantcare/internal/demo"
	"github.com/lehigh-university-libraries/plantcare/internal/gemini"
	"github.com/lehigh-university-libraries/plantcare/internal/hosted"
	"github.com/lehigh-university-libraries/plantcare/internal/ollama"
	"github.com/lehigh-university-libraries/plantcare/internal/openai"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

// NewClassifier returns the classifier selected by cfg.Provider
func NewClassifier(cfg *config.Config, labels []string) (providers.Classifier, error) {
	switch cfg.Provider {
	case "hosted":
		return hosted.New(cfg.ClassifierURL, cfg.ClassifierAPIKey), nil
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case "demo":
		if cfg.IsProduction() {
			return nil, fmt.Errorf("the demo classifier cannot be used in production")
		}
		return demo.New(labels, uint64(time.Now().UnixNano())), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// NewFromConfig wires a gateway for cfg over the given catalog
func NewFromConfig(cfg *config.Config, cat *catalog.Catalog) (*Gateway, error) {
	classifier, err := NewClassifier(cfg, cat.Names())
	if err != nil {
		return nil, err
	}

	opts := Options{
		Model:          cfg.Model(),
		TopK:           cfg.TopK,
		Timeout:        cfg.ClassifierTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.FallbackEnabled() && cfg.Provider != "demo" {
		opts.Fallback = demo.New(cat.Names(), uint64(time.Now().UnixNano()))
		slog.Warn("Demo fallback enabled; classifier failures will be answered with mock predictions")
	}

	slog.Info("Classification gateway ready",
		"provider", classifier.Name(),
		"model", opts.Model,
		"top_k", opts.TopK,
		"timeout", opts.Timeout,
		"production", cfg.IsProduction())

	return NewGateway(classifier, catalog.NewResolver(cat), opts), nil
}
