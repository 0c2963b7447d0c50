package providers

import (
	"context"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

// Image is an uploaded photo handed to a classifier
type Image struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Config represents the configuration for a single classification call
type Config struct {
	Model       string
	TopK        int
	Temperature float64
	// Labels lists the species the caller can hydrate. Prompt-driven
	// providers use it to steer the model toward catalog names.
	Labels []string
}

// Classifier defines the interface for a hosted plant classifier. It
// returns labels ranked by confidence, highest first.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, img Image, config Config) ([]models.Prediction, error)
}
