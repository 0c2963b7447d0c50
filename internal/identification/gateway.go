// Package identification forwards uploaded photos to a plant classifier and
// hydrates the ranked labels with care records from the catalog.
package identification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

// DefaultMaxUploadBytes is the upload limit used when Options leaves it unset
const DefaultMaxUploadBytes = 10 << 20

// Options configures a Gateway
type Options struct {
	Model          string
	TopK           int
	Timeout        time.Duration
	MaxUploadBytes int64
	// Fallback replaces a failing classifier when set. Only wire it in
	// non-production setups; its output is flagged as mock.
	Fallback providers.Classifier
}

// Gateway is stateless apart from its collaborators and is safe for
// concurrent use
type Gateway struct {
	classifier providers.Classifier
	fallback   providers.Classifier
	resolver   *catalog.Resolver
	model      string
	topK       int
	timeout    time.Duration
	maxBytes   int64
}

// NewGateway creates a gateway around classifier and resolver
func NewGateway(classifier providers.Classifier, resolver *catalog.Resolver, opts Options) *Gateway {
	g := &Gateway{
		classifier: classifier,
		fallback:   opts.Fallback,
		resolver:   resolver,
		model:      opts.Model,
		topK:       opts.TopK,
		timeout:    opts.Timeout,
		maxBytes:   opts.MaxUploadBytes,
	}
	if g.topK <= 0 {
		g.topK = 5
	}
	if g.maxBytes <= 0 {
		g.maxBytes = DefaultMaxUploadBytes
	}
	return g
}

// Provider returns the primary classifier's name
func (g *Gateway) Provider() string {
	if g.classifier == nil {
		return ""
	}
	return g.classifier.Name()
}

// MaxUploadBytes returns the largest accepted image size
func (g *Gateway) MaxUploadBytes() int64 {
	return g.maxBytes
}

// Identify validates the image, runs one classifier round trip and hydrates
// the top prediction. When the top label has no care data the hydrated
// identification is returned together with a *NotFoundError, so callers can
// still offer the alternates.
func (g *Gateway) Identify(ctx context.Context, img providers.Image) (*models.Identification, error) {
	info, err := g.ValidateImage(img.Data, img.Filename, img.MIMEType)
	if err != nil {
		return nil, err
	}
	// classifiers get the sniffed type, not whatever the client declared
	img.MIMEType = info.MIMEType

	predictions, provider, mock, err := g.classify(ctx, img)
	if err != nil {
		return nil, err
	}

	ident := &models.Identification{
		Predictions: predictions,
		Mock:        mock,
		Provider:    provider,
		Model:       g.model,
	}

	top, err := g.Hydrate(predictions, 0)
	ident.Top = top
	if err != nil {
		slog.Info("Top prediction has no care data", "label", predictions[0].Name, "provider", provider)
		return ident, err
	}

	slog.Info("Plant identified",
		"label", top.Name,
		"catalog_name", top.CatalogName,
		"confidence", fmt.Sprintf("%.3f", top.Confidence),
		"provider", provider,
		"mock", mock)
	return ident, nil
}

// Hydrate builds the result for predictions[i], carrying the whole ranked
// list forward. An unresolved label returns the partially filled result
// with a *NotFoundError.
func (g *Gateway) Hydrate(predictions []models.Prediction, i int) (models.HydratedPlantResult, error) {
	if i < 0 || i >= len(predictions) {
		return models.HydratedPlantResult{}, &ValidationError{
			Message: fmt.Sprintf("Prediction index %d out of range (0-%d)", i, len(predictions)-1),
		}
	}

	pred := predictions[i]
	result := models.HydratedPlantResult{
		Name:        pred.Name,
		Confidence:  pred.Confidence,
		Predictions: append([]models.Prediction(nil), predictions...),
	}

	rec, err := g.resolver.Resolve(pred.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return result, &NotFoundError{Label: pred.Name}
		}
		return result, &UnknownError{Err: err}
	}

	result.CatalogName = rec.Name
	result.Care = rec.Care
	result.URL = rec.URL
	result.CareAvailable = true
	return result, nil
}

func (g *Gateway) classify(ctx context.Context, img providers.Image) ([]models.Prediction, string, bool, error) {
	if g.classifier == nil {
		return nil, "", false, &UnknownError{Err: errors.New("no classifier configured")}
	}

	predictions, err := g.call(ctx, g.classifier, img)
	if err == nil {
		return predictions, g.classifier.Name(), false, nil
	}

	gatewayErr := &GatewayError{Provider: g.classifier.Name(), Err: err}
	if g.fallback == nil || ctx.Err() != nil {
		slog.Error("Classification failed", "provider", g.classifier.Name(), "err", err)
		return nil, "", false, gatewayErr
	}

	slog.Warn("Classification failed, serving demo predictions", "provider", g.classifier.Name(), "err", err)
	predictions, fallbackErr := g.call(ctx, g.fallback, img)
	if fallbackErr != nil {
		slog.Error("Demo fallback failed", "err", fallbackErr)
		return nil, "", false, gatewayErr
	}
	return predictions, g.fallback.Name(), true, nil
}

func (g *Gateway) call(ctx context.Context, c providers.Classifier, img providers.Image) ([]models.Prediction, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	predictions, err := c.Classify(ctx, img, providers.Config{
		Model:  g.model,
		TopK:   g.topK,
		Labels: g.resolver.Catalog().Names(),
	})
	if err != nil {
		return nil, err
	}

	if err := checkPredictions(predictions); err != nil {
		return nil, err
	}
	if len(predictions) > g.topK {
		predictions = predictions[:g.topK]
	}
	return predictions, nil
}

func checkPredictions(predictions []models.Prediction) error {
	if len(predictions) == 0 {
		return errors.New("classifier returned no predictions")
	}
	for i, p := range predictions {
		if p.Name == "" {
			return fmt.Errorf("prediction %d has an empty label", i)
		}
		if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
			return fmt.Errorf("prediction %d has confidence %v outside [0,1]", i, p.Confidence)
		}
	}
	return nil
}
