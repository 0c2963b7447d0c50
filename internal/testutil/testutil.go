// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

// PNG encodes a solid w x h PNG
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{G: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// Records is a small care catalog covering full, partial and empty records
func Records() []models.CareRecord {
	return []models.CareRecord{
		{
			Name: "Snake Plant",
			Care: models.CareInstructions{
				LightRequirements:   "Tolerates low light but grows faster in bright, indirect light.",
				WateringNeeds:       "Water sparingly and allow the soil to dry completely.",
				SoilPreferences:     "Use a well-draining cactus or succulent mix.",
				TemperatureHumidity: "Average household humidity is fine.",
				Fertilization:       "Feed once or twice a year.",
				PruningMaintenance:  "Minimal pruning; remove damaged leaves.",
			},
			URL: "https://www.houseplantresource.com/snake-plant",
		},
		{
			Name: "Pothos",
			Care: models.CareInstructions{
				LightRequirements: "Bright, indirect light.",
				WateringNeeds:     "Let the top inch of soil dry out between waterings.",
			},
		},
		{
			Name: "Peace Lily",
			Care: models.CareInstructions{
				WateringNeeds:       "Water consistently to keep soil evenly moist",
				TemperatureHumidity: "Prefers high humidity.",
			},
		},
		{Name: "Monstera"},
		{Name: "Zamioculcas Zamiifolia 'ZZ'"},
	}
}

// Catalog builds a catalog from Records
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(Records())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

// Classifier is a scriptable providers.Classifier
type Classifier struct {
	ProviderName string
	Predictions  []models.Prediction
	Err          error
	// Block, when set, is waited on before answering; closing it releases
	// every pending call.
	Block chan struct{}

	mu      sync.Mutex
	calls   int
	configs []providers.Config
}

// Name returns the provider name
func (c *Classifier) Name() string {
	if c.ProviderName == "" {
		return "fake"
	}
	return c.ProviderName
}

// Classify records the call and returns the scripted answer
func (c *Classifier) Classify(ctx context.Context, img providers.Image, config providers.Config) ([]models.Prediction, error) {
	c.mu.Lock()
	c.calls++
	c.configs = append(c.configs, config)
	block := c.Block
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return append([]models.Prediction(nil), c.Predictions...), nil
}

// Calls returns how many times Classify ran
func (c *Classifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastConfig returns the config of the most recent call
func (c *Classifier) LastConfig() providers.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.configs) == 0 {
		return providers.Config{}
	}
	return c.configs[len(c.configs)-1]
}

// FivePredictions is a ranked list whose labels all resolve against Records
func FivePredictions() []models.Prediction {
	return []models.Prediction{
		{Name: "sansevieria", Confidence: 0.82},
		{Name: "golden pothos", Confidence: 0.09},
		{Name: "peace lily", Confidence: 0.05},
		{Name: "monstera deliciosa", Confidence: 0.03},
		{Name: "zz plant", Confidence: 0.01},
	}
}
