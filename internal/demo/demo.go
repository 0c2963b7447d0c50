// Package demo provides a stand-in classifier for development setups with
// no hosted model. Its predictions are random draws from the known species
// and must never be served in production.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

// Demo returns randomly drawn predictions with plausible confidence bands
type Demo struct {
	mu     sync.Mutex
	rng    *rand.Rand
	labels []string
}

// New creates a demo classifier drawing from labels. When labels is empty
// the classifier falls back to the labels in each call's Config.
func New(labels []string, seed uint64) *Demo {
	return &Demo{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		labels: append([]string(nil), labels...),
	}
}

// Name returns the provider name
func (d *Demo) Name() string { return "demo" }

// Classify ignores the image and draws TopK distinct labels
func (d *Demo) Classify(ctx context.Context, img providers.Image, config providers.Config) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels := d.labels
	if len(labels) == 0 {
		labels = config.Labels
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("demo classifier has no species to draw from")
	}

	topK := config.TopK
	if topK <= 0 {
		topK = 5
	}
	if topK > len(labels) {
		topK = len(labels)
	}

	d.mu.Lock()
	order := d.rng.Perm(len(labels))
	predictions := make([]models.Prediction, topK)
	for i := 0; i < topK; i++ {
		predictions[i] = models.Prediction{
			Name:       labels[order[i]],
			Confidence: d.confidence(i),
		}
	}
	d.mu.Unlock()

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})

	return predictions, nil
}

// confidence draws from a band that narrows down the ranking:
// 0.70-0.95 for the first pick, 0.40-0.70 for the second, 0.10-0.40 after.
func (d *Demo) confidence(rank int) float64 {
	switch rank {
	case 0:
		return 0.7 + d.rng.Float64()*0.25
	case 1:
		return 0.4 + d.rng.Float64()*0.3
	default:
		return 0.1 + d.rng.Float64()*0.3
	}
}
