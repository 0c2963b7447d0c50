package demo

import (
	"context"
	"testing"

	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

var species = []string{"Aloe", "Ficus", "Ivy", "Monstera", "Pothos", "Snake Plant", "Yucca"}

func TestClassify(t *testing.T) {
	d := New(species, 42)

	for run := 0; run < 50; run++ {
		preds, err := d.Classify(context.Background(), providers.Image{}, providers.Config{TopK: 5})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(preds) != 5 {
			t.Fatalf("Expected 5 predictions, got %d", len(preds))
		}

		seen := map[string]bool{}
		for i, p := range preds {
			if seen[p.Name] {
				t.Errorf("Duplicate label %s", p.Name)
			}
			seen[p.Name] = true
			if p.Confidence < 0.1 || p.Confidence > 0.95 {
				t.Errorf("Confidence %f out of band", p.Confidence)
			}
			if i > 0 && p.Confidence > preds[i-1].Confidence {
				t.Errorf("Predictions not ordered by confidence: %+v", preds)
			}
		}
		if preds[0].Confidence < 0.7 {
			t.Errorf("Expected top confidence >= 0.7, got %f", preds[0].Confidence)
		}
	}
}

func TestClassifyCapsTopK(t *testing.T) {
	d := New([]string{"Aloe", "Ivy"}, 1)
	preds, err := d.Classify(context.Background(), providers.Image{}, providers.Config{TopK: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 2 {
		t.Errorf("Expected 2 predictions, got %d", len(preds))
	}
}

func TestClassifyUsesConfigLabels(t *testing.T) {
	d := New(nil, 1)
	preds, err := d.Classify(context.Background(), providers.Image{}, providers.Config{TopK: 1, Labels: []string{"Yucca"}})
	if err != nil {
		t.Fatal(err)
	}
	if preds[0].Name != "Yucca" {
		t.Errorf("Expected Yucca, got %s", preds[0].Name)
	}

	if _, err := New(nil, 1).Classify(context.Background(), providers.Image{}, providers.Config{}); err == nil {
		t.Error("Expected error with no labels")
	}
}

func TestClassifyIsDeterministicForSeed(t *testing.T) {
	a, _ := New(species, 7).Classify(context.Background(), providers.Image{}, providers.Config{TopK: 3})
	b, _ := New(species, 7).Classify(context.Background(), providers.Image{}, providers.Config{TopK: 3})
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected identical draws for the same seed, got %+v and %+v", a, b)
		}
	}
}
