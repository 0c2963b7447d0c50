package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

type rawPrediction struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Species     string   `json:"species"`
	Confidence  *float64 `json:"confidence"`
	Score       *float64 `json:"score"`
	Probability *float64 `json:"probability"`
}

func (p rawPrediction) toPrediction() (models.Prediction, error) {
	name := firstNonEmpty(p.Name, p.Label, p.Species)
	if name == "" {
		return models.Prediction{}, fmt.Errorf("prediction has no label")
	}

	var confidence *float64
	for _, c := range []*float64{p.Confidence, p.Score, p.Probability} {
		if c != nil {
			confidence = c
			break
		}
	}
	if confidence == nil {
		return models.Prediction{}, fmt.Errorf("prediction %q has no confidence", name)
	}

	return models.Prediction{Name: name, Confidence: *confidence}, nil
}

// ParsePredictions decodes a ranked label list from a classifier response.
// It accepts {"predictions": [...]}, {"results": [...]} or a bare array,
// and tolerates markdown code fences around the JSON.
func ParsePredictions(response string) ([]models.Prediction, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	if response == "" {
		return nil, fmt.Errorf("empty classifier response")
	}

	var raw []rawPrediction
	if strings.HasPrefix(response, "[") {
		if err := json.Unmarshal([]byte(response), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse predictions: %w", err)
		}
	} else {
		var wrapped struct {
			Predictions []rawPrediction `json:"predictions"`
			Results     []rawPrediction `json:"results"`
		}
		if err := json.Unmarshal([]byte(response), &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse predictions: %w", err)
		}
		raw = wrapped.Predictions
		if len(raw) == 0 {
			raw = wrapped.Results
		}
	}

	predictions := make([]models.Prediction, 0, len(raw))
	for i, r := range raw {
		p, err := r.toPrediction()
		if err != nil {
			return nil, fmt.Errorf("invalid prediction at index %d: %w", i, err)
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
