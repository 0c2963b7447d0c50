package providers

import (
	"fmt"
	"strings"
)

// BuildPrompt generates the instruction sent to vision LLM providers
func BuildPrompt(config Config) string {
	topK := config.TopK
	if topK <= 0 {
		topK = 5
	}

	var known string
	if len(config.Labels) > 0 {
		known = fmt.Sprintf(`
Prefer these species names when one of them fits, spelled exactly as listed:
%s
`, "- "+strings.Join(config.Labels, "\n- "))
	}

	return fmt.Sprintf(`You are an expert botanist who identifies house plants from photos.

Identify the plant in the image and return the %d most likely species, most likely first.
%s
Respond with ONLY a JSON object in the following format:

{
  "predictions": [
    {"name": "Snake Plant", "confidence": 0.87},
    {"name": "ZZ Plant", "confidence": 0.06}
  ]
}

Confidence values must be between 0 and 1 and must not increase down the list.`, topK, known)
}
