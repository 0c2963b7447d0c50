package carelevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		dim      Dimension
		expected int
	}{
		{"consistently moist", "Water consistently to keep soil evenly moist", Water, 4},
		{"sparingly", "Water sparingly in winter.", Water, 1},
		{"drought tolerant", "Drought-tolerant once established.", Water, 1},
		{"top inch", "Water when the top inch of soil is dry.", Water, 2},
		{"sensitive to drought", "Very sensitive to drought.", Water, 5},
		{"water default", "Water weekly.", Water, DefaultLevel},
		{"water empty", "", Water, NotAssessed},
		{"water whitespace", "   ", Water, NotAssessed},
		{"moist before sparingly", "Keep consistently moist; water sparingly in winter.", Water, 4},
		{"low light wins over bright", "Tolerates low light but prefers bright, indirect light.", Light, 1},
		{"bright indirect", "Bright, indirect light.", Light, 3},
		{"shade before full sun", "Full sun to partial shade.", Light, 1},
		{"direct sun", "Needs direct sun.", Light, 4},
		{"grow light", "Thrives under a grow light.", Light, 5},
		{"cactus mix", "Use a well-draining cactus mix.", Soil, 2},
		{"orchid bark", "Chunky mix with orchid bark.", Soil, 4},
		{"standard potting", "Any potting mix works.", Soil, 1},
		{"average humidity", "Average household humidity is fine.", Humidity, 2},
		{"high humidity", "Prefers high humidity.", Humidity, 4},
		{"humidifier", "Use a humidifier in winter.", Humidity, 5},
		{"biweekly before weekly", "Feed biweekly in spring.", Fertilizer, 4},
		{"weekly", "Feed weekly.", Fertilizer, 5},
		{"monthly", "Fertilize monthly during the growing season.", Fertilizer, 3},
		{"once a year", "Feed once or twice a year.", Fertilizer, 1},
		{"minimal pruning", "Minimal pruning; remove damaged leaves.", Maintenance, 1},
		{"wipe leaves", "Wipe leaves to remove dust.", Maintenance, 2},
		{"regular pruning", "Benefits from regular pruning.", Maintenance, 4},
		{"case insensitive", "WATER SPARINGLY", Water, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Estimate(tt.text, tt.dim))
		})
	}
}

func TestEstimateIsPure(t *testing.T) {
	text := "Water consistently to keep soil evenly moist"
	first := Estimate(text, Water)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Estimate(text, Water))
	}
}

func TestEstimateMissingTextForEveryDimension(t *testing.T) {
	for _, dim := range Dimensions {
		assert.Equal(t, NotAssessed, Estimate("", dim), "dimension %s", dim)
	}
}

func TestEstimateUnknownDimension(t *testing.T) {
	assert.Equal(t, DefaultLevel, Estimate("anything", Dimension("sunshine")))
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		levels   [6]int
		expected int
	}{
		{[6]int{1, 1, 1, 1, 1, 1}, 1},
		{[6]int{5, 5, 5, 5, 5, 5}, 5},
		{[6]int{0, 0, 0, 0, 0, 0}, 1},
		{[6]int{2, 2, 2, 2, 1, 1}, 1}, // 1.67
		{[6]int{2, 2, 2, 2, 2, 1}, 2}, // 1.83
		{[6]int{3, 3, 3, 2, 2, 2}, 2}, // 2.5
		{[6]int{3, 3, 3, 3, 2, 2}, 3}, // 2.67
		{[6]int{4, 3, 3, 3, 3, 3}, 3}, // 3.17
		{[6]int{4, 4, 3, 3, 3, 3}, 4}, // 3.33
		{[6]int{5, 4, 4, 4, 4, 4}, 4}, // 4.17
		{[6]int{5, 5, 4, 4, 4, 4}, 5}, // 4.33
		{[6]int{4, 4, 4, 4, 4, 0}, 4}, // 3.33, missing text still divides by six
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Aggregate(tt.levels), "levels %v", tt.levels)
	}
}

func TestAggregateIsMonotonic(t *testing.T) {
	var levels [6]int
	var walk func(pos int)
	walk = func(pos int) {
		if pos == len(levels) {
			base := Aggregate(levels)
			for i := range levels {
				if levels[i] == 5 {
					continue
				}
				raised := levels
				raised[i]++
				if got := Aggregate(raised); got < base {
					t.Fatalf("Aggregate decreased from %d to %d raising index %d of %v", base, got, i, levels)
				}
			}
			return
		}
		for l := 0; l <= 5; l++ {
			levels[pos] = l
			walk(pos + 1)
		}
	}
	walk(0)
}

func TestForRecord(t *testing.T) {
	rec := models.CareRecord{
		Name: "Snake Plant",
		Care: models.CareInstructions{
			LightRequirements:   "Tolerates low light but grows faster in bright, indirect light.",
			WateringNeeds:       "Water sparingly and allow the soil to dry completely.",
			SoilPreferences:     "Use a well-draining cactus or succulent mix.",
			TemperatureHumidity: "Average household humidity is fine.",
			Fertilization:       "Feed once or twice a year.",
			PruningMaintenance:  "Minimal pruning; remove damaged leaves.",
		},
	}

	levels := ForRecord(rec)
	assert.Equal(t, Levels{
		Light:       1,
		Water:       1,
		Soil:        2,
		Humidity:    2,
		Fertilizer:  1,
		Maintenance: 1,
		Overall:     1,
	}, levels)

	partial := ForRecord(models.CareRecord{
		Name: "Peace Lily",
		Care: models.CareInstructions{WateringNeeds: "Water consistently to keep soil evenly moist"},
	})
	assert.Equal(t, 4, partial.Water)
	assert.Equal(t, NotAssessed, partial.Light)
	assert.Equal(t, 1, partial.Overall)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension(" Water ")
	require.NoError(t, err)
	assert.Equal(t, Water, d)

	_, err = ParseDimension("sunshine")
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Very Easy", Label(1))
	assert.Equal(t, "Expert", Label(5))
	assert.Equal(t, "Not Assessed", Label(0))
}
