// Package carelevel turns free-text care instructions into 1-5 difficulty
// levels for chart display.
//
// The scores are a presentation heuristic, not a scientific rating. Each
// dimension has an ordered list of keyword rules and the first rule that
// matches decides the level, so reordering rules changes results.
package carelevel

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

// Dimension is one axis of plant care
type Dimension string

const (
	Light       Dimension = "light"
	Water       Dimension = "water"
	Soil        Dimension = "soil"
	Humidity    Dimension = "humidity"
	Fertilizer  Dimension = "fertilizer"
	Maintenance Dimension = "maintenance"
)

// Dimensions lists every dimension in display order
var Dimensions = []Dimension{Light, Water, Soil, Humidity, Fertilizer, Maintenance}

const (
	// NotAssessed is the level for a dimension with no care text
	NotAssessed = 0
	// DefaultLevel is used when text is present but no rule matches
	DefaultLevel = 3
)

// Levels holds the per-dimension levels of one care record and their aggregate
type Levels struct {
	Light       int `json:"light" yaml:"light"`
	Water       int `json:"water" yaml:"water"`
	Soil        int `json:"soil" yaml:"soil"`
	Humidity    int `json:"humidity" yaml:"humidity"`
	Fertilizer  int `json:"fertilizer" yaml:"fertilizer"`
	Maintenance int `json:"maintenance" yaml:"maintenance"`
	Overall     int `json:"overall" yaml:"overall"`
}

// Array returns the six dimension levels in Dimensions order
func (l Levels) Array() [6]int {
	return [6]int{l.Light, l.Water, l.Soil, l.Humidity, l.Fertilizer, l.Maintenance}
}

// Estimate scores text for one dimension. Empty text yields NotAssessed,
// text that matches no rule yields DefaultLevel.
func Estimate(text string, dim Dimension) int {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return NotAssessed
	}

	for _, r := range rulesFor[dim] {
		if r.match(text) {
			return r.level
		}
	}
	return DefaultLevel
}

// Aggregate buckets the mean of six levels into an overall 1-5 level.
// Unassessed dimensions count as zero and stay in the denominator.
func Aggregate(levels [6]int) int {
	sum := 0
	for _, l := range levels {
		sum += l
	}
	mean := float64(sum) / float64(len(levels))

	switch {
	case mean <= 1.8:
		return 1
	case mean <= 2.5:
		return 2
	case mean <= 3.3:
		return 3
	case mean <= 4.2:
		return 4
	default:
		return 5
	}
}

// ForRecord computes fresh levels for every dimension of a care record
func ForRecord(rec models.CareRecord) Levels {
	l := Levels{
		Light:       Estimate(Text(rec.Care, Light), Light),
		Water:       Estimate(Text(rec.Care, Water), Water),
		Soil:        Estimate(Text(rec.Care, Soil), Soil),
		Humidity:    Estimate(Text(rec.Care, Humidity), Humidity),
		Fertilizer:  Estimate(Text(rec.Care, Fertilizer), Fertilizer),
		Maintenance: Estimate(Text(rec.Care, Maintenance), Maintenance),
	}
	l.Overall = Aggregate(l.Array())
	return l
}

// Text returns the care field a dimension is scored from
func Text(care models.CareInstructions, dim Dimension) string {
	switch dim {
	case Light:
		return care.LightRequirements
	case Water:
		return care.WateringNeeds
	case Soil:
		return care.SoilPreferences
	case Humidity:
		return care.TemperatureHumidity
	case Fertilizer:
		return care.Fertilization
	case Maintenance:
		return care.PruningMaintenance
	default:
		return ""
	}
}

// ParseDimension maps a dimension name to a Dimension
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rulesFor[d]; !ok {
		return "", fmt.Errorf("unknown care dimension: %s", s)
	}
	return d, nil
}

// Label names a level for display
func Label(level int) string {
	switch level {
	case 1:
		return "Very Easy"
	case 2:
		return "Easy"
	case 3:
		return "Moderate"
	case 4:
		return "Challenging"
	case 5:
		return "Expert"
	default:
		return "Not Assessed"
	}
}
