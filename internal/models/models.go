package models

// CareInstructions holds the free-text care descriptions scraped for a plant.
// Any field may be empty; empty fields are omitted from JSON output.
type CareInstructions struct {
	LightRequirements   string `json:"light_requirements,omitempty" yaml:"light_requirements,omitempty"`
	WateringNeeds       string `json:"watering_needs,omitempty" yaml:"watering_needs,omitempty"`
	SoilPreferences     string `json:"soil_preferences,omitempty" yaml:"soil_preferences,omitempty"`
	TemperatureHumidity string `json:"temperature_humidity,omitempty" yaml:"temperature_humidity,omitempty"`
	Fertilization       string `json:"fertilization,omitempty" yaml:"fertilization,omitempty"`
	PruningMaintenance  string `json:"pruning_maintenance,omitempty" yaml:"pruning_maintenance,omitempty"`
}

// IsEmpty reports whether no care field is set.
func (c CareInstructions) IsEmpty() bool {
	return c == CareInstructions{}
}

// CareRecord is one entry of the care catalog, keyed by its canonical name
type CareRecord struct {
	Name string           `json:"name" yaml:"name"`
	Care CareInstructions `json:"care" yaml:"care"`
	URL  string           `json:"url,omitempty" yaml:"url,omitempty"`
}

// Prediction is a single ranked label returned by a classifier
type Prediction struct {
	Name       string  `json:"name" yaml:"name"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// HydratedPlantResult joins a prediction with its resolved care record.
// Name is the prediction's label as the classifier returned it; CatalogName
// is the canonical catalog key it resolved to, empty when unresolved.
// Predictions carries the full ranked list from the same request so another
// candidate can be picked without a second classifier call.
type HydratedPlantResult struct {
	Name                    string           `json:"name" yaml:"name"`
	CatalogName             string           `json:"catalog_name,omitempty" yaml:"catalog_name,omitempty"`
	Care                    CareInstructions `json:"care" yaml:"care"`
	URL                     string           `json:"url,omitempty" yaml:"url,omitempty"`
	Confidence              float64          `json:"confidence" yaml:"confidence"`
	CareAvailable           bool             `json:"care_available" yaml:"care_available"`
	Predictions             []Prediction     `json:"predictions" yaml:"predictions"`
	SelectedFromPredictions bool             `json:"selected_from_predictions" yaml:"selected_from_predictions"`
}

// DisplayName prefers the canonical catalog name over the raw label
func (r HydratedPlantResult) DisplayName() string {
	if r.CatalogName != "" {
		return r.CatalogName
	}
	return r.Name
}

// Record returns the care record view of a hydrated result.
func (r HydratedPlantResult) Record() CareRecord {
	return CareRecord{Name: r.DisplayName(), Care: r.Care, URL: r.URL}
}

// Identification is the outcome of one classification request
type Identification struct {
	Predictions []Prediction        `json:"predictions" yaml:"predictions"`
	Top         HydratedPlantResult `json:"top" yaml:"top"`
	Mock        bool                `json:"mock,omitempty" yaml:"mock,omitempty"`
	Provider    string              `json:"provider" yaml:"provider"`
	Model       string              `json:"model,omitempty" yaml:"model,omitempty"`
}
