// Package catalog holds the static plant care catalog and resolves
// free-text classifier labels onto its canonical names.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

// ErrNotFound is returned when a name or label has no catalog entry
var ErrNotFound = errors.New("plant not found in care catalog")

// Catalog is an immutable set of care records loaded once at startup.
// All accessors return copies, so it is safe for concurrent readers.
type Catalog struct {
	records []models.CareRecord
	byKey   map[string]int
}

// New builds a catalog from records, rejecting empty names and names that
// collide case-insensitively or after Normalize, since the resolver could
// not tell them apart.
func New(records []models.CareRecord) (*Catalog, error) {
	c := &Catalog{
		records: make([]models.CareRecord, 0, len(records)),
		byKey:   make(map[string]int, len(records)),
	}
	normalized := make(map[string]int, len(records))

	for i, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, fmt.Errorf("record %d has an empty name", i)
		}
		key := strings.ToLower(r.Name)
		if j, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate plant name %q (records %d and %d)", r.Name, j, i)
		}
		if norm := Normalize(r.Name); norm != "" {
			if j, exists := normalized[norm]; exists {
				return nil, fmt.Errorf("plant name %q is indistinguishable from %q (records %d and %d)",
					r.Name, c.records[j].Name, j, i)
			}
			normalized[norm] = len(c.records)
		}
		c.byKey[key] = len(c.records)
		c.records = append(c.records, r)
	}

	return c, nil
}

// Load reads a JSON array of care records from path
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open care catalog: %w", err)
	}
	defer file.Close()

	c, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load care catalog %s: %w", path, err)
	}

	slog.Info("Care catalog loaded", "path", path, "plants", c.Len())
	return c, nil
}

// Decode reads a JSON array of care records from r
func Decode(r io.Reader) (*Catalog, error) {
	var records []models.CareRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode care records: %w", err)
	}
	return New(records)
}

// Len returns the number of plants in the catalog
func (c *Catalog) Len() int {
	return len(c.records)
}

// Get looks up a record by exact, case-insensitive canonical name
func (c *Catalog) Get(name string) (models.CareRecord, bool) {
	i, ok := c.byKey[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.CareRecord{}, false
	}
	return c.records[i], true
}

// Names returns all canonical names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.records))
	for i, r := range c.records {
		names[i] = r.Name
	}
	return names
}

// Records returns a copy of every record in catalog order
func (c *Catalog) Records() []models.CareRecord {
	out := make([]models.CareRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Search returns records whose name or care text contains term,
// case-insensitively. Name matches come first, each group in catalog order.
func (c *Catalog) Search(term string) []models.CareRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	var byName, byCare []models.CareRecord
	for _, r := range c.records {
		switch {
		case strings.Contains(strings.ToLower(r.Name), term):
			byName = append(byName, r)
		case strings.Contains(strings.ToLower(careText(r.Care)), term):
			byCare = append(byCare, r)
		}
	}

	return append(byName, byCare...)
}

func careText(c models.CareInstructions) string {
	return strings.Join([]string{
		c.LightRequirements,
		c.WateringNeeds,
		c.SoilPreferences,
		c.TemperatureHumidity,
		c.Fertilization,
		c.PruningMaintenance,
	}, " ")
}
