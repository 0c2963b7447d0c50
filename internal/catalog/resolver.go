package catalog

import (
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

// minSubstringLen is the shortest label allowed to match inside a longer
// canonical name. Shorter labels still match exactly or through synonyms.
const minSubstringLen = 3

// DefaultSynonyms maps common and botanical names, normalized, to the
// catalog phrase they stand for.
var DefaultSynonyms = map[string]string{
	"sansevieria":           "snake plant",
	"dracaena trifasciata":  "snake plant",
	"mother in laws tongue": "snake plant",
	"zz":                    "zamioculcas",
	"zz plant":              "zamioculcas",
	"zanzibar gem":          "zamioculcas",
	"epipremnum":            "pothos",
	"spathiphyllum":         "peace lily",
	"pachira":               "money tree",
	"strelitzia":            "bird of paradise",
	"aglaonema":             "chinese evergreen",
	"prayer plant":          "maranta",
	"polka dot plant":       "hypoestes",
	"umbrella plant":        "schefflera",
	"umbrella tree":         "schefflera",
	"euphorbia pulcherrima": "poinsettia",
	"hedera":                "ivy",
	"swiss cheese plant":    "monstera",
	"dumb cane":             "dieffenbachia",
	"flamingo flower":       "anthurium",
	"elephant ear":          "alocasia",
}

type synonym struct {
	alias  string
	target string
}

// Resolver maps classifier labels onto catalog records
type Resolver struct {
	catalog  *Catalog
	names    []string // normalized canonical names, catalog order
	synonyms []synonym
}

// NewResolver creates a resolver using DefaultSynonyms
func NewResolver(c *Catalog) *Resolver {
	return NewResolverWithSynonyms(c, DefaultSynonyms)
}

// NewResolverWithSynonyms creates a resolver with a custom synonym table.
// Keys and values are normalized before use.
func NewResolverWithSynonyms(c *Catalog, table map[string]string) *Resolver {
	r := &Resolver{
		catalog: c,
		names:   make([]string, len(c.records)),
	}
	for i, rec := range c.records {
		r.names[i] = Normalize(rec.Name)
	}

	for alias, target := range table {
		alias, target = Normalize(alias), Normalize(target)
		if alias == "" || target == "" {
			continue
		}
		r.synonyms = append(r.synonyms, synonym{alias: alias, target: target})
	}
	// Longer aliases first so "zz plant" is tried before "zz".
	sort.Slice(r.synonyms, func(i, j int) bool {
		a, b := r.synonyms[i].alias, r.synonyms[j].alias
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return r
}

// Catalog returns the catalog the resolver reads from
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve finds the care record for a raw classifier label. Matching runs
// exact, then substring in either direction, then the synonym table; the
// first step with a hit wins. Substring ties go to the shortest canonical
// name, then the lexicographically smaller one.
func (r *Resolver) Resolve(rawLabel string) (models.CareRecord, error) {
	if rec, ok := r.catalog.Get(rawLabel); ok {
		return rec, nil
	}

	label := Normalize(rawLabel)
	if label == "" {
		return models.CareRecord{}, ErrNotFound
	}

	for i, name := range r.names {
		if name == label {
			return r.catalog.records[i], nil
		}
	}

	if i := r.bestMatch(func(name string) bool {
		if strings.Contains(label, name) {
			return true
		}
		return len(label) >= minSubstringLen && strings.Contains(name, label)
	}); i >= 0 {
		return r.catalog.records[i], nil
	}

	for _, syn := range r.synonyms {
		if label != syn.alias && !containsWords(label, syn.alias) {
			continue
		}
		if i := r.bestMatch(func(name string) bool {
			return name == syn.target || containsWords(name, syn.target)
		}); i >= 0 {
			return r.catalog.records[i], nil
		}
	}

	return models.CareRecord{}, ErrNotFound
}

// bestMatch returns the index of the shortest normalized name accepted by
// match, or -1.
func (r *Resolver) bestMatch(match func(name string) bool) int {
	best := -1
	for i, name := range r.names {
		if name == "" || !match(name) {
			continue
		}
		if best < 0 || len(name) < len(r.names[best]) ||
			(len(name) == len(r.names[best]) && name < r.names[best]) {
			best = i
		}
	}
	return best
}
