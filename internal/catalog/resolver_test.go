package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

func TestResolveExactCanonicalNames(t *testing.T) {
	c := loadFixture(t)
	r := NewResolver(c)

	for _, name := range c.Names() {
		for _, variant := range []string{name, strings.ToUpper(name), strings.ToLower(name)} {
			rec, err := r.Resolve(variant)
			if err != nil {
				t.Errorf("Resolve(%q) returned error: %v", variant, err)
				continue
			}
			if rec.Name != name {
				t.Errorf("Resolve(%q) = %s, expected %s", variant, rec.Name, name)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(loadFixture(t))

	tests := []struct {
		label    string
		expected string
	}{
		{label: "snake_plant", expected: "Snake Plant"},
		{label: "  Peace-Lily ", expected: "Peace Lily"},
		{label: "golden pothos", expected: "Pothos"},
		{label: "bird of paradise (strelitzia)", expected: "Bird of Paradise"},
		{label: "paradise", expected: "Bird of Paradise"},
		{label: "zamioculcas zamiifolia", expected: "Zamioculcas Zamiifolia 'ZZ'"},
		{label: "Sansevieria", expected: "Snake Plant"},
		{label: "sansevieria trifasciata", expected: "Snake Plant"},
		{label: "ZZ", expected: "Zamioculcas Zamiifolia 'ZZ'"},
		{label: "zz plant", expected: "Zamioculcas Zamiifolia 'ZZ'"},
		{label: "Epipremnum aureum", expected: "Pothos"},
		{label: "devil's ivy", expected: "Ivy"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rec, err := r.Resolve(tt.label)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.label, err)
			}
			if rec.Name != tt.expected {
				t.Errorf("Resolve(%q) = %s, expected %s", tt.label, rec.Name, tt.expected)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(loadFixture(t))

	for _, label := range []string{"", "   ", "---", "orchid", "cactus", "li"} {
		t.Run(label, func(t *testing.T) {
			_, err := r.Resolve(label)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Resolve(%q) expected ErrNotFound, got %v", label, err)
			}
		})
	}
}

func TestResolveSubstringTieBreak(t *testing.T) {
	c, err := New([]models.CareRecord{
		{Name: "Variegated Monstera Deliciosa"},
		{Name: "Monstera Adansonii"},
		{Name: "Monstera Deliciosa"},
		{Name: "Monstera Obliqua"},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(c)

	rec, err := r.Resolve("monstera")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "Monstera Obliqua" {
		t.Errorf("Expected shortest match Monstera Obliqua, got %s", rec.Name)
	}

	rec, err = r.Resolve("deliciosa")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "Monstera Deliciosa" {
		t.Errorf("Expected Monstera Deliciosa, got %s", rec.Name)
	}

	// Equal lengths fall back to the lexicographically smaller name.
	c, err = New([]models.CareRecord{{Name: "Aloe Vera"}, {Name: "Aloe Aris"}})
	if err != nil {
		t.Fatal(err)
	}
	r = NewResolver(c)
	for i := 0; i < 20; i++ {
		rec, err := r.Resolve("aloe")
		if err != nil {
			t.Fatal(err)
		}
		if rec.Name != "Aloe Aris" {
			t.Fatalf("Expected Aloe Aris, got %s", rec.Name)
		}
	}
}

func TestResolveSynonymTargetMissing(t *testing.T) {
	c, err := New([]models.CareRecord{{Name: "Pothos"}})
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(c)

	if _, err := r.Resolve("sansevieria"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound when synonym target is absent, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Snake Plant", "snake plant"},
		{"  snake_plant  ", "snake plant"},
		{"Zamioculcas Zamiifolia 'ZZ'", "zamioculcas zamiifolia zz"},
		{"Devil’s Ivy", "devils ivy"},
		{"ＰＯＴＨＯＳ", "pothos"},
		{"bird-of-paradise", "bird of paradise"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewRejectsNamesResolverCannotSeparate(t *testing.T) {
	_, err := New([]models.CareRecord{
		{Name: "Snake-Plant", URL: "a"},
		{Name: "Snake Plant", URL: "b"},
	})
	if err == nil {
		t.Fatal("Expected error for names that normalize to the same key")
	}
}

func TestResolvePunctuatedCanonicalName(t *testing.T) {
	c, err := New([]models.CareRecord{
		{Name: "Snake-Plant", URL: "a"},
		{Name: "Bird of Paradise", URL: "b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(c)

	for _, label := range []string{"Snake-Plant", "snake plant", "SNAKE PLANT"} {
		rec, err := r.Resolve(label)
		if err != nil {
			t.Errorf("Resolve(%q) returned error: %v", label, err)
			continue
		}
		if rec.URL != "a" {
			t.Errorf("Resolve(%q) = %s (%s), expected Snake-Plant", label, rec.Name, rec.URL)
		}
	}
}
