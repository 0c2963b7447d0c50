package images

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFolderName(t *testing.T) {
	tests := map[string]string{
		"Snake Plant":       "snake_plant",
		" Bird of Paradise": "bird_of_paradise",
		"pothos":            "pothos",
	}
	for input, expected := range tests {
		if got := FolderName(input); got != expected {
			t.Errorf("Expected %q for %q, got %q", expected, input, got)
		}
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "snake_plant", "notes.txt"))
	writeFile(t, filepath.Join(dir, "snake_plant", "b.PNG"))
	writeFile(t, filepath.Join(dir, "snake_plant", "c.jpg"))
	writeFile(t, filepath.Join(dir, "pothos", "readme.md"))
	if err := os.MkdirAll(filepath.Join(dir, "peace_lily", "a.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	lib := NewLibrary(dir)

	path, err := lib.Find("Snake Plant")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if filepath.Base(path) != "b.PNG" {
		t.Errorf("Expected b.PNG, got %s", path)
	}
	if ContentType(path) != "image/png" {
		t.Errorf("Expected image/png, got %s", ContentType(path))
	}

	for _, name := range []string{"Pothos", "Peace Lily", "Monstera", "", "..", "../snake_plant"} {
		if _, err := lib.Find(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for %q, got %v", name, err)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("x.webp"); got != "image/webp" {
		t.Errorf("Expected image/webp, got %s", got)
	}
	if got := ContentType("x.bin"); got != "application/octet-stream" {
		t.Errorf("Expected application/octet-stream, got %s", got)
	}
}
