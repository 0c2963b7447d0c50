// Package images serves reference photos stored as one folder per plant.
package images

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a plant has no folder or no image in it
var ErrNotFound = errors.New("no reference image found")

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Library looks up images under Dir/<folder>/ where folder is the plant
// name lower-cased with spaces replaced by underscores
type Library struct {
	Dir string
}

// NewLibrary creates a library rooted at dir
func NewLibrary(dir string) *Library {
	return &Library{Dir: dir}
}

// FolderName maps a plant name to its image folder
func FolderName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Find returns the path of the first image for name, in directory order
func (l *Library) Find(name string) (string, error) {
	folder := FolderName(name)
	if folder == "" || folder == "." || folder == ".." || strings.ContainsAny(folder, `/\`) {
		return "", fmt.Errorf("%w for %q", ErrNotFound, name)
	}

	entries, err := os.ReadDir(filepath.Join(l.Dir, folder))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w for %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to read image folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			return filepath.Join(l.Dir, folder, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNotFound, name)
}

// ContentType returns the MIME type for an image path by extension
func ContentType(path string) string {
	if t, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "application/octet-stream"
}
