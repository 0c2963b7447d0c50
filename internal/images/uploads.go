package images

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Uploads keeps user uploads as flat files under Dir
type Uploads struct {
	Dir string
}

// Upload describes a file written by Save
type Upload struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int    `json:"size"`
	Path         string `json:"path"`
}

func NewUploads(dir string) *Uploads {
	return &Uploads{Dir: dir}
}

// SafeFilename reduces name to its base with only ASCII letters, digits,
// dots, dashes and underscores. Leading and trailing dots and underscores
// are dropped, so the result never names a parent or hidden file.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = name[strings.LastIndex(name, "/")+1:]

	ascii, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), name)
	if err != nil {
		ascii = name
	}

	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(ascii), "_") {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// Save writes data under a uuid-prefixed safe version of filename
func (u *Uploads) Save(data []byte, filename string) (Upload, error) {
	safe := SafeFilename(filename)
	if safe == "" {
		safe = "image"
	}

	if err := os.MkdirAll(u.Dir, 0755); err != nil {
		return Upload{}, fmt.Errorf("failed to create upload folder: %w", err)
	}

	stored := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + safe
	path := filepath.Join(u.Dir, stored)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Upload{}, fmt.Errorf("failed to save image: %w", err)
	}

	slog.Info("Image saved", "filename", stored, "size", len(data))
	return Upload{Filename: stored, OriginalName: safe, Size: len(data), Path: path}, nil
}

// Remove deletes the named files from the upload folder and returns how
// many were removed. Only bare safe filenames are accepted; anything with a
// path component is skipped, as are missing files and directories.
func (u *Uploads) Remove(names []string) int {
	root, err := filepath.Abs(u.Dir)
	if err != nil {
		slog.Warn("Could not resolve upload folder", "dir", u.Dir, "err", err)
		return 0
	}

	removed := 0
	for _, name := range names {
		path, ok := u.within(root, name)
		if !ok {
			slog.Warn("Refusing to clean file outside upload folder", "file", name)
			continue
		}

		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Could not clean file", "file", name, "err", err)
			continue
		}
		removed++
	}
	return removed
}

func (u *Uploads) within(root, name string) (string, bool) {
	safe := SafeFilename(name)
	if safe == "" || safe != name {
		return "", false
	}
	path := filepath.Join(root, safe)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel != safe {
		return "", false
	}
	return path, true
}
