// Package evaluation measures classifier accuracy over a folder of labelled
// plant photos and stores per-image results for later inspection.
package evaluation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Item is one labelled image
type Item struct {
	Label string
	Path  string
}

// Dataset is an image folder with one sub-directory per label
type Dataset struct {
	Dir    string
	Labels []string
	Items  []Item
}

// LoadDataset walks dir/<label>/*. perLabel > 0 keeps at most that many
// images per label. Labels and files are in directory order.
func LoadDataset(dir string, perLabel int) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	ds := &Dataset{Dir: dir}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		label := entry.Name()
		files, err := os.ReadDir(filepath.Join(dir, label))
		if err != nil {
			return nil, fmt.Errorf("failed to read label directory %s: %w", label, err)
		}

		count := 0
		for _, f := range files {
			if f.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			if perLabel > 0 && count >= perLabel {
				break
			}
			ds.Items = append(ds.Items, Item{Label: label, Path: filepath.Join(dir, label, f.Name())})
			count++
		}

		if count == 0 {
			slog.Warn("Label directory has no images", "label", label)
			continue
		}
		ds.Labels = append(ds.Labels, label)
	}

	if len(ds.Items) == 0 {
		return nil, fmt.Errorf("no images found under %s", dir)
	}
	return ds, nil
}

// LabelName turns a folder name such as snake_plant into a plant label
func LabelName(folder string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(folder, "_", " ")), " ")
}
