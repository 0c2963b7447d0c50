package identification

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageInfo describes an upload that passed validation
type ImageInfo struct {
	Filename string `json:"original_name,omitempty"`
	Size     int    `json:"size"`
	MIMEType string `json:"mime_type"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ValidateImage checks size, extension, sniffed content type and the image
// header. Every failure is a *ValidationError.
func (g *Gateway) ValidateImage(data []byte, filename, declaredType string) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, &ValidationError{Message: "No image file provided"}
	}
	if int64(len(data)) > g.maxBytes {
		return ImageInfo{}, &ValidationError{
			Message: fmt.Sprintf("File too large. Maximum size is %dMB.", g.maxBytes>>20),
		}
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && !allowedExtensions[ext] {
		return ImageInfo{}, &ValidationError{Message: "Invalid file type. Please upload JPG, PNG, or WebP files."}
	}

	declaredType = strings.ToLower(strings.TrimSpace(strings.Split(declaredType, ";")[0]))
	if declaredType != "" && declaredType != "application/octet-stream" && !strings.HasPrefix(declaredType, "image/") {
		return ImageInfo{}, &ValidationError{Message: "Invalid image format. Please upload JPG, PNG, or WebP files."}
	}

	sniffed := http.DetectContentType(data)
	if !allowedContentTypes[sniffed] {
		return ImageInfo{}, &ValidationError{Message: "Invalid image format. Please upload JPG, PNG, or WebP files."}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, &ValidationError{Message: "Invalid image file or corrupted data"}
	}

	return ImageInfo{
		Filename: filename,
		Size:     len(data),
		MIMEType: sniffed,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
