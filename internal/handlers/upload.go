package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/plantcare/internal/identification"
)

// HandleUploadImage validates an image and keeps it in the upload folder
// until the client asks for it to be cleaned up
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	info, err := h.gateway.ValidateImage(img.Data, img.Filename, img.MIMEType)
	if err != nil {
		h.writeError(w, err)
		return
	}

	saved, err := h.uploads.Save(img.Data, img.Filename)
	if err != nil {
		slog.Error("Error uploading image", "filename", img.Filename, "err", err)
		h.writeErrorMessage(w, http.StatusInternalServerError, identification.KindUnknown, "Failed to upload image")
		return
	}

	h.writeJSON(w, map[string]any{
		"success": true,
		"file_info": map[string]any{
			"filename":      saved.Filename,
			"original_name": saved.OriginalName,
			"size":          saved.Size,
			"path":          saved.Path,
			"dimensions": map[string]any{
				"width":  info.Width,
				"height": info.Height,
				"format": info.Format,
			},
		},
		"message": "Image uploaded successfully",
	})
}

// HandleValidateUpload checks an image without classifying or storing it
func (h *Handler) HandleValidateUpload(w http.ResponseWriter, r *http.Request) {
	img, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	info, err := h.gateway.ValidateImage(img.Data, img.Filename, img.MIMEType)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, map[string]any{
		"success":   true,
		"valid":     true,
		"file_info": info,
		"message":   "Image is valid",
	})
}

// HandleCleanupUploads removes previously uploaded files. Names that point
// outside the upload folder are ignored.
func (h *Handler) HandleCleanupUploads(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Files == nil {
		h.writeError(w, &identification.ValidationError{Message: "No files specified for cleanup"})
		return
	}

	cleaned := h.uploads.Remove(request.Files)
	h.writeJSON(w, map[string]any{
		"success":       true,
		"files_cleaned": cleaned,
		"message":       fmt.Sprintf("Cleaned up %d temporary files", cleaned),
	})
}
