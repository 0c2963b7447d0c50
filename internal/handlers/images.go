package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/plantcare/internal/images"
)

func (h *Handler) HandlePlantImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := h.images.Find(name)
	if err != nil {
		if errors.Is(err, images.ErrNotFound) {
			h.writeErrorMessage(w, http.StatusNotFound, "not_found", "No images found for "+name)
			return
		}
		slog.Error("Failed to look up plant image", "name", name, "err", err)
		h.writeErrorMessage(w, http.StatusInternalServerError, "unknown", "Error loading image for "+name)
		return
	}

	w.Header().Set("Content-Type", images.ContentType(path))
	http.ServeFile(w, r, path)
}
