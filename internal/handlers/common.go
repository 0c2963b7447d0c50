package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/images"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
	"github.com/lehigh-university-libraries/plantcare/internal/selection"
	"github.com/lehigh-university-libraries/plantcare/internal/storage"
)

// Version is reported by the status endpoint
const Version = "1.0.0"

type Handler struct {
	gateway  *identification.Gateway
	catalog  *catalog.Catalog
	resolver *catalog.Resolver
	sessions *storage.SessionStore
	images   *images.Library
	uploads  *images.Uploads
}

func New(gateway *identification.Gateway, cat *catalog.Catalog, sessions *storage.SessionStore, lib *images.Library, uploads *images.Uploads) *Handler {
	return &Handler{
		gateway:  gateway,
		catalog:  cat,
		resolver: catalog.NewResolver(cat),
		sessions: sessions,
		images:   lib,
		uploads:  uploads,
	}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleStatus)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	mux.HandleFunc("POST /api/plants/identify", h.HandleIdentify)
	mux.HandleFunc("POST /api/plants/identify-and-care", h.HandleIdentifyAndCare)
	mux.HandleFunc("GET /api/plants/care/search", h.HandleSearch)
	mux.HandleFunc("GET /api/plants/care/{name}", h.HandleCare)
	mux.HandleFunc("GET /api/plants/list", h.HandleList)
	mux.HandleFunc("GET /api/images/plant/{name}", h.HandlePlantImage)
	mux.HandleFunc("POST /api/upload/image", h.HandleUploadImage)
	mux.HandleFunc("POST /api/upload/validate", h.HandleValidateUpload)
	mux.HandleFunc("POST /api/upload/cleanup", h.HandleCleanupUploads)

	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/identify", h.HandleSessionIdentify)
	mux.HandleFunc("POST /api/sessions/{id}/try-again", h.sessionAction(func(f *selection.Flow, r *http.Request) (selection.State, error) {
		return f.TryAgain()
	}))
	mux.HandleFunc("POST /api/sessions/{id}/select", h.sessionAction(selectAction))
	mux.HandleFunc("POST /api/sessions/{id}/back", h.sessionAction(func(f *selection.Flow, r *http.Request) (selection.State, error) {
		return f.Back()
	}))
	mux.HandleFunc("POST /api/sessions/{id}/retry", h.sessionAction(func(f *selection.Flow, r *http.Request) (selection.State, error) {
		return f.Retry()
	}))
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.sessionAction(func(f *selection.Flow, r *http.Request) (selection.State, error) {
		return f.Reset(), nil
	}))
	return mux
}

// CORS allows browser calls from the listed origins
func CORS(origins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(origins, origin) || slices.Contains(origins, "*")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

// writeError maps err to a status code and a user-facing message
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code, kind := statusFor(err)
	message := identification.UserMessage(err)
	if code == http.StatusConflict {
		message = err.Error()
	}

	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "kind", kind, "err", err)
	} else {
		slog.Debug("Request rejected", "kind", kind, "err", err)
	}
	h.writeErrorMessage(w, code, kind, message)
}

func (h *Handler) writeErrorMessage(w http.ResponseWriter, code int, kind, message string) {
	h.writeJSONStatus(w, code, map[string]any{
		"success": false,
		"error":   message,
		"kind":    kind,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, selection.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, selection.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, selection.ErrStale):
		return http.StatusConflict, "stale"
	}

	switch kind := identification.Kind(err); kind {
	case identification.KindValidation:
		return http.StatusBadRequest, kind
	case identification.KindNotFound:
		return http.StatusNotFound, kind
	case identification.KindGateway:
		return http.StatusBadGateway, kind
	default:
		return http.StatusInternalServerError, identification.KindUnknown
	}
}

// readUpload pulls the "image" form file out of a multipart request
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (providers.Image, error) {
	limit := h.gateway.MaxUploadBytes()
	tooLarge := &identification.ValidationError{Message: fmt.Sprintf("File too large. Maximum size is %dMB.", limit>>20)}

	// leave room for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return providers.Image{}, tooLarge
		}
		return providers.Image{}, &identification.ValidationError{Message: "No image file provided"}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return providers.Image{}, &identification.ValidationError{Message: "No image file provided"}
	}
	defer file.Close()

	if header.Filename == "" {
		return providers.Image{}, &identification.ValidationError{Message: "No file selected"}
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return providers.Image{}, &identification.UnknownError{Err: fmt.Errorf("failed to read upload: %w", err)}
	}
	if int64(len(data)) > limit {
		return providers.Image{}, tooLarge
	}

	return providers.Image{
		Data:     data,
		MIMEType: header.Header.Get("Content-Type"),
		Filename: header.Filename,
	}, nil
}
