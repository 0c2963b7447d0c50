package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/plantcare/internal/carelevel"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"status":  "Plant Recognition API is running!",
		"version": Version,
	})
}

// identify runs the gateway and treats an unresolved top label as success
func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (*models.Identification, *identification.NotFoundError, bool) {
	img, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, err)
		return nil, nil, false
	}

	ident, err := h.gateway.Identify(r.Context(), img)
	var notFound *identification.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		h.writeError(w, err)
		return nil, nil, false
	}
	return ident, notFound, true
}

func identificationJSON(ident *models.Identification) map[string]any {
	return map[string]any{
		"top_match":   ident.Predictions[0],
		"predictions": ident.Predictions,
	}
}

func (h *Handler) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	ident, _, ok := h.identify(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, map[string]any{
		"success":        true,
		"plant":          ident.Top,
		"predictions":    ident.Predictions,
		"identification": identificationJSON(ident),
		"mock":           ident.Mock,
		"provider":       ident.Provider,
		"message":        fmt.Sprintf("Found %d possible matches", len(ident.Predictions)),
	})
}

func (h *Handler) HandleIdentifyAndCare(w http.ResponseWriter, r *http.Request) {
	ident, notFound, ok := h.identify(w, r)
	if !ok {
		return
	}

	top := ident.Predictions[0]
	message := fmt.Sprintf("Identified as %s with %.1f%% confidence", top.Name, top.Confidence*100)
	response := map[string]any{
		"success":        true,
		"care_data":      nil,
		"care_levels":    nil,
		"identification": identificationJSON(ident),
		"mock":           ident.Mock,
		"provider":       ident.Provider,
	}
	if notFound != nil {
		message += ". " + identification.UserMessage(notFound)
	} else {
		rec := ident.Top.Record()
		response["care_data"] = rec
		response["care_levels"] = carelevel.ForRecord(rec)
	}
	response["message"] = message

	h.writeJSON(w, response)
}

func (h *Handler) HandleCare(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rec, err := h.resolver.Resolve(name)
	if err != nil {
		h.writeErrorMessage(w, http.StatusNotFound, identification.KindNotFound, "Care data not found for plant: "+name)
		return
	}

	h.writeJSON(w, map[string]any{
		"success":     true,
		"plant":       rec,
		"care_levels": carelevel.ForRecord(rec),
	})
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		h.writeError(w, &identification.ValidationError{Message: "Search term is required"})
		return
	}

	results := h.catalog.Search(term)
	if results == nil {
		results = []models.CareRecord{}
	}
	h.writeJSON(w, map[string]any{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	type plant struct {
		Name string `json:"name"`
		URL  string `json:"url,omitempty"`
	}

	records := h.catalog.Records()
	plants := make([]plant, 0, len(records))
	for _, rec := range records {
		plants = append(plants, plant{Name: rec.Name, URL: rec.URL})
	}

	h.writeJSON(w, map[string]any{
		"success": true,
		"plants":  plants,
		"count":   len(plants),
	})
}
