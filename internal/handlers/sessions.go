package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/selection"
)

type sessionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"session_id"`
	selection.State
}

func (h *Handler) writeSession(w http.ResponseWriter, code int, id string, state selection.State) {
	h.writeJSONStatus(w, code, sessionResponse{Success: true, ID: id, State: state})
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, id string) (*selection.Flow, bool) {
	flow, exists := h.sessions.Get(id)
	if !exists {
		h.writeErrorMessage(w, http.StatusNotFound, "not_found", "Session not found")
		return nil, false
	}
	return flow, true
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	flow := selection.New(h.gateway)
	id := h.sessions.Create(flow)
	h.writeSession(w, http.StatusCreated, id, flow.Snapshot())
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	flow, ok := h.getSessionOrError(w, id)
	if !ok {
		return
	}
	h.writeSession(w, http.StatusOK, id, flow.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.getSessionOrError(w, id); !ok {
		return
	}
	h.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSessionIdentify submits an upload to the session's flow. With
// ?async=true it answers 202 right away and the outcome is read back with GET.
func (h *Handler) HandleSessionIdentify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	flow, ok := h.getSessionOrError(w, id)
	if !ok {
		return
	}

	img, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Reject bad uploads up front so the flow never enters Error for them
	if _, err := h.gateway.ValidateImage(img.Data, img.Filename, img.MIMEType); err != nil {
		h.writeError(w, err)
		return
	}

	if r.URL.Query().Get("async") == "true" {
		done := flow.Start(context.WithoutCancel(r.Context()), img)
		select {
		case err := <-done:
			// refused before any work started
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeSession(w, http.StatusOK, id, flow.Snapshot())
		default:
			h.writeSession(w, http.StatusAccepted, id, flow.Snapshot())
		}
		return
	}

	state, err := flow.Submit(r.Context(), img)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, http.StatusOK, id, state)
}

func selectAction(f *selection.Flow, r *http.Request) (selection.State, error) {
	var request struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Index == nil {
		return f.Snapshot(), &identification.ValidationError{Message: "index is required"}
	}
	return f.Select(*request.Index)
}

func (h *Handler) sessionAction(action func(*selection.Flow, *http.Request) (selection.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		flow, ok := h.getSessionOrError(w, id)
		if !ok {
			return
		}

		state, err := action(flow, r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeSession(w, http.StatusOK, id, state)
	}
}
