package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geoglobe/worldquiz/internal/session"
	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

type CreateSessionRequest struct {
	Mode string `json:"mode"`
}

// SessionStateResponse mirrors session.State for clients. Question is null
// between rounds and after the session finishes.
type SessionStateResponse struct {
	SessionID        string        `json:"sessionId,omitempty"`
	Status           string        `json:"status"`
	Score            int           `json:"score"`
	LastScoreDelta   int           `json:"lastScoreDelta"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Question         *questionBody `json:"question"`
}

func sessionStateResponse(id string, st session.State) SessionStateResponse {
	resp := SessionStateResponse{
		SessionID:        id,
		Status:           string(st.Status),
		Score:            st.Score,
		LastScoreDelta:   st.LastScoreDelta,
		RemainingSeconds: st.RemainingSeconds,
	}
	if st.Question != nil {
		resp.Question = &questionBody{ID: st.Question.ID, Text: st.Question.QuestionText}
	}
	return resp
}

func handleCreateSession(logger *slog.Logger, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id, ctrl, err := sessions.Create(session.Mode(req.Mode))
		if err != nil {
			var verr *worldquiz.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Message)
				return
			}
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		writeJSON(w, http.StatusCreated, sessionStateResponse(id, ctrl.State()))
	}
}

func handleSessionState(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctrl, err := sessions.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeJSON(w, http.StatusOK, sessionStateResponse(id, ctrl.State()))
	}
}

type SelectCountryRequest struct {
	Country string `json:"country"`
}

func handleSelectCountry(logger *slog.Logger, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctrl, err := sessions.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}

		var req SelectCountryRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		st, err := ctrl.Select(r.Context(), req.Country)
		if err != nil {
			logger.Error("applying selection", "session_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify answer")
			return
		}
		writeJSON(w, http.StatusOK, sessionStateResponse(id, st))
	}
}

func handleClearSession(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := sessions.Clear(id); err != nil {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
