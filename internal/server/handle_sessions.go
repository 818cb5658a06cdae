package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/locator"
)

type SessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func handleCreateSession(logger *slog.Logger, sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Create()
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "could not start tracking")
			return
		}
		logger.Info("session started", "session_id", s.ID)
		writeJSON(w, http.StatusCreated, SessionResponse{ID: s.ID, CreatedAt: s.CreatedAt})
	}
}

func handleDeleteSession(logger *slog.Logger, sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		if sessions.Remove(s.ID) {
			logger.Info("session stopped", "session_id", s.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleReportPosition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var report gps.Report
		if err := readJSON(r, &report); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := sessionFrom(r).Apply(report); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// PositionResponse is the tagged outcome of a position request.
type PositionResponse struct {
	locator.Fix
	Error string `json:"error,omitempty"`
}

func handleGetPosition(svc *locator.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fix, err := svc.FixFrom(r.Context(), sessionFrom(r).Feed)
		if err != nil {
			// Client went away.
			return
		}

		resp := PositionResponse{Fix: fix}
		if fix.Err != nil {
			resp.Error = fix.Err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type DistanceResponse struct {
	Meters float64 `json:"meters"`
}

func handleDistance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, DistanceResponse{Meters: sessionFrom(r).Tracker.Distance()})
	}
}
