package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wellquest/questmap/internal/locator"
	"github.com/wellquest/questmap/internal/tracking"
	"github.com/wellquest/questmap/internal/wellquest"
)

type CreateQuestRequest struct {
	LocationID string `json:"locationId" required:"true"`
	// Exclusive replaces any in-flight quest instead of adding to them.
	Exclusive bool `json:"exclusive,omitempty"`
}

func handleCreateQuest(logger *slog.Logger, svc *locator.Service, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateQuestRequest
		if err := readJSON(r, &req); err != nil || req.LocationID == "" {
			writeError(w, http.StatusBadRequest, "locationId is required")
			return
		}

		s := sessionFrom(r)
		var from *wellquest.Position
		if pos, _, ok := s.Tracker.Position(); ok {
			from = &pos
		}

		q, err := svc.SynthesizeQuest(req.LocationID, from)
		if errors.Is(err, locator.ErrUnknownLocation) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		if err != nil {
			logger.Error("synthesizing quest", "session_id", s.ID, "location_id", req.LocationID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Persist before tracking so a completion always finds its quest row.
		if err := st.SaveQuest(r.Context(), s.ID, q); err != nil {
			logger.Error("saving quest", "session_id", s.ID, "quest_id", q.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		track := s.Tracker.Track
		if req.Exclusive {
			track = s.Tracker.Activate
		}
		if err := track(q); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}

		logger.Info("quest started", "session_id", s.ID, "quest_id", q.ID, "location_id", q.LocationID)
		writeJSON(w, http.StatusCreated, q)
	}
}

// handleListQuests lists the session's quests from the store, so completed
// quests survive a tracker restart.
func handleListQuests(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quests, err := st.ListQuests(r.Context(), sessionFrom(r).ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if quests == nil {
			quests = []wellquest.LocationQuest{}
		}
		writeJSON(w, http.StatusOK, quests)
	}
}

func handleGetQuest(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		id := chi.URLParam(r, "questID")

		if q, ok := s.Tracker.Quest(id); ok {
			writeJSON(w, http.StatusOK, q)
			return
		}

		// Not tracked any more: look in the session's history.
		quests, err := st.ListQuests(r.Context(), s.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for _, q := range quests {
			if q.ID == id {
				writeJSON(w, http.StatusOK, q)
				return
			}
		}
		writeError(w, http.StatusNotFound, "quest not found")
	}
}

func handleCompleteQuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := sessionFrom(r).Tracker.Complete(chi.URLParam(r, "questID"))
		switch {
		case errors.Is(err, tracking.ErrUnknownQuest):
			writeError(w, http.StatusNotFound, "quest not found")
		case errors.Is(err, tracking.ErrAlreadyCompleted):
			writeError(w, http.StatusConflict, "quest already completed")
		case errors.Is(err, tracking.ErrNoFix):
			writeError(w, http.StatusConflict, "no position fix yet")
		case errors.Is(err, tracking.ErrOutOfRange):
			writeError(w, http.StatusUnprocessableEntity, "not close enough to the location")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			writeJSON(w, http.StatusOK, c)
		}
	}
}

type CompletionsResponse struct {
	Completions []wellquest.Completion `json:"completions"`
	TotalXP     int                    `json:"totalXp"`
}

func handleListCompletions(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionFrom(r).ID

		completions, err := st.ListCompletions(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		xp, err := st.TotalXP(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if completions == nil {
			completions = []wellquest.Completion{}
		}
		writeJSON(w, http.StatusOK, CompletionsResponse{Completions: completions, TotalXP: xp})
	}
}
