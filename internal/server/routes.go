package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/wellquest/questmap/internal/handler/track"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps, sessions *Registry, broker *Broker) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("WellQuest API", "/openapi.json", "/docs"))

	r.Route("/api/locations", func(r chi.Router) {
		r.Get("/", handleNearbyLocations(deps.Locator, deps.SearchRadiusMeters))
		r.Get("/{id}", handleLocation(deps.Locator))
	})

	r.Post("/api/sessions", handleCreateSession(logger, sessions))

	// Session routes, {sessionID} resolved by sessionMiddleware.
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionMiddleware(sessions))
		r.Delete("/", handleDeleteSession(logger, sessions))
		r.Post("/position", handleReportPosition())
		r.Get("/position", handleGetPosition(deps.Locator))
		r.Post("/quests", handleCreateQuest(logger, deps.Locator, deps.Store))
		r.Get("/quests", handleListQuests(deps.Store))
		r.Get("/quests/{questID}", handleGetQuest(deps.Store))
		r.Post("/quests/{questID}/complete", handleCompleteQuest())
		r.Get("/completions", handleListCompletions(deps.Store))
		r.Get("/distance", handleDistance())
		r.Get("/events", handleEvents(broker))
	})

	r.Mount("/ws", track.NewHandler(logger, func(id string) (track.Session, bool) {
		s, err := sessions.Get(id)
		if err != nil {
			return nil, false
		}
		return s, true
	}).Routes())
}
