package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/handler/health"
	"github.com/wellquest/questmap/internal/wellquest"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type nearbyQuery struct {
	Lat    *float64 `query:"lat" description:"Latitude in decimal degrees. Omit lat and lon to list every location."`
	Lon    *float64 `query:"lon" description:"Longitude in decimal degrees."`
	Radius *float64 `query:"radius" description:"Search radius in meters. Defaults to the configured search radius."`
}

type locationPath struct {
	ID string `path:"id"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type questPath struct {
	SessionID string `path:"sessionID"`
	QuestID   string `path:"questID"`
}

type createQuestInput struct {
	sessionPath
	CreateQuestRequest
}

type reportInput struct {
	sessionPath
	gps.Report
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "WellQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Location-proximity quests: nearby wellness locations, live position tracking and quest completion.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/locations
	listLocations, _ := r.NewOperationContext(http.MethodGet, "/api/locations")
	listLocations.SetSummary("Nearby locations")
	listLocations.SetDescription("Locations within radius of lat/lon, nearest first, with discovery state.")
	listLocations.AddReqStructure(nearbyQuery{})
	listLocations.AddRespStructure([]wellquest.NearbyLocation{}, openapi.WithHTTPStatus(http.StatusOK))
	listLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(listLocations)

	// GET /api/locations/{id}
	getLocation, _ := r.NewOperationContext(http.MethodGet, "/api/locations/{id}")
	getLocation.SetSummary("Get location")
	getLocation.AddReqStructure(locationPath{})
	getLocation.AddRespStructure(wellquest.MagicalLocation{}, openapi.WithHTTPStatus(http.StatusOK))
	getLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLocation)

	// POST /api/sessions
	createSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	createSession.SetSummary("Start tracking session")
	createSession.SetDescription("Creates a position feed and starts watching it for quest arrivals.")
	createSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(createSession)

	// DELETE /api/sessions/{sessionID}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{sessionID}")
	deleteSession.SetSummary("Stop tracking session")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// POST /api/sessions/{sessionID}/position
	postPosition, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/position")
	postPosition.SetSummary("Report position")
	postPosition.SetDescription("Pushes a device fix, or an error code when the device could not produce one.")
	postPosition.AddReqStructure(reportInput{})
	postPosition.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusAccepted))
	postPosition.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postPosition.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postPosition)

	// GET /api/sessions/{sessionID}/position
	getPosition, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/position")
	getPosition.SetSummary("Current position")
	getPosition.SetDescription("Tagged fix. When the device cannot report, status says why and substituted marks a fallback position.")
	getPosition.AddReqStructure(sessionPath{})
	getPosition.AddRespStructure(PositionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getPosition.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPosition)

	// POST /api/sessions/{sessionID}/quests
	postQuest, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/quests")
	postQuest.SetSummary("Start quest")
	postQuest.SetDescription("Synthesizes a quest for the location and tracks it until the device arrives.")
	postQuest.AddReqStructure(createQuestInput{})
	postQuest.AddRespStructure(wellquest.LocationQuest{}, openapi.WithHTTPStatus(http.StatusCreated))
	postQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postQuest)

	// GET /api/sessions/{sessionID}/quests
	listQuests, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/quests")
	listQuests.SetSummary("List quests")
	listQuests.AddReqStructure(sessionPath{})
	listQuests.AddRespStructure([]wellquest.LocationQuest{}, openapi.WithHTTPStatus(http.StatusOK))
	listQuests.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listQuests)

	// GET /api/sessions/{sessionID}/quests/{questID}
	getQuest, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/quests/{questID}")
	getQuest.SetSummary("Get quest")
	getQuest.AddReqStructure(questPath{})
	getQuest.AddRespStructure(wellquest.LocationQuest{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getQuest)

	// POST /api/sessions/{sessionID}/quests/{questID}/complete
	completeQuest, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/quests/{questID}/complete")
	completeQuest.SetSummary("Complete quest")
	completeQuest.SetDescription("Completes the quest against the latest fix. The proximity threshold still applies.")
	completeQuest.AddReqStructure(questPath{})
	completeQuest.AddRespStructure(wellquest.Completion{}, openapi.WithHTTPStatus(http.StatusOK))
	completeQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	completeQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	completeQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(completeQuest)

	// GET /api/sessions/{sessionID}/completions
	listCompletions, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/completions")
	listCompletions.SetSummary("List completions")
	listCompletions.AddReqStructure(sessionPath{})
	listCompletions.AddRespStructure(CompletionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	listCompletions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listCompletions)

	// GET /api/sessions/{sessionID}/distance
	getDistance, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/distance")
	getDistance.SetSummary("Walking distance")
	getDistance.AddReqStructure(sessionPath{})
	getDistance.AddRespStructure(DistanceResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getDistance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getDistance)

	// GET /api/sessions/{sessionID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events with the session's position and completion events.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(Event{}, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/sessions/{sessionID}
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/sessions/{sessionID}")
	getWS.SetSummary("Tracking WebSocket")
	getWS.SetDescription("Client frames are position reports. Server frames are session events, or an error frame for a rejected report.")
	getWS.AddReqStructure(sessionPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
	getWS.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
