package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse documents the /healthz body.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "WorldQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the WorldQuiz globe game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/countries
	getCountries, _ := r.NewOperationContext(http.MethodGet, "/api/countries")
	getCountries.SetSummary("List countries")
	getCountries.SetDescription("Returns the country reference dataset as globe features. Served from cache.")
	getCountries.AddRespStructure([]CountryFeature{}, openapi.WithHTTPStatus(http.StatusOK))
	getCountries.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getCountries)

	// GET /api/countries/enriched
	getEnriched, _ := r.NewOperationContext(http.MethodGet, "/api/countries/enriched")
	getEnriched.SetSummary("List countries with travel facts")
	getEnriched.SetDescription("Returns the flat country dataset including souvenirs and traditional cuisine.")
	getEnriched.AddRespStructure([]EnrichedCountry{}, openapi.WithHTTPStatus(http.StatusOK))
	getEnriched.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getEnriched)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Returns the top players ordered by best score, oldest entry first on ties.")
	getBoard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getBoard)

	// POST /api/players
	postPlayers, _ := r.NewOperationContext(http.MethodPost, "/api/players")
	postPlayers.SetSummary("Submit score")
	postPlayers.SetDescription("Claims a leaderboard name or updates a personal best. The password set on first submission guards the name.")
	postPlayers.AddReqStructure(SubmitScoreRequest{})
	postPlayers.AddRespStructure(ScoreCreatedResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPlayers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postPlayers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postPlayers)

	// POST /api/questions/random
	postRandom, _ := r.NewOperationContext(http.MethodPost, "/api/questions/random")
	postRandom.SetSummary("Random question")
	postRandom.SetDescription("Returns a random unseen question, or null when every question has been seen.")
	postRandom.AddReqStructure(RandomQuestionRequest{})
	postRandom.AddRespStructure(RandomQuestionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postRandom)

	// POST /api/questions/verify
	postVerify, _ := r.NewOperationContext(http.MethodPost, "/api/questions/verify")
	postVerify.SetSummary("Verify answer")
	postVerify.SetDescription("Checks a submitted answer against the stored one, ignoring case and surrounding whitespace.")
	postVerify.AddReqStructure(VerifyAnswerRequest{})
	postVerify.AddRespStructure(VerifyAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postVerify.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postVerify.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postVerify)

	// POST /api/sessions
	postSessions, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSessions.SetSummary("Create session")
	postSessions.SetDescription("Starts a quiz session in explore or quiz mode and returns its initial state.")
	postSessions.AddReqStructure(CreateSessionRequest{})
	postSessions.AddRespStructure(SessionStateResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSessions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSessions)

	// GET /api/sessions/{id}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}")
	getSession.SetSummary("Session state")
	getSession.SetDescription("Returns the current state of a session.")
	getSession.AddRespStructure(SessionStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// POST /api/sessions/{id}/select
	postSelect, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{id}/select")
	postSelect.SetSummary("Select country")
	postSelect.SetDescription("Submits a country selection for the current question. Ignored outside the quiz round.")
	postSelect.AddReqStructure(SelectCountryRequest{})
	postSelect.AddRespStructure(SessionStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSelect.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postSelect)

	// DELETE /api/sessions/{id}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{id}")
	deleteSession.SetSummary("Clear session")
	deleteSession.SetDescription("Tears the session down and invalidates its ID.")
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// GET /api/sessions/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of question, score, and finished events for a session.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getEvents)

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
