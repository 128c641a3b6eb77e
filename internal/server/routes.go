package server

import (
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("WorldQuiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(deps.Logger, deps.DB, deps.Redis))

	r.Route("/api", func(r chi.Router) {
		r.Get("/countries", handleCountries(deps.Logger, deps.Countries))
		r.Get("/countries/enriched", handleCountriesEnriched(deps.Logger, deps.Countries))

		r.Get("/leaderboard", handleLeaderboard(deps.Logger, deps.Leaderboard, deps.LeaderboardLimit))
		r.Post("/players", handleSubmitScore(deps.Logger, deps.Leaderboard))

		r.Post("/questions/random", handleRandomQuestion(deps.Logger, deps.Store))
		r.Post("/questions/verify", handleVerifyAnswer(deps.Logger, deps.Store))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", handleCreateSession(deps.Logger, deps.Sessions))
			r.Get("/{id}", handleSessionState(deps.Sessions))
			r.Post("/{id}/select", handleSelectCountry(deps.Logger, deps.Sessions))
			r.Delete("/{id}", handleClearSession(deps.Sessions))
			r.Get("/{id}/events", handleSessionEvents(deps.Sessions, deps.Broker))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			deps.Logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
