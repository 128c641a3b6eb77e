package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

type SubmitScoreRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Country  string `json:"country"`
	Score    int    `json:"score"`
}

// Each submission outcome has its own response shape.
type ScoreCreatedResponse struct {
	Message string           `json:"message"`
	Created bool             `json:"created"`
	Player  LeaderboardEntry `json:"player"`
}

type ScoreUpdatedResponse struct {
	Message  string `json:"message"`
	Updated  bool   `json:"updated"`
	NewScore int    `json:"newScore"`
}

type ScoreKeptResponse struct {
	Message      string `json:"message"`
	Updated      bool   `json:"updated"`
	CurrentScore int    `json:"currentScore"`
}

func handleSubmitScore(logger *slog.Logger, board *Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := board.Submit(r.Context(), req.Username, req.Password, req.Country, req.Score)
		if err != nil {
			var verr *worldquiz.ValidationError
			switch {
			case errors.As(err, &verr):
				writeError(w, http.StatusBadRequest, verr.Message)
			case errors.Is(err, worldquiz.ErrWrongPassword):
				writeError(w, http.StatusUnauthorized, "User already exists. Incorrect password")
			default:
				logger.Error("submitting score", "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to save score")
			}
			return
		}

		switch {
		case res.Created:
			p := res.Player
			writeJSON(w, http.StatusOK, ScoreCreatedResponse{
				Message: "Welcome to the leaderboard!",
				Created: true,
				Player: LeaderboardEntry{
					ID:        p.ID,
					Country:   p.Country,
					Username:  p.Username,
					Score:     p.Score,
					CreatedAt: p.CreatedAt,
				},
			})
		case res.Updated:
			writeJSON(w, http.StatusOK, ScoreUpdatedResponse{
				Message:  "New personal best! Your score has been updated",
				Updated:  true,
				NewScore: res.Score,
			})
		default:
			writeJSON(w, http.StatusOK, ScoreKeptResponse{
				Message:      "Your current score is better. It has not been updated",
				Updated:      false,
				CurrentScore: res.CurrentScore,
			})
		}
	}
}
