package server

import (
	"log/slog"
	"net/http"
)

// LeaderboardEntry is one row of the public board.
type LeaderboardEntry struct {
	ID        int    `json:"id"`
	Country   string `json:"country"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	CreatedAt string `json:"createdAt"`
}

func handleLeaderboard(logger *slog.Logger, board *Leaderboard, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := board.Top(r.Context(), limit)
		if err != nil {
			logger.Error("reading leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
			return
		}

		entries := make([]LeaderboardEntry, 0, len(players))
		for _, p := range players {
			entries = append(entries, LeaderboardEntry{
				ID:        p.ID,
				Country:   p.Country,
				Username:  p.Username,
				Score:     p.Score,
				CreatedAt: p.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
