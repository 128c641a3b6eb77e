package server

import (
	"context"
	"errors"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

var ErrNotFound = errors.New("not found")

// PlayerRow is a leaderboard row as read from storage. Timestamps stay in
// their stored ISO-8601 form; the API passes them through.
type PlayerRow struct {
	ID        int
	Username  string
	Score     int
	Country   string
	CreatedAt string
}

// Store is the persistence surface for questions and players. The question
// half doubles as the session engine's QuestionSource.
type Store interface {
	// PickRandomQuestion selects uniformly among questions whose ID is not
	// excluded. ok=false means the bank is exhausted - a normal signal.
	PickRandomQuestion(ctx context.Context, excludeIDs []int) (worldquiz.Question, bool, error)
	// QuestionAnswer returns the ground-truth answer for a question, or
	// worldquiz.ErrQuestionNotFound.
	QuestionAnswer(ctx context.Context, id int) (string, error)

	// TopPlayers reads the leaderboard: score descending, earlier
	// submission first on ties.
	TopPlayers(ctx context.Context, limit int) ([]PlayerRow, error)
	// PlayerCredentials looks a player up by username, case-insensitively.
	// Returns ErrNotFound when no such player exists.
	PlayerCredentials(ctx context.Context, username string) (id int, passwordHash string, score int, err error)
	// CreatePlayer inserts a new leaderboard record.
	CreatePlayer(ctx context.Context, username, passwordHash, country string, score int) (PlayerRow, error)
	// UpdatePlayerScore raises a player's score and country, but only if
	// score is strictly greater than the stored one. The condition lives
	// in a single statement so concurrent submissions cannot lose updates.
	UpdatePlayerScore(ctx context.Context, id, score int, country string) (updated bool, err error)
}
