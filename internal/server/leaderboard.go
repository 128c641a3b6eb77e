package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// Leaderboard handles best-score submissions. A username is claimed with a
// password on first submission; later submissions for the same name must
// present the same password and only ever raise the stored score.
type Leaderboard struct {
	store  Store
	logger *slog.Logger
}

func NewLeaderboard(logger *slog.Logger, store Store) *Leaderboard {
	return &Leaderboard{store: store, logger: logger}
}

// SubmitResult reports what a submission did to the board.
type SubmitResult struct {
	Created      bool
	Updated      bool
	Score        int
	CurrentScore int
	Player       PlayerRow
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]PlayerRow, error) {
	return l.store.TopPlayers(ctx, limit)
}

func (l *Leaderboard) Submit(ctx context.Context, username, password, country string, score int) (SubmitResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || country == "" {
		return SubmitResult{}, worldquiz.Validation("All fields are required")
	}
	// Length limits are in characters, not bytes.
	if n := utf8.RuneCountInString(username); n < worldquiz.MinUsernameLen || n > worldquiz.MaxUsernameLen {
		return SubmitResult{}, worldquiz.Validation("The username must be between 3 and 10 characters")
	}
	if utf8.RuneCountInString(password) < worldquiz.MinPasswordLen {
		return SubmitResult{}, worldquiz.Validation("The password must be at least 6 characters long")
	}
	if score < worldquiz.MinSubmittedScore || score > worldquiz.MaxSubmittedScore {
		return SubmitResult{}, worldquiz.Validation("Invalid score")
	}

	id, hash, current, err := l.store.PlayerCredentials(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return l.create(ctx, username, password, country, score)
	}
	if err != nil {
		return SubmitResult{}, err
	}
	return l.update(ctx, id, hash, password, country, score, current)
}

func (l *Leaderboard) create(ctx context.Context, username, password, country string, score int) (SubmitResult, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("hashing password: %w", err)
	}
	player, err := l.store.CreatePlayer(ctx, username, string(hashed), country, score)
	if err != nil {
		// A concurrent submission may have claimed the name between our
		// lookup and the insert. Retry once down the update path.
		id, hash, current, lookupErr := l.store.PlayerCredentials(ctx, username)
		if lookupErr != nil {
			return SubmitResult{}, err
		}
		return l.update(ctx, id, hash, password, country, score, current)
	}
	l.logger.Info("player joined leaderboard", "username", username, "score", score)
	return SubmitResult{Created: true, Score: score, Player: player}, nil
}

func (l *Leaderboard) update(ctx context.Context, id int, hash, password, country string, score, current int) (SubmitResult, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return SubmitResult{}, worldquiz.ErrWrongPassword
	}
	updated, err := l.store.UpdatePlayerScore(ctx, id, score, country)
	if err != nil {
		return SubmitResult{}, err
	}
	res := SubmitResult{Updated: updated, Score: score, CurrentScore: current}
	if updated {
		l.logger.Info("personal best updated", "player_id", id, "score", score)
	}
	return res, nil
}
