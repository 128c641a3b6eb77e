package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) PickRandomQuestion(ctx context.Context, excludeIDs []int) (worldquiz.Question, bool, error) {
	query := `SELECT id, question_text FROM questions`
	args := make([]any, 0, len(excludeIDs))
	if len(excludeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(excludeIDs)), ", ")
		query += ` WHERE id NOT IN (` + placeholders + `)`
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	var q worldquiz.Question
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&q.ID, &q.QuestionText)
	if errors.Is(err, sql.ErrNoRows) {
		return worldquiz.Question{}, false, nil
	}
	if err != nil {
		return worldquiz.Question{}, false, fmt.Errorf("picking random question: %w", err)
	}
	return q, true, nil
}

func (s *SQLiteStore) QuestionAnswer(ctx context.Context, id int) (string, error) {
	var answer string
	err := s.db.QueryRowContext(ctx, `
		SELECT answer FROM questions WHERE id = ?
	`, id).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", worldquiz.ErrQuestionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading question answer: %w", err)
	}
	return answer, nil
}

func (s *SQLiteStore) TopPlayers(ctx context.Context, limit int) ([]PlayerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, score, country, created_at
		FROM players
		ORDER BY score DESC, created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	defer rows.Close()

	var players []PlayerRow
	for rows.Next() {
		var p PlayerRow
		if err := rows.Scan(&p.ID, &p.Username, &p.Score, &p.Country, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLiteStore) PlayerCredentials(ctx context.Context, username string) (int, string, int, error) {
	var id, score int
	var hash string
	// username column is COLLATE NOCASE, so this match is case-insensitive.
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash, score FROM players WHERE username = ?
	`, username).Scan(&id, &hash, &score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", 0, ErrNotFound
	}
	if err != nil {
		return 0, "", 0, fmt.Errorf("looking up player: %w", err)
	}
	return id, hash, score, nil
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, username, passwordHash, country string, score int) (PlayerRow, error) {
	p := PlayerRow{
		Username: username,
		Country:  country,
		Score:    score,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO players (username, password_hash, score, country)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at
	`, username, passwordHash, score, country).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return PlayerRow{}, fmt.Errorf("creating player: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) UpdatePlayerScore(ctx context.Context, id, score int, country string) (bool, error) {
	// The guard is part of the statement so concurrent submissions cannot
	// overwrite a higher score with a stale lower one.
	result, err := s.db.ExecContext(ctx, `
		UPDATE players
		SET score = ?, country = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND ? > score
	`, score, country, id, score)
	if err != nil {
		return false, fmt.Errorf("updating player score: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
