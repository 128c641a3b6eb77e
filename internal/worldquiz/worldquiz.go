// Package worldquiz defines the core domain types and errors.
// It has no dependencies on the storage or transport layers.
package worldquiz

import "time"

// CountryRecord is one entry of the reference dataset. Records are
// immutable once cached; IsoCode is the canonical identifier (cca3).
type CountryRecord struct {
	CommonName         string
	OfficialName       string
	Capital            string
	Region             string
	Population         int64
	Area               float64
	LatLng             []float64
	Souvenirs          string
	TraditionalCuisine string
	FlagURL            string
	IsoCode            string
}

// Question is the public face of a quiz question. The correct answer
// stays server-side and never travels with it.
type Question struct {
	ID           int
	QuestionText string
}

// Player is a leaderboard record. PasswordHash never leaves the store layer.
type Player struct {
	ID        int
	Username  string
	Score     int
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Score deltas applied per answer, and the bounds enforced at persistence time.
const (
	ScoreCorrect   = 5
	ScoreIncorrect = -10

	MinSubmittedScore = -500
	MaxSubmittedScore = 250
)

// Username and password constraints for leaderboard submissions.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 10
	MinPasswordLen = 6
)
