package session

import (
	"context"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// QuestionSource is the server-held ground truth: random pick with
// exclusions, and answer lookup for verification. The correct answer never
// travels past this package.
type QuestionSource interface {
	PickRandomQuestion(ctx context.Context, excludeIDs []int) (worldquiz.Question, bool, error)
	QuestionAnswer(ctx context.Context, id int) (string, error)
}

// Sequencer hands out one fresh question at a time, never repeating an ID
// within a session. Not safe for concurrent use on its own; the Controller
// serializes access.
type Sequencer struct {
	source QuestionSource
	seen   map[int]struct{}
}

func NewSequencer(source QuestionSource) *Sequencer {
	return &Sequencer{
		source: source,
		seen:   make(map[int]struct{}),
	}
}

// Next picks an unseen question and records it. ok=false signals the round
// is complete: every question has been handed out. That is a normal
// termination, not a failure.
func (s *Sequencer) Next(ctx context.Context) (worldquiz.Question, bool, error) {
	q, ok, err := s.source.PickRandomQuestion(ctx, s.SeenIDs())
	if err != nil || !ok {
		return worldquiz.Question{}, false, err
	}
	s.seen[q.ID] = struct{}{}
	return q, true, nil
}

// SeenIDs returns the IDs handed out so far.
func (s *Sequencer) SeenIDs() []int {
	ids := make([]int, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	return ids
}
