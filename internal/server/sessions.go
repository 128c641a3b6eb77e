package server

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/geoglobe/worldquiz/internal/session"
	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// finishedRetention keeps terminal sessions around long enough for clients
// to poll the final score before the registry forgets them.
const finishedRetention = 5 * time.Minute

// Sessions tracks live quiz sessions by ID. Each session owns its own
// controller; the registry only routes lookups and fans events out to
// the broker. Finished sessions are swept after a retention window so
// abandoned ones do not accumulate for the process lifetime.
type Sessions struct {
	logger    *slog.Logger
	source    session.QuestionSource
	cfg       session.Config
	broker    *Broker
	retention time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	ctrl       *session.Controller
	finishedAt time.Time // zero while the session is live
}

func NewSessions(logger *slog.Logger, source session.QuestionSource, cfg session.Config, broker *Broker) *Sessions {
	return &Sessions{
		logger:    logger,
		source:    source,
		cfg:       cfg,
		broker:    broker,
		retention: finishedRetention,
		sessions:  make(map[string]*sessionEntry),
	}
}

// Create starts a new session in the given mode and returns its ID.
func (s *Sessions) Create(mode session.Mode) (string, *session.Controller, error) {
	id := newSessionID()
	ctrl := session.NewController(s.logger, s.source, s.cfg, func(ev session.Event) {
		if ev.Type == session.EventFinished {
			s.markFinished(id)
		}
		s.broker.Publish(id, toSSEEvent(ev))
	})
	if err := ctrl.Start(mode); err != nil {
		return "", nil, err
	}

	entry := &sessionEntry{ctrl: ctrl}
	if ctrl.State().Status == session.StatusFinished {
		// Finished during Start, before the entry existed to mark.
		entry.finishedAt = time.Now()
	}

	s.mu.Lock()
	s.sweepLocked(time.Now())
	s.sessions[id] = entry
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", id, "mode", mode)
	return id, ctrl, nil
}

// Get returns the controller bound to an ID.
func (s *Sessions) Get(id string) (*session.Controller, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, worldquiz.ErrSessionNotFound
	}
	return e.ctrl, nil
}

// Clear tears a session down and invalidates its ID.
func (s *Sessions) Clear(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return worldquiz.ErrSessionNotFound
	}
	e.ctrl.Clear()
	s.logger.Info("session cleared", "session_id", id)
	return nil
}

// markFinished records when a session reached its terminal state. Called
// from the controller's event callback, so it must not call back into the
// controller.
func (s *Sessions) markFinished(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok && e.finishedAt.IsZero() {
		e.finishedAt = time.Now()
	}
}

// sweepLocked drops finished sessions older than the retention window.
func (s *Sessions) sweepLocked(now time.Time) {
	for id, e := range s.sessions {
		if !e.finishedAt.IsZero() && now.Sub(e.finishedAt) >= s.retention {
			delete(s.sessions, id)
			s.logger.Info("finished session swept", "session_id", id)
		}
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func toSSEEvent(ev session.Event) SSEEvent {
	out := SSEEvent{
		Type:       ev.Type,
		Score:      ev.Score,
		ScoreDelta: ev.Delta,
	}
	if ev.Question != nil {
		out.Question = &questionBody{ID: ev.Question.ID, Text: ev.Question.QuestionText}
	}
	return out
}
