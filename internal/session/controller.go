package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// Status is the controller's round state.
type Status string

const (
	StatusExploring Status = "exploring"
	StatusQuizzing  Status = "quizzing"
	StatusFinished  Status = "finished"
)

// Mode selects how a round starts: free exploration that chains into the
// quiz when its timer runs out, or direct quiz entry.
type Mode string

const (
	ModeExplore Mode = "explore"
	ModeQuiz    Mode = "quiz"
)

// Event is emitted on state changes for realtime subscribers. The handler
// must not call back into the Controller.
type Event struct {
	Type     string
	Question *worldquiz.Question
	Score    int
	Delta    int
}

const (
	EventQuestion = "question"
	EventScore    = "score"
	EventFinished = "finished"
)

// Config carries the round durations. AnswerDelay is the UX pause before
// the next question is shown; it is injectable so tests can run with zero.
type Config struct {
	ExploreDuration time.Duration
	QuizDuration    time.Duration
	AnswerDelay     time.Duration
}

// scoreTracker accumulates point deltas for one session. Unbounded here;
// bounds are enforced at persistence time.
type scoreTracker struct {
	score     int
	lastDelta int
}

func (t *scoreTracker) applyDelta(delta int) {
	t.score += delta
	t.lastDelta = delta
}

// State is a read-only snapshot of session progress.
type State struct {
	Status           Status
	Score            int
	LastScoreDelta   int
	RemainingSeconds int
	Question         *worldquiz.Question
}

// Controller drives one session through Exploring -> Quizzing -> Finished.
// All state is guarded by one mutex; nothing is shared across sessions
// except the question source.
type Controller struct {
	logger  *slog.Logger
	cfg     Config
	source  QuestionSource
	onEvent func(Event)

	mu        sync.Mutex
	status    Status
	tracker   scoreTracker
	seq       *Sequencer
	current   *worldquiz.Question
	pending   bool // at most one in-flight verification per session
	expireReq bool // timer expired while a verification was pending
	advancing bool // a delayed advance to the next question is scheduled
	cleared   bool
	timer     *RoundTimer

	// ctx outlives individual requests so delayed question fetches keep
	// working; cancelled when the session finishes or is cleared.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController builds an unstarted controller. onEvent may be nil.
func NewController(logger *slog.Logger, source QuestionSource, cfg Config, onEvent func(Event)) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		logger:  logger,
		cfg:     cfg,
		source:  source,
		onEvent: onEvent,
		seq:     NewSequencer(source),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins the round. A controller starts exactly once; a new session
// needs a new controller.
func (c *Controller) Start(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusFinished {
		return worldquiz.ErrSessionFinished
	}
	if c.status != "" {
		return errors.New("session already started")
	}

	switch mode {
	case ModeExplore:
		c.status = StatusExploring
		c.timer = NewRoundTimer()
		c.timer.Start(c.cfg.ExploreDuration, c.onExploreExpire)
		return nil
	case ModeQuiz:
		return c.beginQuizLocked()
	default:
		return worldquiz.Validation("unknown session mode")
	}
}

// onExploreExpire chains exploration into the quiz.
func (c *Controller) onExploreExpire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleared || c.status != StatusExploring {
		return
	}
	if err := c.beginQuizLocked(); err != nil {
		c.logger.Error("starting quiz after exploration", "error", err)
	}
}

func (c *Controller) beginQuizLocked() error {
	c.status = StatusQuizzing
	c.timer = NewRoundTimer()
	c.timer.Start(c.cfg.QuizDuration, c.onQuizExpire)
	return c.advanceLocked(c.ctx)
}

func (c *Controller) onQuizExpire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusQuizzing {
		return
	}
	if c.pending {
		// An answer is in flight; honor its result first, then finish.
		c.expireReq = true
		return
	}
	c.finishLocked()
}

// advanceLocked asks the sequencer for the next question. Exhaustion ends
// the round exactly like timer expiry.
func (c *Controller) advanceLocked(ctx context.Context) error {
	q, ok, err := c.seq.Next(ctx)
	if err != nil {
		// The session stays where it is; the next selection or poll can
		// retry. Never leave state half-updated.
		c.logger.Error("fetching next question", "error", err)
		return err
	}
	if !ok {
		c.finishLocked()
		return nil
	}
	c.current = &q
	c.publishLocked(Event{Type: EventQuestion, Question: &q, Score: c.tracker.score})
	return nil
}

// Select reports a user's country selection for the current question.
// Selections are ignored - returning the unchanged state - unless the
// session is quizzing with a current question and no verification pending.
func (c *Controller) Select(ctx context.Context, submitted string) (State, error) {
	c.mu.Lock()
	if c.status == StatusQuizzing && c.current == nil && !c.pending && !c.advancing {
		// A previous question fetch failed and left the round without a
		// current question. Retry the fetch; the selection itself still
		// has nothing to apply to.
		err := c.advanceLocked(ctx)
		st := c.stateLocked()
		c.mu.Unlock()
		return st, err
	}
	if c.status != StatusQuizzing || c.current == nil || c.pending {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, nil
	}

	q := *c.current
	c.pending = true
	c.mu.Unlock()

	// Verification is a round trip; the countdown keeps running meanwhile.
	answer, err := c.source.QuestionAnswer(ctx, q.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false

	if c.status != StatusQuizzing {
		// The session was cleared or finished while the answer was in
		// flight. A deferred timer expiry is the one exception: it waits
		// for this result, so the status is still quizzing then.
		return c.stateLocked(), nil
	}

	if err != nil {
		if c.expireReq {
			c.finishLocked()
		}
		return c.stateLocked(), err
	}

	delta := worldquiz.ScoreIncorrect
	if AnswerMatches(answer, submitted) {
		delta = worldquiz.ScoreCorrect
	}
	c.tracker.applyDelta(delta)
	c.publishLocked(Event{Type: EventScore, Score: c.tracker.score, Delta: delta})
	c.current = nil

	if c.expireReq {
		c.finishLocked()
		return c.stateLocked(), nil
	}

	if c.cfg.AnswerDelay <= 0 {
		if err := c.advanceLocked(ctx); err != nil {
			return c.stateLocked(), err
		}
		return c.stateLocked(), nil
	}

	c.advancing = true
	time.AfterFunc(c.cfg.AnswerDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.advancing = false
		if c.status != StatusQuizzing || c.current != nil || c.pending {
			return
		}
		if err := c.advanceLocked(c.ctx); err != nil {
			c.logger.Error("advancing after answer delay", "error", err)
		}
	})
	return c.stateLocked(), nil
}

// finishLocked is the single transition into the terminal state.
func (c *Controller) finishLocked() {
	if c.status == StatusFinished {
		return
	}
	c.status = StatusFinished
	c.current = nil
	if c.timer != nil {
		c.timer.Cancel()
	}
	c.cancel()
	c.publishLocked(Event{Type: EventFinished, Score: c.tracker.score})
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	st := State{
		Status:         c.status,
		Score:          c.tracker.score,
		LastScoreDelta: c.tracker.lastDelta,
	}
	if c.timer != nil {
		st.RemainingSeconds = c.timer.Remaining()
	}
	if c.current != nil {
		q := *c.current
		st.Question = &q
	}
	return st
}

// Clear tears the session down and invalidates any binding to it.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleared = true
	c.current = nil
	if c.timer != nil {
		c.timer.Cancel()
	}
	c.cancel()
	c.status = StatusFinished
}

func (c *Controller) publishLocked(ev Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}
