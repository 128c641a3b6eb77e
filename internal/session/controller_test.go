package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// fakeSource serves questions from a fixed map, picking the lowest unseen
// ID so tests are deterministic.
type fakeSource struct {
	mu      sync.Mutex
	items   map[int]fakeQuestion
	block   chan struct{} // when set, QuestionAnswer waits on it
	pickErr error         // when set, PickRandomQuestion fails
	picks   int
	lookups int
}

type fakeQuestion struct {
	text   string
	answer string
}

func newFakeSource(items map[int]fakeQuestion) *fakeSource {
	return &fakeSource{items: items}
}

func (f *fakeSource) PickRandomQuestion(ctx context.Context, excludeIDs []int) (worldquiz.Question, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.picks++

	if f.pickErr != nil {
		return worldquiz.Question{}, false, f.pickErr
	}

	excluded := make(map[int]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	ids := make([]int, 0, len(f.items))
	for id := range f.items {
		if _, seen := excluded[id]; !seen {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return worldquiz.Question{}, false, nil
	}
	sort.Ints(ids)
	id := ids[0]
	return worldquiz.Question{ID: id, QuestionText: f.items[id].text}, true, nil
}

func (f *fakeSource) QuestionAnswer(ctx context.Context, id int) (string, error) {
	f.mu.Lock()
	block := f.block
	q, ok := f.items[id]
	f.lookups++
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if !ok {
		return "", worldquiz.ErrQuestionNotFound
	}
	return q.answer, nil
}

func fourQuestions() map[int]fakeQuestion {
	return map[int]fakeQuestion{
		1: {"Which country's capital is Paris?", "France"},
		2: {"Which country's capital is Lima?", "Peru"},
		3: {"Which country's capital is Tokyo?", "Japan"},
		4: {"Which country's capital is Cairo?", "Egypt"},
	}
}

func quizController(t *testing.T, src QuestionSource, onEvent func(Event)) *Controller {
	t.Helper()
	c := NewController(slog.Default(), src, Config{
		QuizDuration:    300 * time.Second,
		ExploreDuration: 300 * time.Second,
		AnswerDelay:     0,
	}, onEvent)
	if err := c.Start(ModeQuiz); err != nil {
		t.Fatalf("start: %v", err)
	}
	return c
}

func TestScoreTracker(t *testing.T) {
	var tr scoreTracker
	tr.applyDelta(worldquiz.ScoreCorrect)
	tr.applyDelta(worldquiz.ScoreIncorrect)

	if tr.score != -5 {
		t.Errorf("score = %d, want -5", tr.score)
	}
	if tr.lastDelta != -10 {
		t.Errorf("lastDelta = %d, want -10", tr.lastDelta)
	}
}

func TestSequencerNeverRepeats(t *testing.T) {
	seq := NewSequencer(newFakeSource(fourQuestions()))
	ctx := context.Background()

	seen := make(map[int]bool)
	for {
		q, ok, err := seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			break
		}
		if seen[q.ID] {
			t.Fatalf("question %d handed out twice", q.ID)
		}
		seen[q.ID] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected all 4 questions before round complete, got %d", len(seen))
	}
}

func TestQuizRoundScoring(t *testing.T) {
	src := newFakeSource(fourQuestions())
	c := quizController(t, src, nil)
	ctx := context.Background()

	// Three correct (questions 1-3 in ID order), one incorrect.
	answers := []string{"France", " peru ", "JAPAN", "Norway"}
	for _, a := range answers {
		if _, err := c.Select(ctx, a); err != nil {
			t.Fatalf("select %q: %v", a, err)
		}
	}

	st := c.State()
	if st.Score != 5 {
		t.Errorf("final score = %d, want 5", st.Score)
	}
	if st.LastScoreDelta != -10 {
		t.Errorf("last delta = %d, want -10", st.LastScoreDelta)
	}
	// Four questions answered, sequencer exhausted: the round is over.
	if st.Status != StatusFinished {
		t.Errorf("status = %q, want finished", st.Status)
	}
}

func TestSelectionIgnoredWithoutCurrentQuestion(t *testing.T) {
	src := newFakeSource(map[int]fakeQuestion{1: {"q", "France"}})
	c := quizController(t, src, nil)
	ctx := context.Background()

	if _, err := c.Select(ctx, "France"); err != nil {
		t.Fatalf("select: %v", err)
	}
	// Round is finished; this selection must be ignored.
	before := c.State()
	after, err := c.Select(ctx, "Germany")
	if err != nil {
		t.Fatalf("select after finish: %v", err)
	}
	if after.Score != before.Score || after.Status != StatusFinished {
		t.Errorf("finished session mutated: before=%+v after=%+v", before, after)
	}
}

func TestPendingVerificationBlocksSecondSelection(t *testing.T) {
	src := newFakeSource(fourQuestions())
	block := make(chan struct{})
	src.block = block

	c := quizController(t, src, nil)
	ctx := context.Background()

	done := make(chan State, 1)
	go func() {
		st, _ := c.Select(ctx, "France")
		done <- st
	}()

	// Wait for the first verification to be in flight.
	deadline := time.After(time.Second)
	for {
		src.mu.Lock()
		started := src.lookups > 0
		src.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first verification never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A second selection while pending is ignored, not queued.
	st, err := c.Select(ctx, "France")
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	if st.Score != 0 {
		t.Errorf("second select applied a delta: score=%d", st.Score)
	}

	close(block)
	st = <-done
	if st.Score != worldquiz.ScoreCorrect {
		t.Errorf("score after first answer = %d, want %d", st.Score, worldquiz.ScoreCorrect)
	}

	src.mu.Lock()
	lookups := src.lookups
	src.mu.Unlock()
	if lookups != 1 {
		t.Errorf("expected 1 verification round trip, got %d", lookups)
	}
}

func TestExpiryHonorsInFlightVerification(t *testing.T) {
	src := newFakeSource(fourQuestions())
	block := make(chan struct{})
	src.block = block

	c := quizController(t, src, nil)
	ctx := context.Background()

	done := make(chan State, 1)
	go func() {
		st, _ := c.Select(ctx, "France")
		done <- st
	}()

	deadline := time.After(time.Second)
	for {
		src.mu.Lock()
		started := src.lookups > 0
		src.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("verification never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Timer expires while the answer is in flight: the result must still
	// be applied before the transition to Finished.
	c.onQuizExpire()
	close(block)

	st := <-done
	if st.Status != StatusFinished {
		t.Errorf("status = %q, want finished", st.Status)
	}
	if st.Score != worldquiz.ScoreCorrect {
		t.Errorf("in-flight answer dropped: score = %d, want %d", st.Score, worldquiz.ScoreCorrect)
	}
}

func TestExploreChainsIntoQuiz(t *testing.T) {
	src := newFakeSource(fourQuestions())
	c := NewController(slog.Default(), src, Config{
		ExploreDuration: 20 * time.Millisecond,
		QuizDuration:    300 * time.Second,
		AnswerDelay:     0,
	}, nil)
	if err := c.Start(ModeExplore); err != nil {
		t.Fatalf("start: %v", err)
	}

	if st := c.State(); st.Status != StatusExploring {
		t.Fatalf("status = %q, want exploring", st.Status)
	}

	deadline := time.After(time.Second)
	for c.State().Status != StatusQuizzing {
		select {
		case <-deadline:
			t.Fatal("exploration never chained into quiz")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	if st := c.State(); st.Question == nil {
		t.Error("expected a question on quiz entry")
	}
}

func TestClearDropsInFlightVerification(t *testing.T) {
	src := newFakeSource(fourQuestions())
	block := make(chan struct{})
	src.block = block

	var mu sync.Mutex
	var types []string
	c := quizController(t, src, func(ev Event) {
		mu.Lock()
		types = append(types, ev.Type)
		mu.Unlock()
	})
	ctx := context.Background()

	done := make(chan State, 1)
	go func() {
		st, _ := c.Select(ctx, "France")
		done <- st
	}()

	deadline := time.After(time.Second)
	for {
		src.mu.Lock()
		started := src.lookups > 0
		src.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("verification never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// The session is torn down while the answer is in flight; its result
	// must be dropped, not applied to the terminal state.
	c.Clear()
	close(block)

	st := <-done
	if st.Status != StatusFinished {
		t.Errorf("status = %q, want finished", st.Status)
	}
	if st.Score != 0 {
		t.Errorf("cleared session took a score delta: score = %d", st.Score)
	}
	if st.Question != nil {
		t.Errorf("cleared session got a new question: %+v", st.Question)
	}

	mu.Lock()
	defer mu.Unlock()
	// Only the initial question event; nothing published after Clear.
	if len(types) != 1 || types[0] != EventQuestion {
		t.Errorf("events = %v, want [%s]", types, EventQuestion)
	}
}

func TestSelectRetriesAfterFetchFailure(t *testing.T) {
	src := newFakeSource(fourQuestions())
	c := quizController(t, src, nil)
	ctx := context.Background()

	// The fetch of question 2 fails after question 1 is answered.
	src.mu.Lock()
	src.pickErr = errors.New("store down")
	src.mu.Unlock()

	if _, err := c.Select(ctx, "France"); err == nil {
		t.Fatal("expected the failed question fetch to surface")
	}

	st := c.State()
	if st.Status != StatusQuizzing {
		t.Fatalf("status = %q, want quizzing after a transient failure", st.Status)
	}
	if st.Score != worldquiz.ScoreCorrect {
		t.Errorf("score = %d, want %d", st.Score, worldquiz.ScoreCorrect)
	}

	// The store recovers; the next selection refetches instead of
	// leaving the session stuck without a question.
	src.mu.Lock()
	src.pickErr = nil
	src.mu.Unlock()

	st, err := c.Select(ctx, "anything")
	if err != nil {
		t.Fatalf("select after recovery: %v", err)
	}
	if st.Question == nil {
		t.Fatal("expected a question after the retried fetch")
	}
	if st.Question.ID != 2 {
		t.Errorf("question ID = %d, want 2", st.Question.ID)
	}
	if st.Score != worldquiz.ScoreCorrect {
		t.Errorf("recovery selection applied a delta: score = %d", st.Score)
	}

	// Play continues normally.
	if _, err := c.Select(ctx, "Peru"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := c.State().Score; got != 2*worldquiz.ScoreCorrect {
		t.Errorf("score = %d, want %d", got, 2*worldquiz.ScoreCorrect)
	}
}

func TestClearInvalidatesSession(t *testing.T) {
	src := newFakeSource(fourQuestions())
	c := quizController(t, src, nil)

	c.Clear()

	st, err := c.Select(context.Background(), "France")
	if err != nil {
		t.Fatalf("select after clear: %v", err)
	}
	if st.Score != 0 || st.Status != StatusFinished {
		t.Errorf("cleared session accepted play: %+v", st)
	}
}

func TestEventsPublished(t *testing.T) {
	src := newFakeSource(map[int]fakeQuestion{1: {"q1", "France"}, 2: {"q2", "Peru"}})

	var mu sync.Mutex
	var types []string
	c := quizController(t, src, func(ev Event) {
		mu.Lock()
		types = append(types, ev.Type)
		mu.Unlock()
	})

	ctx := context.Background()
	c.Select(ctx, "France")
	c.Select(ctx, "Germany")

	mu.Lock()
	defer mu.Unlock()
	want := []string{EventQuestion, EventScore, EventQuestion, EventScore, EventFinished}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("events = %v, want %v", types, want)
		}
	}
}
