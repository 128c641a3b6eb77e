package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSessionEventsStream(t *testing.T) {
	r, store := newTestServer(t, &fakeCountries{})
	srv := httptest.NewServer(r)
	defer srv.Close()

	// Create a quiz session.
	resp, err := http.Post(srv.URL+"/api/sessions", "application/json",
		strings.NewReader(`{"mode":"quiz"}`))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	var state SessionStateResponse
	json.NewDecoder(resp.Body).Decode(&state)
	resp.Body.Close()
	if state.Question == nil {
		t.Fatal("expected an initial question")
	}

	// Open the event stream.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/sessions/"+state.SessionID+"/events", nil)
	stream, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer stream.Body.Close()
	if ct := stream.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", ct)
	}

	// Trigger events with a correct answer.
	answer, err := store.QuestionAnswer(context.Background(), state.Question.ID)
	if err != nil {
		t.Fatalf("question answer: %v", err)
	}
	body, _ := json.Marshal(SelectCountryRequest{Country: answer})
	resp, err = http.Post(srv.URL+"/api/sessions/"+state.SessionID+"/select",
		"application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	resp.Body.Close()

	// The stream carries the score event and the follow-up question.
	var events []SSEEvent
	scanner := bufio.NewScanner(stream.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev SSEEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("unmarshal event %q: %v", line, err)
		}
		events = append(events, ev)
		if len(events) == 2 {
			break
		}
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(events), scanner.Err())
	}
	if events[0].Type != "score" || events[0].ScoreDelta != 5 {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[1].Type != "question" || events[1].Question == nil {
		t.Errorf("unexpected second event %+v", events[1])
	}
}
