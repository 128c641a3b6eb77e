package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geoglobe/worldquiz/internal/session"
	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

type RandomQuestionRequest struct {
	SeenIDs []int `json:"seenIds"`
}

// RandomQuestionResponse carries null, not an empty object, once every
// question has been seen. Clients treat null as round-complete.
type RandomQuestionResponse struct {
	Question *questionBody `json:"question"`
}

func handleRandomQuestion(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RandomQuestionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		q, ok, err := store.PickRandomQuestion(r.Context(), req.SeenIDs)
		if err != nil {
			logger.Error("picking random question", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch question")
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, RandomQuestionResponse{Question: nil})
			return
		}
		writeJSON(w, http.StatusOK, RandomQuestionResponse{
			Question: &questionBody{ID: q.ID, Text: q.QuestionText},
		})
	}
}

// VerifyAnswerRequest uses pointers so an absent field can be told apart
// from a present-but-empty one; only absence is a client error.
type VerifyAnswerRequest struct {
	QuestionID *int    `json:"questionId"`
	UserAnswer *string `json:"userAnswer"`
}

type VerifyAnswerResponse struct {
	IsCorrect bool `json:"isCorrect"`
}

func handleVerifyAnswer(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyAnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.QuestionID == nil || req.UserAnswer == nil {
			writeError(w, http.StatusBadRequest, "questionId and userAnswer are required")
			return
		}

		answer, err := store.QuestionAnswer(r.Context(), *req.QuestionID)
		if errors.Is(err, worldquiz.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		if err != nil {
			logger.Error("verifying answer", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify answer")
			return
		}

		writeJSON(w, http.StatusOK, VerifyAnswerResponse{
			IsCorrect: session.AnswerMatches(answer, *req.UserAnswer),
		})
	}
}
