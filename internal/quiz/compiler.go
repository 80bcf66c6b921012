package quiz

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"studypilot/internal/db"
	"studypilot/internal/models"

	"github.com/google/uuid"
)

// ParsedQuestion is one element of the model's JSON array response.
type ParsedQuestion struct {
	Question      string           `json:"question"`
	Type          string           `json:"type"`
	Options       []string         `json:"options"`
	CorrectAnswer models.AnswerKey `json:"correctAnswer"`
	Explanation   string           `json:"explanation"`
}

// ParseQuestions extracts the question array from the model's raw text. The
// model is instructed to emit only a JSON array but often wraps it in prose,
// so the first '[' through the last ']' is taken as the candidate payload.
// Anything that does not parse yields an empty set, never an error: a quiz
// with zero questions is a valid terminal state.
func ParseQuestions(raw string) []ParsedQuestion {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		log.Printf("WARN: no JSON array found in model response")
		return []ParsedQuestion{}
	}

	var questions []ParsedQuestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err != nil {
		log.Printf("WARN: failed to parse model question array: %v", err)
		return []ParsedQuestion{}
	}
	if questions == nil {
		questions = []ParsedQuestion{}
	}
	return questions
}

// Store is the persistence surface the compiler needs. *db.Queries satisfies
// it, transactional or not.
type Store interface {
	CreateQuiz(ctx context.Context, arg db.CreateQuizParams) (models.Quiz, error)
	CreateQuizQuestion(ctx context.Context, arg db.CreateQuizQuestionParams) (models.QuizQuestion, error)
}

// CompileResult is a persisted quiz with its questions in compiled order.
type CompileResult struct {
	Quiz      models.Quiz           `json:"quiz"`
	Questions []models.QuizQuestion `json:"questions"`
}

// Compile persists a quiz built from the model's raw response. The quiz row
// is always created, even when no questions parsed; callers detect the empty
// case by question count. Question order is the array position.
func Compile(ctx context.Context, store Store, title string, folderID, fileID uuid.UUID, raw string) (CompileResult, error) {
	parsed := ParseQuestions(raw)

	quizRow, err := store.CreateQuiz(ctx, db.CreateQuizParams{
		Title:    title,
		FolderID: folderID,
		FileID:   fileID,
	})
	if err != nil {
		return CompileResult{}, err
	}

	questions := make([]models.QuizQuestion, 0, len(parsed))
	for i, p := range parsed {
		question, err := store.CreateQuizQuestion(ctx, db.CreateQuizQuestionParams{
			QuizID:        quizRow.ID,
			SortOrder:     int32(i),
			Question:      p.Question,
			Kind:          p.Type,
			Options:       p.Options,
			CorrectAnswer: p.CorrectAnswer,
			Explanation:   p.Explanation,
		})
		if err != nil {
			return CompileResult{}, err
		}
		questions = append(questions, question)
	}

	log.Printf("INFO: compiled quiz %s with %d questions", quizRow.ID, len(questions))
	return CompileResult{Quiz: quizRow, Questions: questions}, nil
}
