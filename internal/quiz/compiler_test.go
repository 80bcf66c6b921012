package quiz

import (
	"context"
	"testing"

	"studypilot/internal/db"
	"studypilot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	quizzes   []db.CreateQuizParams
	questions []db.CreateQuizQuestionParams
}

func (s *fakeStore) CreateQuiz(_ context.Context, arg db.CreateQuizParams) (models.Quiz, error) {
	s.quizzes = append(s.quizzes, arg)
	return models.Quiz{
		ID:       uuid.New(),
		Title:    arg.Title,
		FolderID: arg.FolderID,
		FileID:   arg.FileID,
	}, nil
}

func (s *fakeStore) CreateQuizQuestion(_ context.Context, arg db.CreateQuizQuestionParams) (models.QuizQuestion, error) {
	s.questions = append(s.questions, arg)
	return models.QuizQuestion{
		ID:            uuid.New(),
		QuizID:        arg.QuizID,
		SortOrder:     arg.SortOrder,
		Question:      arg.Question,
		Kind:          arg.Kind,
		Options:       arg.Options,
		CorrectAnswer: arg.CorrectAnswer,
		Explanation:   arg.Explanation,
	}, nil
}

const oneQuestionArray = `[
  {
    "question": "What is 2+2?",
    "type": "multiple-choice",
    "options": ["3", "4", "5", "6"],
    "correctAnswer": "4",
    "explanation": "Basic arithmetic"
  }
]`

func TestParseQuestions_IgnoresSurroundingProse(t *testing.T) {
	raw := "Here are the questions:\n" + oneQuestionArray + "\nEnjoy!"
	parsed := ParseQuestions(raw)

	require.Len(t, parsed, 1)
	require.Equal(t, "What is 2+2?", parsed[0].Question)
	require.Equal(t, models.QuestionKindMultipleChoice, parsed[0].Type)
	require.Equal(t, []string{"3", "4", "5", "6"}, parsed[0].Options)
	require.Equal(t, []string{"4"}, parsed[0].CorrectAnswer.Values)
	require.False(t, parsed[0].CorrectAnswer.Multi)
}

func TestParseQuestions_NoArrayYieldsEmpty(t *testing.T) {
	require.Empty(t, ParseQuestions("I could not generate any questions, sorry."))
}

func TestParseQuestions_MalformedArrayYieldsEmpty(t *testing.T) {
	require.Empty(t, ParseQuestions("[{not json at all]"))
}

func TestParseQuestions_ArrayValuedAnswer(t *testing.T) {
	raw := `[{"question":"Pick all primes","type":"checkbox","options":["2","3","4"],"correctAnswer":["2","3"],"explanation":""}]`
	parsed := ParseQuestions(raw)

	require.Len(t, parsed, 1)
	require.True(t, parsed[0].CorrectAnswer.Multi)
	require.Equal(t, []string{"2", "3"}, parsed[0].CorrectAnswer.Values)
}

func TestCompile_AssignsArrayPositionAsOrder(t *testing.T) {
	raw := `[
  {"question":"q0","type":"multiple-choice","options":["a","b"],"correctAnswer":"a","explanation":""},
  {"question":"q1","type":"multiple-choice","options":["a","b"],"correctAnswer":"b","explanation":""},
  {"question":"q2","type":"multiple-choice","options":["a","b"],"correctAnswer":"a","explanation":""}
]`
	store := &fakeStore{}
	folderID, fileID := uuid.New(), uuid.New()

	result, err := Compile(context.Background(), store, "Quiz: notes.pdf", folderID, fileID, raw)
	require.NoError(t, err)
	require.Len(t, result.Questions, 3)
	for i, q := range store.questions {
		require.Equal(t, int32(i), q.SortOrder)
		require.Equal(t, result.Quiz.ID, q.QuizID)
	}
}

func TestCompile_NoArrayStillCreatesQuiz(t *testing.T) {
	store := &fakeStore{}
	folderID, fileID := uuid.New(), uuid.New()

	result, err := Compile(context.Background(), store, "Quiz: notes.pdf", folderID, fileID, "no questions here")
	require.NoError(t, err)
	require.Empty(t, result.Questions)
	require.Len(t, store.quizzes, 1)
	require.Equal(t, "Quiz: notes.pdf", result.Quiz.Title)
	require.Equal(t, folderID, result.Quiz.FolderID)
	require.Equal(t, fileID, result.Quiz.FileID)
}
