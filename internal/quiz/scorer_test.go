package quiz

import (
	"fmt"
	"testing"

	"studypilot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mcQuestion(correct string) models.QuizQuestion {
	return models.QuizQuestion{
		ID:            uuid.New(),
		Kind:          models.QuestionKindMultipleChoice,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: models.AnswerKey{Values: []string{correct}},
	}
}

func checkboxQuestion(correct ...string) models.QuizQuestion {
	return models.QuizQuestion{
		ID:            uuid.New(),
		Kind:          models.QuestionKindCheckbox,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: models.AnswerKey{Values: correct, Multi: true},
	}
}

func TestScoreQuestion_ExactMatchForChoice(t *testing.T) {
	q := mcQuestion("B")
	require.True(t, ScoreQuestion(q, Answer{Value: "B"}))
	require.False(t, ScoreQuestion(q, Answer{Value: "A"}))
	require.False(t, ScoreQuestion(q, Answer{}))
}

func TestScoreQuestion_DropdownSameAsChoice(t *testing.T) {
	q := mcQuestion("C")
	q.Kind = models.QuestionKindDropdown
	require.True(t, ScoreQuestion(q, Answer{Value: "C"}))
	require.False(t, ScoreQuestion(q, Answer{Value: "D"}))
}

func TestScoreQuestion_CheckboxOrderIndependent(t *testing.T) {
	q := checkboxQuestion("A", "B")
	require.True(t, ScoreQuestion(q, Answer{Selected: []string{"A", "B"}}))
	require.True(t, ScoreQuestion(q, Answer{Selected: []string{"B", "A"}}))
	require.False(t, ScoreQuestion(q, Answer{Selected: []string{"A"}}))
	require.False(t, ScoreQuestion(q, Answer{Selected: []string{"A", "B", "C"}}))
}

func TestScoreQuestion_CheckboxScalarKeyCoerced(t *testing.T) {
	// The stored key may be a scalar even for checkbox questions.
	q := models.QuizQuestion{
		ID:            uuid.New(),
		Kind:          models.QuestionKindCheckbox,
		CorrectAnswer: models.AnswerKey{Values: []string{"A"}},
	}
	require.True(t, ScoreQuestion(q, Answer{Selected: []string{"A"}}))
	require.False(t, ScoreQuestion(q, Answer{Selected: []string{"B"}}))
}

func TestScoreQuestion_EmptyCheckboxAnswerIncorrect(t *testing.T) {
	q := checkboxQuestion("A")
	require.False(t, ScoreQuestion(q, Answer{}))
	require.False(t, ScoreQuestion(q, Answer{Selected: []string{}}))
}

func TestScoreQuiz_SevenOfTenIsSeventyPercent(t *testing.T) {
	questions := make([]models.QuizQuestion, 0, 10)
	answers := map[string]Answer{}
	for i := 0; i < 10; i++ {
		q := mcQuestion("A")
		q.Question = fmt.Sprintf("q%d", i)
		questions = append(questions, q)
		if i < 7 {
			answers[q.ID.String()] = Answer{Value: "A"}
		} else {
			answers[q.ID.String()] = Answer{Value: "B"}
		}
	}

	score := ScoreQuiz(questions, answers)
	require.Equal(t, Score{Correct: 7, Total: 10, Percentage: 70}, score)
}

func TestScoreQuiz_UnansweredCountedInTotal(t *testing.T) {
	questions := []models.QuizQuestion{mcQuestion("A"), mcQuestion("B"), checkboxQuestion("C")}
	answers := map[string]Answer{
		questions[0].ID.String(): {Value: "A"},
	}

	score := ScoreQuiz(questions, answers)
	require.Equal(t, Score{Correct: 1, Total: 3, Percentage: 33}, score)
}

func TestScoreQuiz_Idempotent(t *testing.T) {
	questions := []models.QuizQuestion{mcQuestion("A"), checkboxQuestion("B", "C")}
	answers := map[string]Answer{
		questions[0].ID.String(): {Value: "A"},
		questions[1].ID.String(): {Selected: []string{"C", "B"}},
	}

	first := ScoreQuiz(questions, answers)
	second := ScoreQuiz(questions, answers)
	require.Equal(t, first, second)
	require.Equal(t, Score{Correct: 2, Total: 2, Percentage: 100}, first)
}

func TestScoreQuiz_EmptyQuizZeroPercentage(t *testing.T) {
	score := ScoreQuiz(nil, nil)
	require.Equal(t, Score{Correct: 0, Total: 0, Percentage: 0}, score)
}
