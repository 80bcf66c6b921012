package quiz

import (
	"math"
	"sort"

	"studypilot/internal/models"
)

// Answer is a user's submitted answer for one question. For checkbox
// questions Selected holds the chosen options; otherwise Value holds the
// single choice.
type Answer struct {
	Value    string   `json:"value,omitempty"`
	Selected []string `json:"selected,omitempty"`
}

// Score is the aggregate result of grading one submission.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ScoreQuestion grades a single question. Multiple-choice and dropdown
// require exact string equality; checkbox requires set equality, order
// independent, with a scalar stored answer coerced to a one-element set.
// A missing or empty answer is incorrect.
func ScoreQuestion(question models.QuizQuestion, answer Answer) bool {
	if question.Kind == models.QuestionKindCheckbox {
		return setsEqual(answer.Selected, question.CorrectAnswer.Values)
	}
	if answer.Value == "" {
		return false
	}
	return len(question.CorrectAnswer.Values) == 1 && answer.Value == question.CorrectAnswer.Values[0]
}

// ScoreQuiz grades a full submission. Unanswered questions count against the
// total. Scoring is pure; nothing is persisted.
func ScoreQuiz(questions []models.QuizQuestion, answers map[string]Answer) Score {
	score := Score{Total: len(questions)}
	for _, question := range questions {
		if ScoreQuestion(question, answers[question.ID.String()]) {
			score.Correct++
		}
	}
	if score.Total > 0 {
		score.Percentage = int(math.Round(float64(score.Correct) / float64(score.Total) * 100))
	}
	return score
}

func setsEqual(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
