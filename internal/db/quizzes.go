package db

import (
	"context"
	"encoding/json"

	"studypilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateQuizParams struct {
	Title    string
	FolderID uuid.UUID
	FileID   uuid.UUID
}

const createQuiz = `
INSERT INTO quizzes (title, folder_id, file_id)
VALUES ($1, $2, $3)
RETURNING id, title, folder_id, file_id, created_at
`

// CreateQuiz inserts a quiz header row and returns it.
func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (models.Quiz, error) {
	row := q.db.QueryRow(ctx, createQuiz, arg.Title, arg.FolderID, arg.FileID)
	return scanQuiz(row)
}

const getQuizByID = `
SELECT id, title, folder_id, file_id, created_at
FROM quizzes
WHERE id = $1
`

// GetQuizByID fetches a quiz by id, returning pgx.ErrNoRows if absent.
func (q *Queries) GetQuizByID(ctx context.Context, id uuid.UUID) (models.Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, getQuizByID, id))
}

const listQuizzesByFolder = `
SELECT id, title, folder_id, file_id, created_at
FROM quizzes
WHERE folder_id = $1
ORDER BY created_at DESC
`

// ListQuizzesByFolder returns a folder's quizzes, newest first.
func (q *Queries) ListQuizzesByFolder(ctx context.Context, folderID uuid.UUID) ([]models.Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzesByFolder, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

const deleteQuiz = `DELETE FROM quizzes WHERE id = $1`

// DeleteQuiz removes a quiz; its questions cascade.
func (q *Queries) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteQuiz, id)
	return err
}

type CreateQuizQuestionParams struct {
	QuizID        uuid.UUID
	SortOrder     int32
	Question      string
	Kind          string
	Options       []string
	CorrectAnswer models.AnswerKey
	Explanation   string
}

const createQuizQuestion = `
INSERT INTO quiz_questions (quiz_id, sort_order, question, kind, options, correct_answer, explanation)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`

// CreateQuizQuestion inserts one question. Options and the answer key are
// stored as jsonb so the answer's scalar-vs-array shape survives round trips.
func (q *Queries) CreateQuizQuestion(ctx context.Context, arg CreateQuizQuestionParams) (models.QuizQuestion, error) {
	options := arg.Options
	if options == nil {
		options = []string{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return models.QuizQuestion{}, err
	}
	answerJSON, err := json.Marshal(arg.CorrectAnswer)
	if err != nil {
		return models.QuizQuestion{}, err
	}

	question := models.QuizQuestion{
		QuizID:        arg.QuizID,
		SortOrder:     arg.SortOrder,
		Question:      arg.Question,
		Kind:          arg.Kind,
		Options:       options,
		CorrectAnswer: arg.CorrectAnswer,
		Explanation:   arg.Explanation,
	}
	row := q.db.QueryRow(ctx, createQuizQuestion,
		arg.QuizID, arg.SortOrder, arg.Question, arg.Kind,
		optionsJSON, answerJSON, arg.Explanation)
	if err := row.Scan(&question.ID); err != nil {
		return models.QuizQuestion{}, err
	}
	return question, nil
}

const listQuizQuestions = `
SELECT id, quiz_id, sort_order, question, kind, options, correct_answer, explanation
FROM quiz_questions
WHERE quiz_id = $1
ORDER BY sort_order ASC
`

// ListQuizQuestions returns a quiz's questions in their compiled order.
func (q *Queries) ListQuizQuestions(ctx context.Context, quizID uuid.UUID) ([]models.QuizQuestion, error) {
	rows, err := q.db.Query(ctx, listQuizQuestions, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	for rows.Next() {
		var question models.QuizQuestion
		var optionsJSON, answerJSON []byte
		if err := rows.Scan(&question.ID, &question.QuizID, &question.SortOrder,
			&question.Question, &question.Kind, &optionsJSON, &answerJSON,
			&question.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answerJSON, &question.CorrectAnswer); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func scanQuiz(row pgx.Row) (models.Quiz, error) {
	var quiz models.Quiz
	err := row.Scan(&quiz.ID, &quiz.Title, &quiz.FolderID, &quiz.FileID, &quiz.CreatedAt)
	return quiz, err
}
