package handlers

import (
	"errors"
	"log"
	"net/http"

	"studypilot/internal/extract"
	"studypilot/internal/models"
	"studypilot/internal/prompt"
	"studypilot/internal/quiz"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GenerateQuizRequest asks for a quiz built from a stored file, optionally
// styled after a previous-year-questions reference file.
type GenerateQuizRequest struct {
	FileID    string `json:"file_id" binding:"required"`
	PyqFileID string `json:"pyq_file_id"`
}

// GenerateQuizResponse reports the created quiz. A question count of zero
// means the model's output could not be parsed; the quiz still exists.
type GenerateQuizResponse struct {
	QuizID        string `json:"quiz_id"`
	QuestionCount int    `json:"question_count"`
}

// HandleGenerateQuiz generates and persists a quiz from a file's extracted
// text. The file must live in a folder, which becomes the quiz's home.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid quiz request", err)
		return
	}

	fileRow, ok := h.ownedFile(c, userID, req.FileID)
	if !ok {
		return
	}
	if fileRow.FolderID == nil {
		h.handleError(c, userID, http.StatusBadRequest, "File must be in a folder to generate a quiz",
			errors.New("file has no folder"))
		return
	}

	// Ownership is settled before any download or generation work starts.
	var pyqFile models.File
	hasPyq := false
	if req.PyqFileID != "" {
		pyqFile, ok = h.ownedFile(c, userID, req.PyqFileID)
		if !ok {
			return
		}
		hasPyq = true
	}

	data, err := h.Storage.Download(ctx, fileRow.URL)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to fetch file content", err)
		return
	}
	sourceText := extract.Extract(data, fileRow.MediaType).Text

	referenceText := ""
	if hasPyq {
		pyqData, err := h.Storage.Download(ctx, pyqFile.URL)
		if err != nil {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to fetch reference file content", err)
			return
		}
		referenceText = extract.Extract(pyqData, pyqFile.MediaType).Text
	}

	raw, err := h.Gemini.Generate(ctx, prompt.Quiz(sourceText, referenceText))
	if err != nil {
		h.handleError(c, userID, http.StatusBadGateway, "Generation failed", err)
		return
	}

	tx, err := h.DB.Pool.Begin(ctx)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to start transaction", err)
		return
	}
	defer tx.Rollback(ctx)

	result, err := quiz.Compile(ctx, h.DB.Queries.WithTx(tx),
		"Quiz: "+fileRow.OriginalName, *fileRow.FolderID, fileRow.ID, raw)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to save quiz", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to commit quiz", err)
		return
	}

	c.JSON(http.StatusCreated, GenerateQuizResponse{
		QuizID:        result.Quiz.ID.String(),
		QuestionCount: len(result.Questions),
	})
}

// HandleGetQuiz returns a quiz with its questions in compiled order.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	userID := currentUserID(c)

	quizRow, ok := h.ownedQuiz(c, userID, c.Param("quizId"))
	if !ok {
		return
	}

	questions, err := h.DB.Queries.ListQuizQuestions(c.Request.Context(), quizRow.ID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list quiz questions", err)
		return
	}
	c.JSON(http.StatusOK, quiz.CompileResult{Quiz: quizRow, Questions: questions})
}

// HandleListFolderQuizzes lists the quizzes in a folder the caller owns.
func (h *Handler) HandleListFolderQuizzes(c *gin.Context) {
	userID := currentUserID(c)

	folderID, err := uuid.Parse(c.Param("folderId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid folder id", err)
		return
	}
	if _, ok := h.ownedFolder(c, userID, folderID); !ok {
		return
	}

	quizzes, err := h.DB.Queries.ListQuizzesByFolder(c.Request.Context(), folderID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list quizzes", err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// HandleDeleteQuiz removes a quiz the caller owns; questions cascade.
func (h *Handler) HandleDeleteQuiz(c *gin.Context) {
	userID := currentUserID(c)

	quizRow, ok := h.ownedQuiz(c, userID, c.Param("quizId"))
	if !ok {
		return
	}

	if err := h.DB.Queries.DeleteQuiz(c.Request.Context(), quizRow.ID); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete quiz", err)
		return
	}

	log.Printf("INFO: Deleted quiz %s for user %s", quizRow.ID, userID)
	c.Status(http.StatusNoContent)
}

// ScoreQuizRequest maps question ids to the user's answers.
type ScoreQuizRequest struct {
	Answers map[string]quiz.Answer `json:"answers" binding:"required"`
}

// HandleScoreQuiz grades a submission against the stored answer key. Nothing
// is persisted; scoring the same submission twice gives the same result.
func (h *Handler) HandleScoreQuiz(c *gin.Context) {
	userID := currentUserID(c)

	quizRow, ok := h.ownedQuiz(c, userID, c.Param("quizId"))
	if !ok {
		return
	}

	var req ScoreQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid score request", err)
		return
	}

	questions, err := h.DB.Queries.ListQuizQuestions(c.Request.Context(), quizRow.ID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list quiz questions", err)
		return
	}

	c.JSON(http.StatusOK, quiz.ScoreQuiz(questions, req.Answers))
}

// ownedQuiz resolves a quiz id path parameter and enforces ownership through
// the quiz's folder. On failure it writes the error response and returns
// ok=false.
func (h *Handler) ownedQuiz(c *gin.Context, userID uuid.UUID, rawID string) (models.Quiz, bool) {
	quizID, err := uuid.Parse(rawID)
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid quiz id", err)
		return models.Quiz{}, false
	}
	quizRow, err := h.DB.Queries.GetQuizByID(c.Request.Context(), quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Quiz not found", err)
			return models.Quiz{}, false
		}
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to look up quiz", err)
		return models.Quiz{}, false
	}
	if _, ok := h.ownedFolder(c, userID, quizRow.FolderID); !ok {
		return models.Quiz{}, false
	}
	return quizRow, true
}
