package handlers

import (
	"log"
	"net/http"

	"studypilot/internal/db"
	"studypilot/internal/extract"
	"studypilot/internal/models"
	"studypilot/internal/prompt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgtype"
)

// SummarizeRequest asks for a summary of a stored file.
type SummarizeRequest struct {
	FileID string `json:"file_id" binding:"required"`
}

// SummarizeResponse carries the generated summary and the conversation that
// records it.
type SummarizeResponse struct {
	ConversationID string `json:"conversation_id"`
	Summary        string `json:"summary"`
}

// HandleSummarize generates a document summary and records it as a new
// summary conversation holding a single assistant message. The conversation
// is created before generation, so a failed generation leaves an empty
// conversation rather than losing the association.
func (h *Handler) HandleSummarize(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid summarize request", err)
		return
	}

	fileRow, ok := h.ownedFile(c, userID, req.FileID)
	if !ok {
		return
	}

	data, err := h.Storage.Download(ctx, fileRow.URL)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to fetch file content", err)
		return
	}
	extracted := extract.Extract(data, fileRow.MediaType)

	var folderID pgtype.UUID
	if fileRow.FolderID != nil {
		folderID = pgtype.UUID{Bytes: *fileRow.FolderID, Valid: true}
	}
	conversation, err := h.DB.Queries.CreateConversation(ctx, db.CreateConversationParams{
		OwnerID:  userID,
		Title:    "Summary: " + fileRow.OriginalName,
		Kind:     models.ConversationKindSummary,
		FileID:   pgtype.UUID{Bytes: fileRow.ID, Valid: true},
		FolderID: folderID,
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to create conversation", err)
		return
	}

	summary, err := h.Gemini.Generate(ctx, prompt.Summary(extracted.Text))
	if err != nil {
		h.handleError(c, userID, http.StatusBadGateway, "Generation failed", err)
		return
	}

	if _, err := h.DB.Queries.CreateMessage(ctx, db.CreateMessageParams{
		ConversationID: conversation.ID,
		Role:           models.RoleAssistant,
		Content:        summary,
	}); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to record summary", err)
		return
	}

	log.Printf("INFO: Summarized file %s into conversation %s for user %s", fileRow.ID, conversation.ID, userID)
	c.JSON(http.StatusOK, SummarizeResponse{
		ConversationID: conversation.ID.String(),
		Summary:        summary,
	})
}
