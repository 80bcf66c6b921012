package handlers

import (
	"errors"
	"net/http"

	"studypilot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HandleListConversations lists the caller's conversations, most recently
// active first.
func (h *Handler) HandleListConversations(c *gin.Context) {
	userID := currentUserID(c)

	conversations, err := h.DB.Queries.ListConversationsByOwner(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list conversations", err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// HandleListMessages returns a conversation's messages oldest first, with
// attached file metadata resolved.
func (h *Handler) HandleListMessages(c *gin.Context) {
	userID := currentUserID(c)

	conversation, ok := h.ownedConversation(c, userID, c.Param("conversationId"))
	if !ok {
		return
	}

	messages, err := h.DB.Queries.ListMessagesByConversation(c.Request.Context(), conversation.ID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list messages", err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ownedConversation resolves a conversation id path parameter and enforces
// ownership. On failure it writes the error response and returns ok=false.
func (h *Handler) ownedConversation(c *gin.Context, userID uuid.UUID, rawID string) (models.Conversation, bool) {
	conversationID, err := uuid.Parse(rawID)
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid conversation id", err)
		return models.Conversation{}, false
	}
	conversation, err := h.DB.Queries.GetConversationByID(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Conversation not found", err)
			return models.Conversation{}, false
		}
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to look up conversation", err)
		return models.Conversation{}, false
	}
	if conversation.OwnerID != userID {
		h.handleError(c, userID, http.StatusForbidden, "Conversation not owned by user",
			errors.New("conversation owner mismatch"))
		return models.Conversation{}, false
	}
	return conversation, true
}
