package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"studypilot/internal/db"
	"studypilot/internal/extract"
	"studypilot/internal/models"
	"studypilot/internal/prompt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// maxChatFilesPerCategory caps attachments per media category in one turn.
const maxChatFilesPerCategory = 5

// conversationTitleLimit is how much of the first message seeds the title.
const conversationTitleLimit = 50

// ChatRequest is the JSON body for a text-only chat turn. File-carrying
// turns arrive as multipart form data with the same field names.
type ChatRequest struct {
	Content        string `json:"content" form:"content"`
	ConversationID string `json:"conversation_id" form:"conversation_id"`
}

// ChatResponse returns the conversation and both appended turns.
type ChatResponse struct {
	Conversation     models.Conversation `json:"conversation"`
	UserMessage      models.Message      `json:"user_message"`
	AssistantMessage models.Message      `json:"assistant_message"`
}

type chatAttachment struct {
	header    *multipart.FileHeader
	mediaType string
	extracted extract.Result
	stored    models.File
	err       error
}

// chatMessageContent is the content persisted for a user turn. A files-only
// turn records the placeholder rather than an empty message.
func chatMessageContent(raw string) string {
	if raw == "" {
		return prompt.DefaultChatContent
	}
	return raw
}

// conversationTitle derives a new conversation's title from its first
// message, capped at a rune boundary.
func conversationTitle(content string) string {
	return prompt.Truncate(chatMessageContent(content), conversationTitleLimit)
}

// fileCategory buckets a media type for the per-turn attachment limit.
func fileCategory(mediaType string) string {
	switch {
	case mediaType == "application/pdf":
		return "pdf"
	case strings.HasPrefix(mediaType, "text/"):
		return "text"
	case strings.HasPrefix(mediaType, "image/"):
		return "image"
	default:
		return "blob"
	}
}

// HandleChat runs one chat turn: store any attached files, append the user
// message, invoke generation (multimodal when any attachment is an image),
// and append the assistant reply. The conversation is created lazily on the
// first turn.
func (h *Handler) HandleChat(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	var req ChatRequest
	var fileHeaders []*multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			h.handleError(c, userID, http.StatusBadRequest, "Invalid chat request", err)
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			h.handleError(c, userID, http.StatusBadRequest, "Invalid multipart form", err)
			return
		}
		fileHeaders = form.File["files"]
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid chat request", err)
		return
	}

	if req.Content == "" && len(fileHeaders) == 0 {
		h.handleError(c, userID, http.StatusBadRequest, "Empty chat turn",
			errors.New("a chat turn needs text or at least one file"))
		return
	}

	attachments, err := h.admitChatFiles(fileHeaders)
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Files rejected by upload policy", err)
		return
	}

	// Ownership is settled before any extraction or storage work happens,
	// so a turn against someone else's conversation uploads nothing.
	conversation, err := h.resolveConversation(c, userID, req)
	if err != nil {
		return // resolveConversation already wrote the response
	}

	// Extraction and blob upload are independent per file; run them
	// concurrently. Ownership rows are written afterwards so a storage
	// failure aborts before anything is recorded.
	if err := h.processChatFiles(c, userID, attachments); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to store attached files", err)
		return
	}

	userMessage, err := h.DB.Queries.CreateMessage(ctx, db.CreateMessageParams{
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        chatMessageContent(req.Content),
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to record message", err)
		return
	}
	for _, att := range attachments {
		if err := h.DB.Queries.LinkMessageFile(ctx, userMessage.ID, att.stored.ID); err != nil {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to link attached file", err)
			return
		}
		userMessage.AttachedFiles = append(userMessage.AttachedFiles, models.AttachedFile{
			ID:           att.stored.ID,
			OriginalName: att.stored.OriginalName,
			MediaType:    att.stored.MediaType,
			SizeBytes:    att.stored.SizeBytes,
			URL:          att.stored.URL,
		})
	}

	contexts := make([]prompt.FileContext, 0, len(attachments))
	for _, att := range attachments {
		contexts = append(contexts, prompt.FileContext{
			Text:  att.extracted.Text,
			Image: att.extracted.Image,
		})
	}
	assembled := prompt.Chat(req.Content, contexts)

	var reply string
	if assembled.Multimodal() {
		reply, err = h.Gemini.GenerateWithImages(ctx, assembled.Prompt, assembled.Images)
	} else {
		reply, err = h.Gemini.Generate(ctx, assembled.Prompt)
	}
	if err != nil {
		h.handleError(c, userID, http.StatusBadGateway, "Generation failed", err)
		return
	}

	assistantMessage, err := h.DB.Queries.CreateMessage(ctx, db.CreateMessageParams{
		ConversationID: conversation.ID,
		Role:           models.RoleAssistant,
		Content:        reply,
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to record assistant message", err)
		return
	}

	log.Printf("INFO: Chat turn in conversation %s for user %s (%d files)", conversation.ID, userID, len(attachments))
	c.JSON(http.StatusOK, ChatResponse{
		Conversation:     conversation,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	})
}

// admitChatFiles applies the per-file size policy and the per-category count
// cap to a chat turn's attachments.
func (h *Handler) admitChatFiles(fileHeaders []*multipart.FileHeader) ([]*chatAttachment, error) {
	counts := map[string]int{}
	attachments := make([]*chatAttachment, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		mediaType := header.Header.Get("Content-Type")
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		if err := admitFile(mediaType, header.Size); err != nil {
			return nil, err
		}
		category := fileCategory(mediaType)
		counts[category]++
		if counts[category] > maxChatFilesPerCategory {
			return nil, fmt.Errorf("at most %d %s files per message", maxChatFilesPerCategory, category)
		}
		attachments = append(attachments, &chatAttachment{header: header, mediaType: mediaType})
	}
	return attachments, nil
}

// processChatFiles extracts content from and uploads each attachment
// concurrently, then records the file rows sequentially.
func (h *Handler) processChatFiles(c *gin.Context, userID uuid.UUID, attachments []*chatAttachment) error {
	ctx := c.Request.Context()

	var wg sync.WaitGroup
	for _, att := range attachments {
		wg.Add(1)
		go func(att *chatAttachment) {
			defer wg.Done()

			src, err := att.header.Open()
			if err != nil {
				att.err = err
				return
			}
			defer src.Close()
			data, err := io.ReadAll(src)
			if err != nil {
				att.err = err
				return
			}

			att.extracted = extract.Extract(data, att.mediaType)

			result, err := h.Storage.Upload(ctx, data, att.mediaType, att.header.Filename)
			if err != nil {
				att.err = err
				return
			}
			att.stored = models.File{
				StorageKey:   result.Key,
				OriginalName: att.header.Filename,
				MediaType:    att.mediaType,
				SizeBytes:    att.header.Size,
				URL:          result.URL,
			}
		}(att)
	}
	wg.Wait()

	for _, att := range attachments {
		if att.err != nil {
			return att.err
		}
	}

	for _, att := range attachments {
		var pageCount pgtype.Int4
		if att.extracted.Pages != nil {
			pageCount = pgtype.Int4{Int32: *att.extracted.Pages, Valid: true}
		}
		fileRow, err := h.DB.Queries.CreateFile(ctx, db.CreateFileParams{
			StorageKey:   att.stored.StorageKey,
			OriginalName: att.stored.OriginalName,
			MediaType:    att.stored.MediaType,
			SizeBytes:    att.stored.SizeBytes,
			PageCount:    pageCount,
			URL:          att.stored.URL,
			OwnerID:      userID,
		})
		if err != nil {
			return err
		}
		att.stored = fileRow
	}
	return nil
}

// resolveConversation loads the referenced conversation (enforcing
// ownership) or creates one titled from the first message. On failure it
// writes the error response and returns a non-nil error.
func (h *Handler) resolveConversation(c *gin.Context, userID uuid.UUID, req ChatRequest) (models.Conversation, error) {
	ctx := c.Request.Context()

	if req.ConversationID != "" {
		conversationID, err := uuid.Parse(req.ConversationID)
		if err != nil {
			h.handleError(c, userID, http.StatusBadRequest, "Invalid conversation id", err)
			return models.Conversation{}, err
		}
		conversation, err := h.DB.Queries.GetConversationByID(ctx, conversationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				h.handleError(c, userID, http.StatusNotFound, "Conversation not found", err)
				return models.Conversation{}, err
			}
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to look up conversation", err)
			return models.Conversation{}, err
		}
		if conversation.OwnerID != userID {
			err := errors.New("conversation owner mismatch")
			h.handleError(c, userID, http.StatusForbidden, "Conversation not owned by user", err)
			return models.Conversation{}, err
		}
		return conversation, nil
	}

	conversation, err := h.DB.Queries.CreateConversation(ctx, db.CreateConversationParams{
		OwnerID: userID,
		Title:   conversationTitle(req.Content),
		Kind:    models.ConversationKindChat,
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to create conversation", err)
		return models.Conversation{}, err
	}
	return conversation, nil
}
