package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"studypilot/internal/db"
	"studypilot/internal/gemini"
	"studypilot/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// UserProfile stores information about the authenticated user.
type UserProfile struct {
	DatabaseID    uuid.UUID `json:"-"`
	GoogleID      string    `json:"id"`
	Email         string    `json:"email"`
	VerifiedEmail bool      `json:"verified_email"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture"`
}

// Session keys shared with the auth middleware.
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
)

// Handler contains the API handlers' dependencies.
type Handler struct {
	OauthConfig   *oauth2.Config
	StoreName     string
	DB            *db.DB
	Gemini        *gemini.Client
	Storage       *storage.Client
	webhookURL    string
	webhookClient *http.Client
}

// NewHandler creates a new Handler. The ops webhook is optional; when
// NOTIFY_WEBHOOK_URL is unset, notifications are silently skipped.
func NewHandler(oauth *oauth2.Config, store string, database *db.DB, geminiClient *gemini.Client, storageClient *storage.Client) *Handler {
	return &Handler{
		OauthConfig: oauth,
		StoreName:   store,
		DB:          database,
		Gemini:      geminiClient,
		Storage:     storageClient,
		webhookURL:  os.Getenv("NOTIFY_WEBHOOK_URL"),
		webhookClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type webhookPayload struct {
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Time    string            `json:"time"`
}

// notify posts an event to the ops webhook. It runs asynchronously so it
// never blocks or fails the main request flow.
func (h *Handler) notify(title, message string, fields map[string]string) {
	if h.webhookURL == "" {
		return
	}
	go func() {
		payload := webhookPayload{
			Title:   title,
			Message: message,
			Fields:  fields,
			Time:    time.Now().Format(time.RFC3339),
		}
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("ERROR: Failed to marshal webhook payload: %v", err)
			return
		}
		resp, err := h.webhookClient.Post(h.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("ERROR: Failed to send webhook notification: %v", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			log.Printf("ERROR: Webhook notification failed with status %d: %s", resp.StatusCode, string(respBody))
		}
	}()
}

// handleError logs an error with its context, notifies the ops webhook for
// server-side failures, and aborts the request with a JSON error body.
func (h *Handler) handleError(c *gin.Context, userID uuid.UUID, statusCode int, errorContext string, err error) {
	log.Printf("ERROR: %s: %v (UserID: %s)", errorContext, err, userID)

	if statusCode >= http.StatusInternalServerError {
		fields := map[string]string{
			"path":   c.Request.URL.Path,
			"status": http.StatusText(statusCode),
		}
		if userID != uuid.Nil {
			fields["user_id"] = userID.String()
		}
		h.notify("API Error: "+errorContext, err.Error(), fields)
	}

	c.AbortWithStatusJSON(statusCode, gin.H{"error": errorContext})
}

// currentUserID reads the authenticated user's database id from the context,
// set by the AuthRequired middleware.
func currentUserID(c *gin.Context) uuid.UUID {
	value, exists := c.Get("userID")
	if !exists {
		return uuid.Nil
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}
