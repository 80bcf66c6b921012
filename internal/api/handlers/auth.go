package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"

	"studypilot/internal/db"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// HandleGoogleLogin initiates the Google OAuth flow.
func (h *Handler) HandleGoogleLogin(c *gin.Context) {
	session := sessions.Default(c)

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Failed to generate state", err)
		return
	}
	state := base64.URLEncoding.EncodeToString(stateBytes)

	session.Set(OauthStateSessionKey, state)
	if err := session.Save(); err != nil {
		h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Failed to save session", err)
		return
	}

	url := h.OauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// HandleGoogleCallback handles the redirect back from Google, upserting the
// user record and storing the profile in the session.
func (h *Handler) HandleGoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState := session.Get(OauthStateSessionKey)
	queryState := c.Query("state")

	if queryState == "" || savedState == nil || savedState.(string) != queryState {
		log.Printf("WARN: Invalid state parameter. Session state: %v, Query state: %s", savedState, queryState)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter"})
		return
	}

	token, err := h.OauthConfig.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Failed to exchange code", err)
		return
	}
	if !token.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Retrieved invalid token"})
		return
	}

	client := h.OauthConfig.Client(context.Background(), token)
	oauth2Service, err := oauth2api.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Failed to create OAuth2 service", err)
		return
	}

	userinfo, err := oauth2Service.Userinfo.V2.Me.Get().Do()
	if err != nil {
		h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Failed to get user info", err)
		return
	}

	ctx := c.Request.Context()
	dbUser, err := h.DB.Queries.GetUserByEmail(ctx, userinfo.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Database error checking user profile", err)
			return
		}
		log.Printf("INFO: User with email %s not found, creating new user", userinfo.Email)
		dbUser, err = h.DB.Queries.CreateUser(ctx, db.CreateUserParams{
			Email:    userinfo.Email,
			Name:     userinfo.Name,
			GoogleID: userinfo.Id,
			Picture:  userinfo.Picture,
		})
		if err != nil {
			h.handleError(c, uuid.Nil, http.StatusInternalServerError, "Failed to create user profile", err)
			return
		}
		h.notify("New Signup", dbUser.Email, map[string]string{"user_id": dbUser.ID.String()})
	} else {
		log.Printf("INFO: Found existing user %s for email %s", dbUser.ID, dbUser.Email)
	}

	profile := UserProfile{
		DatabaseID:    dbUser.ID,
		GoogleID:      userinfo.Id,
		Email:         userinfo.Email,
		VerifiedEmail: userinfo.VerifiedEmail != nil && *userinfo.VerifiedEmail,
		Name:          userinfo.Name,
		Picture:       userinfo.Picture,
	}

	session.Set(ProfileSessionKey, profile)
	session.Delete(OauthStateSessionKey)
	if err := session.Save(); err != nil {
		h.handleError(c, dbUser.ID, http.StatusInternalServerError, "Failed to save session", err)
		return
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, frontendURL)
}

// HandleUserProfile returns the authenticated user's profile.
func (h *Handler) HandleUserProfile(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated or session invalid"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// HandleLogout clears the session.
func (h *Handler) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	userID := currentUserID(c)

	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session during logout for user %s: %v", userID, err)
	}

	log.Printf("INFO: Session cleared for user %s", userID)
	c.Status(http.StatusOK)
}

// HandleAuthStatus reports whether the caller has an authenticated session.
func (h *Handler) HandleAuthStatus(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          profile,
	})
}
