package api

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"studypilot/internal/api/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CORSMiddleware allows the configured frontend origin with credentials.
func CORSMiddleware() gin.HandlerFunc {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	return cors.New(cors.Config{
		AllowOrigins:     []string{strings.TrimSuffix(frontendURL, "/")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// AuthRequired ensures the caller has a valid session and puts the internal
// user id into the request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileValue := session.Get(handlers.ProfileSessionKey)

		profile, ok := profileValue.(handlers.UserProfile)
		if !ok || profileValue == nil || profile.DatabaseID == uuid.Nil {
			log.Printf("WARN: AuthRequired failed - profile not found or missing database id in session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required or session invalid"})
			return
		}

		c.Set("userID", profile.DatabaseID)
		c.Set("userProfile", profile)
		c.Next()
	}
}
