package main

import (
	"context"
	"database/sql"
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studypilot/internal/api"
	"studypilot/internal/api/handlers"
	"studypilot/internal/db"
	"studypilot/internal/gemini"
	"studypilot/internal/storage"

	"github.com/gin-contrib/sessions"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for the session store's database/sql pool
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const storeName = "studypilot_session"

var (
	googleOauthConfig *oauth2.Config
	sessionSecretKey  []byte
)

func init() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found, relying on system environment variables")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("FATAL: SESSION_SECRET must be set")
	}
	sessionSecretKey = []byte(secret)

	// Session values are gob-encoded; the profile type must be registered.
	gob.Register(handlers.UserProfile{})

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("FATAL: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL must be set")
	}

	googleOauthConfig = &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.NewDB(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	geminiClient, err := gemini.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	router := gin.Default()

	// The session store uses its own database/sql pool on the pgx stdlib
	// driver; the application pool stays pgx-native.
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("FATAL: DATABASE_URL must be set")
	}
	sessionDB, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database connection for session store: %v", err)
	}
	defer sessionDB.Close()
	if err := sessionDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database for session store: %v", err)
	}

	store, err := gsessions.NewStore(sessionDB, sessionSecretKey)
	if err != nil {
		log.Fatalf("Failed to create postgres session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   os.Getenv("SESSION_SECURE") == "true",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, store))

	handler := handlers.NewHandler(googleOauthConfig, storeName, database, geminiClient, storageClient)
	api.SetupRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited properly")
}
