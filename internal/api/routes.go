package api

import (
	"studypilot/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every API route on the router.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.Use(CORSMiddleware())

	// Public auth routes
	router.GET("/login", handler.HandleGoogleLogin)
	router.GET("/auth/google/callback", handler.HandleGoogleCallback)

	api := router.Group("/api")
	{
		api.GET("/auth/status", handler.HandleAuthStatus)

		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/user/profile", handler.HandleUserProfile)
			authorized.POST("/logout", handler.HandleLogout)

			// Files
			authorized.POST("/files", handler.HandleUploadFile)
			authorized.GET("/files/:fileId/download", handler.HandleDownloadFile)
			authorized.DELETE("/files/:fileId", handler.HandleDeleteFile)

			// Folders
			authorized.POST("/folders", handler.HandleCreateFolder)
			authorized.GET("/folders", handler.HandleFolderTree)
			authorized.PUT("/folders/reorder", handler.HandleReorderFolders)
			authorized.PUT("/folders/:folderId", handler.HandleRenameFolder)
			authorized.DELETE("/folders/:folderId", handler.HandleDeleteFolder)
			authorized.GET("/folders/:folderId/files", handler.HandleListFolderFiles)
			authorized.GET("/folders/:folderId/quizzes", handler.HandleListFolderQuizzes)

			// Chat and summarization
			authorized.POST("/chat", handler.HandleChat)
			authorized.POST("/summarize", handler.HandleSummarize)
			authorized.GET("/conversations", handler.HandleListConversations)
			authorized.GET("/conversations/:conversationId/messages", handler.HandleListMessages)

			// Quizzes
			authorized.POST("/quizzes/generate", handler.HandleGenerateQuiz)
			authorized.GET("/quizzes/:quizId", handler.HandleGetQuiz)
			authorized.DELETE("/quizzes/:quizId", handler.HandleDeleteQuiz)
			authorized.POST("/quizzes/:quizId/score", handler.HandleScoreQuiz)
		}
	}
}
