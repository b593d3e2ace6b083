package http

import (
	"github.com/gin-gonic/gin"

	"github.com/talaria-id/talaria/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, sessions *SessionBridge) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService, sessions)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/callback", handlers.Callback)
		auth.GET("/poll", handlers.Poll)
		auth.POST("/login", handlers.Login)
		auth.POST("/register", handlers.Register)
		auth.POST("/refresh", handlers.Refresh)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
