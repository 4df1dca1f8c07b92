package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"pointplay-backend/internal/middleware"
	"pointplay-backend/internal/services"
	"pointplay-backend/internal/store"
)

type RouterDeps struct {
	Sessions      *services.SessionManager
	JWT           *services.JWTService
	Hub           *WebSocketHub
	Limiter       store.RateLimiter
	PlayRateLimit int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	authHandler := NewAuthHandler(deps.Sessions, deps.JWT)
	userHandler := NewUserHandler(deps.Sessions)
	gameHandler := NewGameHandler(deps.Sessions)
	wsHandler := NewWebSocketHandler(deps.Sessions, deps.Hub)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	router.POST("/auth/session", authHandler.StartSession)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.JWT))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.POST("/logout", userHandler.Logout)
		protected.PUT("/username", userHandler.SetUsername)
		protected.GET("/activity", userHandler.GetActivity)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		protected.POST("/bonus", gameHandler.ClaimBonus)
		protected.POST("/reset", gameHandler.Reset)

		protected.GET("/fairness", gameHandler.GetFairness)
		protected.POST("/verify", gameHandler.VerifyDraw)

		play := middleware.RateLimitMiddleware(deps.Limiter, "play", deps.PlayRateLimit, time.Minute)

		coin := protected.Group("/coinflip")
		{
			coin.POST("/choice", gameHandler.SelectCoinSide)
			coin.POST("/play", play, gameHandler.PlayCoinFlip)
		}

		dice := protected.Group("/dice")
		{
			dice.POST("/play", play, gameHandler.PlayDiceRoll)
		}
	}

	return router
}
