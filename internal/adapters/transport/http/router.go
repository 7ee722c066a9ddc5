package http

import (
	"time"

	"github.com/avrorin/auth-api/internal/adapters/transport/http/middleware"
	"github.com/avrorin/auth-api/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface: the auth endpoints, the user
// endpoints with the bearer guard where required, and the ambient
// middleware chain.
func NewRouter(h *Handler, guard middleware.TokenValidator, cfg *config.Config, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimitPerIP(50, 100, 10_000, time.Hour))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	requireToken := middleware.RequireAccessToken(guard, log)

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.DELETE("/logout", requireToken, h.Logout)
		auth.GET("/login/google", h.GoogleLogin)
		auth.GET("/login/google/authorize", h.GoogleAuthorize)
	}

	users := router.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/forgot-password", h.ForgotPassword)
		users.POST("/check-reset-password-token/:token", h.CheckResetPasswordToken)
		users.POST("/reset-password", requireToken, h.ResetPassword)
	}

	router.GET("/health", h.Health)

	return router
}
