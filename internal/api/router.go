package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Service       *engine.Service
	JWTSecret     string
	DefaultWindow engine.Window
	// Health probes the storage backend. Nil reports healthy.
	Health func(ctx context.Context) error
	Logger *zap.Logger
}

// NewRouter wires every handler under /v1. Only /v1/health is public.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(cfg.Logger.Named("http")), gin.Recovery())

	// Load balancers probe this without a token.
	r.GET("/v1/health", func(c *gin.Context) {
		if cfg.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Health(ctx); err != nil {
				cfg.Logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger := cfg.Logger.Named("api")
	shoutouts := NewShoutOutHandler(cfg.Service, cfg.DefaultWindow, logger)
	engagement := NewEngagementHandler(cfg.Service, logger)
	ranking := NewRankingHandler(cfg.Service, cfg.DefaultWindow, logger)
	moderation := NewModerationHandler(cfg.Service, logger)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	v1.GET("/feed", shoutouts.Feed)
	v1.GET("/dashboard", shoutouts.Dashboard)
	v1.POST("/shoutouts", shoutouts.Create)
	v1.GET("/shoutouts/mine", shoutouts.Mine)
	v1.PUT("/shoutouts/:id", shoutouts.Edit)
	v1.DELETE("/shoutouts/:id", shoutouts.Delete)

	v1.GET("/shoutouts/:id/reactions", engagement.Reactions)
	v1.POST("/shoutouts/:id/reactions", engagement.ToggleReaction)
	v1.GET("/shoutouts/:id/comments", engagement.Comments)
	v1.POST("/shoutouts/:id/comments", engagement.AddComment)
	v1.PUT("/comments/:id", engagement.EditComment)
	v1.DELETE("/comments/:id", engagement.DeleteComment)

	v1.GET("/leaderboard", ranking.Leaderboard)
	v1.GET("/users/:id/score", ranking.Score)
	v1.GET("/users/:id/achievements", ranking.UserAchievements)
	v1.GET("/achievements", ranking.MyAchievements)

	v1.POST("/shoutouts/:id/reports", moderation.Report)
	admin := v1.Group("/admin")
	admin.GET("/reports", moderation.Pending)
	admin.PUT("/reports/:id/resolve", moderation.Resolve)
	admin.GET("/shoutouts/:id", moderation.Review)

	return r
}
