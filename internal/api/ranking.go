package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/middleware"
	"go.uber.org/zap"
)

// RankingHandler serves scores, leaderboards and achievements.
type RankingHandler struct {
	svc           *engine.Service
	defaultWindow engine.Window
	logger        *zap.Logger
}

func NewRankingHandler(svc *engine.Service, defaultWindow engine.Window, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{svc: svc, defaultWindow: defaultWindow, logger: logger}
}

func (h *RankingHandler) window(c *gin.Context) (engine.Window, error) {
	raw := c.Query("window")
	if raw == "" {
		return h.defaultWindow, nil
	}
	return engine.ParseWindow(raw)
}

// Leaderboard handles GET /v1/leaderboard
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	w, err := h.window(c)
	if err != nil {
		respondError(c, h.logger, "build leaderboard", err)
		return
	}
	topN, ok := queryInt(c, "top_n")
	if !ok {
		return
	}

	board, err := h.svc.Leaderboard(c.Request.Context(), engine.LeaderboardQuery{
		Scope:      engine.LeaderboardScope(c.Query("scope")),
		Department: c.Query("department"),
		Window:     w,
		TopN:       topN,
	})
	if err != nil {
		respondError(c, h.logger, "build leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Score handles GET /v1/users/:id/score
func (h *RankingHandler) Score(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	w, err := h.window(c)
	if err != nil {
		respondError(c, h.logger, "compute score", err)
		return
	}

	score, err := h.svc.Score(c.Request.Context(), id, w)
	if err != nil {
		respondError(c, h.logger, "compute score", err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// MyAchievements handles GET /v1/achievements
func (h *RankingHandler) MyAchievements(c *gin.Context) {
	h.achievements(c, middleware.GetUserID(c))
}

// UserAchievements handles GET /v1/users/:id/achievements
func (h *RankingHandler) UserAchievements(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.achievements(c, id)
}

func (h *RankingHandler) achievements(c *gin.Context, userID int64) {
	list, err := h.svc.Achievements(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "compute achievements", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "achievements": list})
}
