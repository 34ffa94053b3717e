package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/middleware"
	"github.com/lalith-99/shoutout/internal/models"
	"go.uber.org/zap"
)

// EngagementHandler serves reactions and comments on a shout-out.
type EngagementHandler struct {
	svc    *engine.Service
	logger *zap.Logger
}

func NewEngagementHandler(svc *engine.Service, logger *zap.Logger) *EngagementHandler {
	return &EngagementHandler{svc: svc, logger: logger}
}

type reactionRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Reactions handles GET /v1/shoutouts/:id/reactions
func (h *EngagementHandler) Reactions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	state, err := h.svc.Reactions(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "load reactions", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ToggleReaction handles POST /v1/shoutouts/:id/reactions
//
// Posting the kind already held removes it; any other kind replaces it.
func (h *EngagementHandler) ToggleReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.svc.ToggleReaction(c.Request.Context(), id, middleware.GetUserID(c), models.ReactionKind(req.Kind))
	if err != nil {
		respondError(c, h.logger, "toggle reaction", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Comments handles GET /v1/shoutouts/:id/comments
func (h *EngagementHandler) Comments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := h.svc.ListComments(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list comments", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment handles POST /v1/shoutouts/:id/comments
func (h *EngagementHandler) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), id, middleware.GetUserID(c), req.Content)
	if err != nil {
		respondError(c, h.logger, "add comment", err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// EditComment handles PUT /v1/comments/:id
func (h *EngagementHandler) EditComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edit, err := h.svc.EditComment(c.Request.Context(), id, middleware.GetUserID(c), req.Content)
	if err != nil {
		respondError(c, h.logger, "edit comment", err)
		return
	}
	c.JSON(http.StatusOK, edit)
}

// DeleteComment handles DELETE /v1/comments/:id
func (h *EngagementHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, "delete comment", err)
		return
	}
	c.Status(http.StatusNoContent)
}
