package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/middleware"
	"go.uber.org/zap"
)

// ShoutOutHandler serves the feed and the shout-out lifecycle.
type ShoutOutHandler struct {
	svc           *engine.Service
	defaultWindow engine.Window
	logger        *zap.Logger
}

func NewShoutOutHandler(svc *engine.Service, defaultWindow engine.Window, logger *zap.Logger) *ShoutOutHandler {
	return &ShoutOutHandler{svc: svc, defaultWindow: defaultWindow, logger: logger}
}

// window reads the named query parameter, falling back to the configured
// default when the client did not send one.
func (h *ShoutOutHandler) window(c *gin.Context, param string) (engine.Window, error) {
	raw := c.Query(param)
	if raw == "" {
		return h.defaultWindow, nil
	}
	return engine.ParseWindow(raw)
}

// Feed handles GET /v1/feed
func (h *ShoutOutHandler) Feed(c *gin.Context) {
	q := engine.FeedQuery{
		Department: c.Query("department"),
		Search:     c.Query("search"),
	}

	var ok bool
	if q.SenderID, ok = queryInt64(c, "sender_id"); !ok {
		return
	}
	if q.Before, ok = queryInt64(c, "before"); !ok {
		return
	}
	if q.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}
	w, err := h.window(c, "window")
	if err != nil {
		respondError(c, h.logger, "load feed", err)
		return
	}
	q.Window = w

	page, err := h.svc.Feed(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		respondError(c, h.logger, "load feed", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create handles POST /v1/shoutouts
func (h *ShoutOutHandler) Create(c *gin.Context) {
	var in engine.ShoutOutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	so, err := h.svc.CreateShoutOut(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.logger, "create shoutout", err)
		return
	}
	c.JSON(http.StatusCreated, so)
}

// Edit handles PUT /v1/shoutouts/:id
func (h *ShoutOutHandler) Edit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in engine.ShoutOutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	so, err := h.svc.EditShoutOut(c.Request.Context(), id, middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.logger, "edit shoutout", err)
		return
	}
	c.JSON(http.StatusOK, so)
}

// Delete handles DELETE /v1/shoutouts/:id
func (h *ShoutOutHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteShoutOut(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, "delete shoutout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Mine handles GET /v1/shoutouts/mine?days=&receiver_department=
func (h *ShoutOutHandler) Mine(c *gin.Context) {
	w, err := h.window(c, "days")
	if err != nil {
		respondError(c, h.logger, "load shoutouts", err)
		return
	}

	mine, err := h.svc.MyShoutOuts(c.Request.Context(), middleware.GetUserID(c), engine.MyShoutOutsQuery{
		Window:             w,
		ReceiverDepartment: c.Query("receiver_department"),
	})
	if err != nil {
		respondError(c, h.logger, "load shoutouts", err)
		return
	}
	c.JSON(http.StatusOK, mine)
}

// Dashboard handles GET /v1/dashboard
func (h *ShoutOutHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
