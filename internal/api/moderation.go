package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/middleware"
	"github.com/lalith-99/shoutout/internal/models"
	"go.uber.org/zap"
)

// ModerationHandler serves reporting and the admin review queue. The role
// check lives in the engine; these routes only need a valid token.
type ModerationHandler struct {
	svc    *engine.Service
	logger *zap.Logger
}

func NewModerationHandler(svc *engine.Service, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{svc: svc, logger: logger}
}

type reportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type resolveRequest struct {
	Action string `json:"action" binding:"required"`
}

// Report handles POST /v1/shoutouts/:id/reports
func (h *ModerationHandler) Report(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Report(c.Request.Context(), id, middleware.GetUserID(c), req.Reason)
	if err != nil {
		respondError(c, h.logger, "report shoutout", err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Pending handles GET /v1/admin/reports
func (h *ModerationHandler) Pending(c *gin.Context) {
	reports, err := h.svc.PendingReports(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list reports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Resolve handles PUT /v1/admin/reports/:id/resolve
func (h *ModerationHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.ResolveReport(c.Request.Context(), id, middleware.GetUserID(c), models.ReportAction(req.Action))
	if err != nil {
		respondError(c, h.logger, "resolve report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Review handles GET /v1/admin/shoutouts/:id
func (h *ModerationHandler) Review(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	so, err := h.svc.ReviewShoutOut(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "review shoutout", err)
		return
	}
	c.JSON(http.StatusOK, so)
}
