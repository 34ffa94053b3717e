package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/apperr"
	"go.uber.org/zap"
)

// respondError maps an engine error onto a status code. Client errors echo
// their reason; anything else is logged and answered with a generic 500
// so storage details never reach the caller.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrNoChange):
		// Benign: the edit matched what was stored.
		c.JSON(http.StatusOK, gin.H{"outcome": "no_change", "message": apperr.Reason(err)})
		return
	}

	if status == http.StatusInternalServerError {
		logger.Error("failed to "+op, zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "failed to " + op})
		return
	}
	c.JSON(status, gin.H{"error": apperr.Reason(err)})
}

// pathID reads a positive int64 path parameter. On failure it has already
// written the 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// queryInt reads an optional non-negative integer query parameter. A
// missing parameter yields 0.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
