package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/auth"
)

// Context keys for values stored in gin.Context.
//
// Why string constants instead of inline strings?
//   - c.Get("usr_id") compiles fine and silently returns nothing. With a
//     constant the compiler catches the typo.
//   - Handlers and middleware import the same names, so everyone agrees on
//     the keys.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
)

// AuthMiddleware returns a Gin middleware that validates JWT bearer tokens.
//
// How it fits the chain:
//   - It runs BEFORE the handler (Feed, ToggleReaction, ...).
//   - If the token is invalid it calls c.AbortWithStatusJSON, which stops the
//     chain. The handler never runs and the client gets a 401.
//   - If the token is valid it stores the user id with c.Set and calls
//     c.Next, passing control to the handler.
//
// Why only the user id and not the role or department?
//   - Those live in the users table and can change after the token was
//     issued. The engine reloads the viewer on every call, so a demoted admin
//     loses access immediately instead of at token expiry.
//
// Why take `secret` as a parameter?
//   - The middleware doesn't import config; main.go passes cfg.JWTSecret and
//     tests pass any secret they like.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Expected format: "Bearer eyJhbGciOi..."
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// GetUserID returns the authenticated caller, or 0 outside AuthMiddleware.
//
// Why a helper instead of c.Get("user_id") in every handler?
//   - c.Get returns (any, bool); every caller would need the same type
//     assertion. It is done once, here.
//   - The zero fallback never matches a stored user (ids are BIGSERIAL), so a
//     route wired without the middleware fails as not found rather than
//     acting as somebody.
func GetUserID(c *gin.Context) int64 {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	id, ok := val.(int64)
	if !ok {
		return 0
	}
	return id
}
