package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/focusmetrics/internal/apierror"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/pkg/supabase"
)

const userIDKey = "user_id"

// UserIDHeader carries the caller identity in header auth mode
const UserIDHeader = "X-User-ID"

// TokenVerifier resolves a bearer token to a user
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*supabase.User, error)
}

// Auth middleware to verify JWT tokens
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		// Extract token from "Bearer <token>"
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			log.Debug("authentication failed: missing or malformed authorization header")
			apierror.AbortWithProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			log.Warn("authentication failed: token verification error", logger.Err(err))
			apierror.AbortWithProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		setUser(c, user.ID)
		c.Next()
	}
}

// HeaderAuth trusts the X-User-ID header. Only for deployments behind an
// authenticating proxy, or for local development.
func HeaderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			apierror.AbortWithProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		setUser(c, userID)
		c.Next()
	}
}

func setUser(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)

	// Add user ID to request context for logging
	ctx := logger.WithUserID(c.Request.Context(), userID)
	c.Request = c.Request.WithContext(ctx)
}

// UserID returns the authenticated user ID, or "" when the request is unauthenticated
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
