package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/devlink/internal/common"
	"github.com/dmitrijs2005/devlink/internal/logging"
	"github.com/dmitrijs2005/devlink/internal/server/auth"
)

// ContextUserIDKey is the gin context key under which the gate stores the
// verified subject user id. The attachment is request-scoped.
const ContextUserIDKey = "auth.userID"

const requestIDHeader = "X-Request-Id"

// AuthRequired verifies the bearer token on the Authorization header and
// attaches the subject user id to the request context. A missing token and
// an invalid one both reject with 401, but they are logged separately so
// the two cases stay distinguishable in telemetry. No store lookup happens
// here: the claims alone identify the subject.
func AuthRequired(secretKey []byte, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			logger.Warn(c.Request.Context(), "request without token rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, singleError(msgNoToken))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Warn(c.Request.Context(), "malformed authorization header rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, singleError(msgInvalidToken))
			return
		}

		userID, err := auth.GetUserIDFromToken(parts[1], secretKey)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, common.ErrTokenExpired) {
				reason = "expired"
			}
			logger.Warn(c.Request.Context(), "token rejected", "reason", reason, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, singleError(msgInvalidToken))
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// RequestID assigns every request an id, echoed in the response header and
// available to the request logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request after completion.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"request_id", c.GetString(requestIDHeader),
		)
	}
}
