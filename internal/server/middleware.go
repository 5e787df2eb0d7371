package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"auction-house/internal/metrics"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// Headers set by the authentication proxy in front of the service
const (
	HeaderUserID   = "X-User-ID"
	HeaderUsername = "X-Username"
)

// UserRegistrar records identities resolved upstream
type UserRegistrar interface {
	RegisterUser(ctx context.Context, user model.User) error
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"user_id": helpers.CurrentUserID(c),
		"latency": time.Since(start).String(),
	})
}

// MetricsMiddleware records request counts and latency per matched route
func MetricsMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	metrics.HTTPLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
}

// IdentityMiddleware trusts the identity headers set upstream, stores them in
// the gin context and records the user. Requests without X-User-ID are anonymous.
func IdentityMiddleware(registrar UserRegistrar) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.Next()
			return
		}
		username := strings.TrimSpace(c.GetHeader(HeaderUsername))

		if err := registrar.RegisterUser(c.Request.Context(), model.User{UserID: userID, Username: username}); err != nil {
			helpers.HandleServiceError(c, "IdentityMiddleware", err, map[string]any{"user_id": userID})
			c.Abort()
			return
		}

		c.Set(helpers.ContextUserID, userID)
		c.Set(helpers.ContextUsername, username)
		c.Next()
	}
}
