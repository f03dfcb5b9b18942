package server

import (
	"strings"
	"time"

	"grain-auction/services/bidding/helpers"
	"grain-auction/utils"

	"github.com/gin-gonic/gin"
)

// UserHeader carries the caller's user id. Authentication happens upstream.
const UserHeader = "X-User-ID"

// IdentityMiddleware stores the caller's user id in the request context
func IdentityMiddleware(c *gin.Context) {
	c.Set(helpers.ActorKey, strings.TrimSpace(c.GetHeader(UserHeader)))
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if userID := helpers.ActorID(c); userID != "" {
		fields["user_id"] = userID
	}
	utils.Info("HTTP Request", fields)
}
