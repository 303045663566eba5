// Package middleware provides the gin middleware for authentication,
// authorization, request ids, logging, metrics and CORS.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/auth"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/metrics"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(raw string) (authz.Identity, error)
}

// Authenticate requires a valid bearer token and stores the caller identity.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.ExtractToken(c.GetHeader("Authorization"))
		if raw == "" {
			apiutil.ErrorResponse(c, http.StatusUnauthorized, string(apperr.KindUnauthorized), "missing authorization")
			return
		}

		identity, err := tokens.Parse(raw)
		if err != nil {
			apiutil.ErrorResponse(c, http.StatusUnauthorized, string(apperr.KindUnauthorized), "invalid token")
			return
		}

		apiutil.SetIdentity(c, identity)
		c.Next()
	}
}

// RequirePermission rejects callers whose role may not perform action on resource.
func RequirePermission(resource authz.Resource, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !apiutil.Identity(c).Can(resource, action) {
			apiutil.ErrorResponse(c, http.StatusForbidden, string(apperr.KindForbidden), "forbidden")
			return
		}
		c.Next()
	}
}

// RequestID propagates or generates a request id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(apiutil.ContextRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs each request with method, route, status and latency,
// and records the HTTP metrics.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, route, status, duration.Seconds())

		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.
			Str("request_id", c.GetString(apiutil.ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Str("remote", c.ClientIP()).
			Msg("request")
	}
}

// CORS allows the configured origins. An empty list allows any origin.
func CORS(allowed string) gin.HandlerFunc {
	origins := make(map[string]bool)
	for _, origin := range strings.Split(allowed, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins[origin] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(origins) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+requestIDHeader)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
