// Package apiutil holds the helpers shared by the HTTP handlers: caller
// identity, path parsing and the error response format.
package apiutil

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Context keys set by the middleware.
const (
	ContextIdentity  = "identity"
	ContextRequestID = "request_id"
)

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c *gin.Context, id authz.Identity) {
	c.Set(ContextIdentity, id)
}

// Identity returns the authenticated caller. Routes behind the auth
// middleware always have one; elsewhere the zero Identity is returned.
func Identity(c *gin.Context) authz.Identity {
	if v, ok := c.Get(ContextIdentity); ok {
		if id, ok := v.(authz.Identity); ok {
			return id
		}
	}
	return authz.Identity{}
}

// ParseID extracts and validates a numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s: %s", name, raw)
	}
	return uint(id), nil
}

// ParseInt reads an optional integer query parameter.
func ParseInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Validation("invalid %s parameter: %s", name, raw)
	}
	return v, nil
}

// BindJSON decodes the request body, reporting malformed input as a validation error.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInsufficientPoints, apperr.KindInsufficientBudget:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error response. Internal errors are logged and
// their details withheld from the client.
func Error(c *gin.Context, log *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	message := "internal server error"

	var appErr *apperr.Error
	if kind != apperr.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}

	ErrorResponse(c, StatusFor(kind), apperr.CodeOf(err), message)
}

// ErrorResponse sends a standardized error response.
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error":     message,
		"code":      code,
		"timestamp": time.Now().UTC(),
	})
}
