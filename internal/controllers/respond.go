package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"tasknest/internal/middleware"
	"tasknest/internal/services"
	"tasknest/internal/validation"
)

const (
	msgBadInput     = "invalid input provided, please check your fields"
	msgTryAgain     = "something went wrong, please try again"
	msgInternal     = "internal server error"
	msgBadLogin     = "invalid email or password"
	msgUnregistered = "This email is not registered. Please register first."
)

// view writes a view-state document: the page to show plus its fields.
func view(c *gin.Context, status int, name string, fields gin.H) {
	body := gin.H{"view": name, "success": status < http.StatusBadRequest}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail maps a service error to a response. Auth failures redirect to the
// login page; storage and internal failures are logged and answered with a
// generic message.
func fail(c *gin.Context, logger *slog.Logger, viewName string, err error) {
	var verr *validation.Error
	status, msg := http.StatusInternalServerError, msgInternal

	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Message
	case errors.Is(err, services.ErrAuthRequired):
		c.Redirect(http.StatusFound, middleware.LoginPath)
		c.Abort()
		return
	case errors.Is(err, services.ErrDuplicateEmail):
		status, msg = http.StatusConflict, "Email already registered!"
	case errors.Is(err, services.ErrUnknownEmail):
		status, msg = http.StatusNotFound, msgUnregistered
	case errors.Is(err, services.ErrInvalidCredential):
		status, msg = http.StatusUnauthorized, msgBadLogin
	case errors.Is(err, services.ErrInvalidCode):
		status, msg = http.StatusBadRequest, "Invalid verification code"
	case errors.Is(err, services.ErrStorageUnavailable):
		status, msg = http.StatusServiceUnavailable, msgTryAgain
		logFailure(c, logger, err)
	default:
		logFailure(c, logger, err)
	}

	if viewName == "" {
		c.JSON(status, gin.H{"success": false, "message": msg})
		return
	}
	view(c, status, viewName, gin.H{"error": msg})
}

func logFailure(c *gin.Context, logger *slog.Logger, err error) {
	attrs := []any{
		"request_id", middleware.RequestIDFromContext(c),
		"path", c.FullPath(),
		"error", err,
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "code", oopsErr.Code())
	}
	logger.ErrorContext(c.Request.Context(), "request failed", attrs...)
}
