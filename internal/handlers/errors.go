package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/focusmetrics/internal/apierror"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/internal/middleware"
	"github.com/JonnyWalker81/focusmetrics/internal/service"
)

// requireUser returns the authenticated user ID, writing a 401 problem when absent
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID, true
}

// writeServiceError maps service errors to problem responses
func writeServiceError(c *gin.Context, err error) {
	requestID := apierror.GetRequestID(c)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fields := make([]apierror.FieldError, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			fields = append(fields, apierror.FieldError{Field: f.Field, Message: f.Message, Code: f.Code})
		}
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fields).WithInstance(c.Request.URL.Path))
	case errors.Is(err, service.ErrActivityExists):
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, "An activity with this ID already exists").WithInstance(c.Request.URL.Path))
	case errors.Is(err, service.ErrDependencyUnavailable):
		logger.Ctx(c.Request.Context()).Warn("record source unavailable", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewDependencyUnavailableError(requestID).WithInstance(c.Request.URL.Path))
	default:
		logger.Ctx(c.Request.Context()).Error("request failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID).WithInstance(c.Request.URL.Path))
	}
}
