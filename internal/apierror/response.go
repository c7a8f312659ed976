package apierror

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// DependencyRetryAfter is the Retry-After hint, in seconds, sent with 503 responses.
const DependencyRetryAfter = 5

// WriteProblem renders problem as application/problem+json with its status code.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	c.Header("Content-Type", ContentTypeProblemJSON)
	if problem.Retryable() {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}

	c.JSON(problem.Status, problem)
}

// AbortWithProblem writes the problem and stops the handler chain.
func AbortWithProblem(c *gin.Context, problem *ProblemDetails) {
	WriteProblem(c, problem)
	c.Abort()
}

// GetRequestID returns the ID set by the request ID middleware, falling back
// to the inbound header for requests rejected before it ran.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

func newProblem(typ, title string, status int, requestID, detail, userMessage string) *ProblemDetails {
	return &ProblemDetails{
		Type:        typ,
		Title:       title,
		Status:      status,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: userMessage,
	}
}

// NewValidationError reports every failed field in one 400 response.
func NewValidationError(requestID string, errors []FieldError) *ProblemDetails {
	p := newProblem(TypeValidation, TitleValidation, http.StatusBadRequest, requestID,
		"One or more fields failed validation", "Please check your input and try again")
	p.Errors = errors
	return p
}

// NewBadRequestError is a 400 for bodies or queries that could not be parsed.
func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	return newProblem(TypeBadRequest, TitleBadRequest, http.StatusBadRequest, requestID, detail, userMessage)
}

func NewUnauthorizedError(requestID string) *ProblemDetails {
	p := newProblem(TypeUnauthorized, TitleUnauthorized, http.StatusUnauthorized, requestID,
		"Authentication is required to access this resource", "Please sign in to continue")
	p.Action = "authenticate"
	return p
}

// NewConflictError is a 409 for a create that collides with an existing resource.
func NewConflictError(requestID, detail string) *ProblemDetails {
	return newProblem(TypeConflict, TitleConflict, http.StatusConflict, requestID,
		detail, "This item was already recorded")
}

// NewNotFoundError is a 404 for a path no route serves.
func NewNotFoundError(requestID, path string) *ProblemDetails {
	return newProblem(TypeNotFound, TitleNotFound, http.StatusNotFound, requestID,
		fmt.Sprintf("No resource exists at '%s'", path), "The requested resource could not be found")
}

// NewInternalError is a 500 that never carries the underlying error; log it instead.
func NewInternalError(requestID string) *ProblemDetails {
	return newProblem(TypeInternal, TitleInternal, http.StatusInternalServerError, requestID,
		"An unexpected error occurred", "Something went wrong. Please try again later.")
}

// NewDependencyUnavailableError is a 503 for a failed or timed-out record store.
// Clients are told to retry after DependencyRetryAfter seconds.
func NewDependencyUnavailableError(requestID string) *ProblemDetails {
	p := newProblem(TypeDependencyUnavailable, TitleDependencyUnavailable, http.StatusServiceUnavailable, requestID,
		"The record store is temporarily unavailable", "Analytics are temporarily unavailable. Please try again shortly.")
	retryAfter := DependencyRetryAfter
	p.RetryAfter = &retryAfter
	return p
}
