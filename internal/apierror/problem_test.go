package apierror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProblemDetailsJSON(t *testing.T) {
	problem := NewValidationError("req-abc123", []FieldError{
		{Field: "productivity_score", Message: "must be between 0 and 100", Code: "out_of_range"},
		{Field: "start_time", Message: "is required", Code: "required"},
	})
	problem.Instance = "/api/v1/activities"

	data, err := json.Marshal(problem)
	if err != nil {
		t.Fatalf("Failed to marshal ProblemDetails: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if result["type"] != TypeValidation {
		t.Errorf("Expected type=%q, got %q", TypeValidation, result["type"])
	}
	if result["status"] != float64(http.StatusBadRequest) {
		t.Errorf("Expected status=%d, got %v", http.StatusBadRequest, result["status"])
	}
	if result["instance"] != "/api/v1/activities" {
		t.Errorf("Expected instance, got %v", result["instance"])
	}
	if result["request_id"] != "req-abc123" {
		t.Errorf("Expected request_id=%q, got %q", "req-abc123", result["request_id"])
	}

	errors, ok := result["errors"].([]interface{})
	if !ok || len(errors) != 2 {
		t.Fatalf("Expected 2 errors, got %v", result["errors"])
	}
	first := errors[0].(map[string]interface{})
	if first["field"] != "productivity_score" || first["code"] != "out_of_range" {
		t.Errorf("Unexpected first field error: %v", first)
	}
}

func TestProblemDetailsJSONOmitsEmpty(t *testing.T) {
	problem := &ProblemDetails{
		Type:   TypeInternal,
		Title:  TitleInternal,
		Status: http.StatusInternalServerError,
	}

	data, err := json.Marshal(problem)
	if err != nil {
		t.Fatalf("Failed to marshal ProblemDetails: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	for _, field := range []string{"detail", "instance", "request_id", "user_message", "retry_after", "action", "errors"} {
		if _, exists := result[field]; exists {
			t.Errorf("Expected field %q to be omitted when empty, but it was present", field)
		}
	}
}

func TestWriteProblemContentType(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteProblem(c, NewInternalError("req-123"))

	if got := w.Header().Get("Content-Type"); got != ContentTypeProblemJSON {
		t.Errorf("Expected Content-Type=%q, got %q", ContentTypeProblemJSON, got)
	}
	if got := w.Header().Get("Retry-After"); got != "" {
		t.Errorf("Expected no Retry-After header, got %q", got)
	}
}

func TestWriteProblemDependencyUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AbortWithProblem(c, NewDependencyUnavailableError("req-456"))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "5" {
		t.Errorf("Expected Retry-After header=%q, got %q", "5", got)
	}
	if !c.IsAborted() {
		t.Error("Expected the handler chain to be aborted")
	}

	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response body: %v", err)
	}
	if result["type"] != TypeDependencyUnavailable {
		t.Errorf("Expected type=%q, got %v", TypeDependencyUnavailable, result["type"])
	}
	if result["retry_after"] != float64(DependencyRetryAfter) {
		t.Errorf("Expected retry_after=%d, got %v", DependencyRetryAfter, result["retry_after"])
	}
}

func TestNewInternalErrorHidesDetails(t *testing.T) {
	problem := NewInternalError("req-xyz")

	if problem.Detail != "An unexpected error occurred" {
		t.Errorf("Expected generic detail, got %q", problem.Detail)
	}
	if problem.Errors != nil {
		t.Error("Expected no field errors on internal errors")
	}
}

func TestNewUnauthorizedError(t *testing.T) {
	problem := NewUnauthorizedError("req-abc")

	if problem.Status != http.StatusUnauthorized {
		t.Errorf("Expected status=%d, got %d", http.StatusUnauthorized, problem.Status)
	}
	if problem.Action != "authenticate" {
		t.Errorf("Expected action=authenticate, got %q", problem.Action)
	}
}

func TestNewNotFoundError(t *testing.T) {
	problem := NewNotFoundError("req-123", "/api/v1/nope")

	if problem.Status != http.StatusNotFound {
		t.Errorf("Expected status=%d, got %d", http.StatusNotFound, problem.Status)
	}
	if problem.Detail != "No resource exists at '/api/v1/nope'" {
		t.Errorf("Unexpected detail %q", problem.Detail)
	}
}

func TestNewConflictError(t *testing.T) {
	p := NewConflictError("req-9", "An activity with this ID already exists")
	if p.Status != http.StatusConflict || p.Type != TypeConflict {
		t.Errorf("Expected 409 %s, got %d %s", TypeConflict, p.Status, p.Type)
	}
	if p.Retryable() {
		t.Error("Expected a conflict not to be retryable")
	}
}

func TestProblemDetailsError(t *testing.T) {
	p1 := &ProblemDetails{Title: TitleValidation, Detail: "Custom error message"}
	if p1.Error() != "Custom error message" {
		t.Errorf("Expected Error()=%q, got %q", "Custom error message", p1.Error())
	}

	p2 := &ProblemDetails{Title: TitleValidation}
	if p2.Error() != TitleValidation {
		t.Errorf("Expected Error()=%q, got %q", TitleValidation, p2.Error())
	}
}

func TestGetRequestID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("request_id", "ctx-req-123")
	if got := GetRequestID(c); got != "ctx-req-123" {
		t.Errorf("Expected request_id=%q, got %q", "ctx-req-123", got)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest("GET", "/test", nil)
	c2.Request.Header.Set("X-Request-ID", "header-req-456")
	if got := GetRequestID(c2); got != "header-req-456" {
		t.Errorf("Expected request_id from header=%q, got %q", "header-req-456", got)
	}

	c3, _ := gin.CreateTestContext(httptest.NewRecorder())
	c3.Request = httptest.NewRequest("GET", "/test", nil)
	if got := GetRequestID(c3); got != "" {
		t.Errorf("Expected empty request_id, got %q", got)
	}
}

func TestWithInstanceAndRetryable(t *testing.T) {
	p := NewDependencyUnavailableError("req-1").WithInstance("/api/v1/analytics/metrics")
	if p.Instance != "/api/v1/analytics/metrics" {
		t.Errorf("Expected instance to be set, got %q", p.Instance)
	}
	if !p.Retryable() {
		t.Error("Expected dependency errors to be retryable")
	}
	if NewInternalError("req-1").Retryable() {
		t.Error("Expected internal errors not to be retryable")
	}
}
