// Package apierror renders API failures as RFC 9457 problem details
// (https://www.rfc-editor.org/rfc/rfc9457.html).
package apierror

// ProblemDetails is the body of every non-2xx response. Type, Title and Status
// are always set; the remaining fields are optional.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"` // request path the problem occurred on

	RequestID   string       `json:"request_id,omitempty"`
	UserMessage string       `json:"user_message,omitempty"` // safe to show to end users
	RetryAfter  *int         `json:"retry_after,omitempty"`  // seconds, mirrored in the Retry-After header
	Action      string       `json:"action,omitempty"`
	Errors      []FieldError `json:"errors,omitempty"`
}

// FieldError is one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WithInstance sets the occurrence URI and returns p
func (p *ProblemDetails) WithInstance(instance string) *ProblemDetails {
	p.Instance = instance
	return p
}

// Retryable reports whether the client may retry the same request later
func (p *ProblemDetails) Retryable() bool {
	return p.RetryAfter != nil
}

func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}
