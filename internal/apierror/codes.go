package apierror

// Error type URIs following the urn:focusmetrics:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:focusmetrics:error:validation"

	// TypeBadRequest indicates a malformed request body or query (400)
	TypeBadRequest = "urn:focusmetrics:error:bad_request"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:focusmetrics:error:unauthorized"

	// TypeConflict indicates the resource already exists (409)
	TypeConflict = "urn:focusmetrics:error:conflict"

	// TypeNotFound indicates the requested route or resource does not exist (404)
	TypeNotFound = "urn:focusmetrics:error:not_found"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:focusmetrics:error:internal"

	// TypeDependencyUnavailable indicates the record store could not be reached (503)
	TypeDependencyUnavailable = "urn:focusmetrics:error:dependency_unavailable"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation            = "Validation Error"
	TitleBadRequest            = "Bad Request"
	TitleUnauthorized          = "Authentication Required"
	TitleConflict              = "Resource Conflict"
	TitleNotFound              = "Resource Not Found"
	TitleInternal              = "Internal Server Error"
	TitleDependencyUnavailable = "Service Unavailable"
)
