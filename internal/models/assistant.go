package models

// ResponseStatus is the outcome of a gateway call
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusError   ResponseStatus = "error"
)

// ErrorType classifies gateway and client failures
type ErrorType string

const (
	ErrorMissingAPIKey       ErrorType = "missing_api_key"
	ErrorInvalidAPIKeyFormat ErrorType = "invalid_api_key_format"
	ErrorInvalidAPIKey       ErrorType = "invalid_api_key"
	ErrorTimeout             ErrorType = "timeout"
	ErrorExecutionFailed     ErrorType = "execution_failed"
	ErrorExecutionCancelled  ErrorType = "execution_cancelled"
	ErrorExecutionExpired    ErrorType = "execution_expired"
	ErrorExecutionUnexpected ErrorType = "execution_unexpected"
	ErrorAPIKey              ErrorType = "api_key_error"
	ErrorTimeoutError        ErrorType = "timeout_error"
	ErrorRateLimit           ErrorType = "rate_limit_error"
	ErrorThread              ErrorType = "thread_error"
	ErrorInternal            ErrorType = "internal_error"
	ErrorClient              ErrorType = "client_error"
)

// AssistantRequest is the gateway request body
type AssistantRequest struct {
	Message  string  `json:"message"`
	ThreadID *string `json:"threadId"`
}

// AssistantResponse is the gateway response body.
// It is produced per call and consumed immediately.
type AssistantResponse struct {
	ThreadID  string         `json:"threadId,omitempty"`
	Message   string         `json:"message"`
	Status    ResponseStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	ErrorType ErrorType      `json:"errorType,omitempty"`
	Details   *ErrorDetails  `json:"details,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Succeeded reports whether the response carries a reply
func (r *AssistantResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// ErrorDetails carries diagnostic data for classified run failures
type ErrorDetails struct {
	Attempts    int       `json:"attempts,omitempty"`
	MaxAttempts int       `json:"maxAttempts,omitempty"`
	LastStatus  string    `json:"lastStatus,omitempty"`
	RunID       string    `json:"runId,omitempty"`
	RunStatus   string    `json:"runStatus,omitempty"`
	LastError   *RunError `json:"lastError,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// RunError is the failure reported by the remote assistant for a run
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GatewayError is a classified gateway failure together with the HTTP status it maps to
type GatewayError struct {
	StatusCode int
	Response   *AssistantResponse
}

func (e *GatewayError) Error() string {
	return string(e.Response.ErrorType) + ": " + e.Response.Error
}
