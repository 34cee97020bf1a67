package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeNotInitialized    = "ORCHESTRATOR_NOT_INITIALIZED"
	ErrCodeDesignFailed      = "DESIGN_FAILED"
	ErrCodeEditorUnavailable = "EDITOR_UNAVAILABLE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)
