package contact

import "github.com/nfrund/eventdesk/internal/domain"

// Error codes reported in ErrorResponse.Code.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeValidationFailed  = "validation_failed"
	CodeNotFound          = "not_found"
	CodePersistenceFailed = "persistence_failed"
)

// ErrorResponse is the standard format for API error details.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FailureResponse is returned for every failed request.
type FailureResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponse     `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MessageResponse wraps a single contact message.
type MessageResponse struct {
	Success bool                   `json:"success"`
	Message *domain.ContactMessage `json:"message"`
}

// ListResponse wraps a page of contact messages.
type ListResponse struct {
	Success  bool                     `json:"success"`
	Count    int                      `json:"count"`
	Messages []*domain.ContactMessage `json:"messages"`
}

// DeleteResponse reports a completed deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func failure(code, message string) FailureResponse {
	return FailureResponse{Error: ErrorResponse{Code: code, Message: message}}
}
