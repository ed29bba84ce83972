package contact

import (
	"github.com/go-playground/validator/v10"
	"github.com/nfrund/eventdesk/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SubmitRequest is the DTO for the public contact form. Field checks happen
// in the domain after normalization, so nothing is validated here.
type SubmitRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	IPAddress string `json:"ipAddress"`
}

func (r SubmitRequest) toSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:      r.Name,
		Email:     r.Email,
		Subject:   r.Subject,
		Message:   r.Message,
		IPAddress: r.IPAddress,
	}
}

// ListRequest holds the query parameters of the admin listing.
type ListRequest struct {
	Unread bool `query:"unread"`
	Limit  int  `query:"limit" validate:"min=0,max=500"`
}

func (r ListRequest) toFilter() domain.ContactFilter {
	return domain.ContactFilter{UnreadOnly: r.Unread, Limit: r.Limit}
}
