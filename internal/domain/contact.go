package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// init registers custom validation functions with the validator instance.
func init() {
	_ = validatorInstance.RegisterValidation("notblank", validateNotBlank)
}

// validateNotBlank rejects strings that only contain whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ContactMessage is a user-submitted inquiry as persisted by the message store.
// ID and CreatedAt are assigned by the store and never change afterwards;
// IsRead is the only field that is mutated after creation.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ipAddress"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactSubmission is the inbound payload of the public contact form.
type ContactSubmission struct {
	Name      string `json:"name" validate:"required,notblank,max=200"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Subject   string `json:"subject" validate:"required,notblank,max=300"`
	Message   string `json:"message" validate:"required,notblank,max=10000"`
	IPAddress string `json:"ipAddress" validate:"required,ip"`
}

// Normalize trims surrounding whitespace from every field.
func (s *ContactSubmission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)
	s.IPAddress = strings.TrimSpace(s.IPAddress)
}

// Validate runs validation checks on the submission and returns a
// *ValidationError describing every offending field.
func (s *ContactSubmission) Validate() error {
	err := validatorInstance.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonFieldName(fe.StructField())] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

// ToMessage builds an unsaved ContactMessage from the submission.
func (s *ContactSubmission) ToMessage() *ContactMessage {
	return &ContactMessage{
		Name:      s.Name,
		Email:     s.Email,
		Subject:   s.Subject,
		Message:   s.Message,
		IPAddress: s.IPAddress,
	}
}

func jsonFieldName(structField string) string {
	switch structField {
	case "IPAddress":
		return "ipAddress"
	default:
		return strings.ToLower(structField)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "ip":
		return "must be a valid IP address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// ContactFilter narrows a listing of contact messages.
type ContactFilter struct {
	// UnreadOnly restricts the listing to messages not yet marked read.
	UnreadOnly bool
	// Limit caps the number of results. Zero means DefaultPageSize.
	Limit int
}

// EffectiveLimit clamps Limit into [1, MaxPageSize].
func (f ContactFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultPageSize
	case f.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return f.Limit
	}
}

// Pagination constants
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ContactRepository defines the contract for contact-message storage.
// Implementations assign ID and CreatedAt on Create.
type ContactRepository interface {
	// Create persists a new message and returns it with ID and CreatedAt set.
	Create(ctx context.Context, msg *ContactMessage) (*ContactMessage, error)

	// FindByID returns ErrNotFound when no message has the given ID.
	FindByID(ctx context.Context, id string) (*ContactMessage, error)

	// List returns messages newest first.
	List(ctx context.Context, filter ContactFilter) ([]*ContactMessage, error)

	// MarkRead sets IsRead and returns the updated message.
	MarkRead(ctx context.Context, id string) (*ContactMessage, error)

	// Delete returns ErrNotFound when no message has the given ID.
	Delete(ctx context.Context, id string) error

	// Close releases the underlying resources.
	Close() error
}
