package contact

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/notify"
)

// Notifier receives an event for every message that reached the store.
type Notifier interface {
	Publish(ctx context.Context, evt notify.Event)
}

// Service implements contact intake and the admin operations on stored messages.
type Service struct {
	store    domain.ContactRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a contact service. notifier may be nil, in which case
// nothing is published.
func NewService(store domain.ContactRepository, notifier Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   slog.Default().With("service", "contact"),
	}
}

// Submit validates and persists a submission, then publishes a new_message
// event carrying the stored record. The event is published only after the
// store has acknowledged the write; a failed publish never fails Submit.
func (s *Service) Submit(ctx context.Context, sub domain.ContactSubmission) (*domain.ContactMessage, error) {
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.store.Create(ctx, sub.ToMessage())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist contact message", "error", err)
		return nil, &domain.PersistenceError{Op: "create", Err: err}
	}

	s.logger.InfoContext(ctx, "Contact message stored", "message_id", saved.ID, "subject", saved.Subject)

	if s.notifier != nil {
		// The response must not depend on how long subscribers take, nor on
		// the request being cancelled once it has been answered.
		s.notifier.Publish(context.WithoutCancel(ctx), notify.NewMessageEvent(saved))
	}
	return saved, nil
}

// List returns stored messages newest first.
func (s *Service) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactMessage, error) {
	msgs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, storeError("list", err)
	}
	return msgs, nil
}

// Get returns a single message.
func (s *Service) Get(ctx context.Context, id string) (*domain.ContactMessage, error) {
	msg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("get", err)
	}
	return msg, nil
}

// MarkRead flags a message as read and returns it.
func (s *Service) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	msg, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return nil, storeError("mark_read", err)
	}
	return msg, nil
}

// Delete removes a message.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError("delete", err)
	}
	s.logger.InfoContext(ctx, "Contact message deleted", "message_id", id)
	return nil
}

// storeError passes not-found through and wraps every other store failure.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
