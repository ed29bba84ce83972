package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const contactTable = "contact_message"

// surrealContact is the row shape of the contact_message table.
type surrealContact struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	Name      string                        `json:"name"`
	Email     string                        `json:"email"`
	Subject   string                        `json:"subject"`
	Message   string                        `json:"message"`
	IPAddress string                        `json:"ip_address"`
	IsRead    bool                          `json:"is_read"`
	CreatedAt *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

func (r *surrealContact) toDomain() *domain.ContactMessage {
	msg := &domain.ContactMessage{
		Name:      r.Name,
		Email:     r.Email,
		Subject:   r.Subject,
		Message:   r.Message,
		IPAddress: r.IPAddress,
		IsRead:    r.IsRead,
	}
	if r.ID != nil {
		msg.ID = fmt.Sprint(r.ID.ID)
	}
	if r.CreatedAt != nil {
		msg.CreatedAt = r.CreatedAt.Time.UTC()
	}
	return msg
}

// SurrealContactStore is a ContactRepository backed by SurrealDB.
type SurrealContactStore struct {
	conn           *Connection
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewSurrealContactStore creates a store on top of a managed connection.
// The connection is owned by the store and released by Close.
func NewSurrealContactStore(conn *Connection, queryTimeout, executeTimeout time.Duration) *SurrealContactStore {
	return &SurrealContactStore{
		conn:           conn,
		queryTimeout:   queryTimeout,
		executeTimeout: executeTimeout,
	}
}

var _ domain.ContactRepository = (*SurrealContactStore)(nil)

func recordID(id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(contactTable, id)
}

func (s *SurrealContactStore) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	if msg == nil {
		return nil, opErr("contact message is nil", ErrInvalidInput)
	}
	ctx, cancel := withWriteTimeout(ctx, s.executeTimeout)
	defer cancel()

	const query = `CREATE $id SET name = $name, email = $email, subject = $subject, message = $message,
	ip_address = $ip_address, is_read = false, created_at = time::now()`
	created, err := selectRecord[surrealContact](ctx, s.conn, query, map[string]any{
		"id":         recordID(uuid.NewString()),
		"name":       msg.Name,
		"email":      msg.Email,
		"subject":    msg.Subject,
		"message":    msg.Message,
		"ip_address": msg.IPAddress,
	})
	if errors.Is(err, ErrNotFound) {
		return nil, queryErr("create returned no record", query, ErrQueryFailed)
	}
	if err != nil {
		return nil, wrapOp("create contact message", err)
	}
	return created.toDomain(), nil
}

func (s *SurrealContactStore) FindByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	ctx, cancel := withReadTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := selectRecord[surrealContact](ctx, s.conn, "SELECT * FROM $id", map[string]any{"id": recordID(id)})
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("load contact message %s", id))
	}
	return found.toDomain(), nil
}

func (s *SurrealContactStore) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactMessage, error) {
	ctx, cancel := withReadTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := "SELECT * FROM type::table($table)"
	if filter.UnreadOnly {
		query += " WHERE is_read = false"
	}
	query += " ORDER BY created_at DESC LIMIT $limit"

	rows, err := selectRows[surrealContact](ctx, s.conn, query, map[string]any{
		"table": contactTable,
		"limit": filter.EffectiveLimit(),
	})
	if err != nil {
		return nil, wrapOp("list contact messages", err)
	}

	out := make([]*domain.ContactMessage, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *SurrealContactStore) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	// UPDATE on a missing record would create it on older servers.
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	ctx, cancel := withWriteTimeout(ctx, s.executeTimeout)
	defer cancel()

	updated, err := selectRecord[surrealContact](ctx, s.conn, "UPDATE $id SET is_read = true", map[string]any{"id": recordID(id)})
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("mark contact message %s read", id))
	}
	return updated.toDomain(), nil
}

func (s *SurrealContactStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := withWriteTimeout(ctx, s.executeTimeout)
	defer cancel()

	_, err := selectRecord[surrealContact](ctx, s.conn, "DELETE $id RETURN BEFORE", map[string]any{"id": recordID(id)})
	if err != nil {
		return notFoundOr(err, fmt.Sprintf("delete contact message %s", id))
	}
	return nil
}

// notFoundOr passes ErrNotFound through unwrapped and adds context to anything else.
func notFoundOr(err error, op string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return wrapOp(op, err)
}

// Ping makes a version round trip on the current session.
func (s *SurrealContactStore) Ping(ctx context.Context) error {
	ctx, cancel := withReadTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		_, err := db.Version(ctx)
		return err
	})
}

func (s *SurrealContactStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Close(ctx)
}
