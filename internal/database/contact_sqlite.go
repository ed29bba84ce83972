package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/eventdesk/internal/domain"
)

const contactColumns = "id, name, email, subject, message, ip_address, is_read, created_at"

// SQLiteContactStore is a ContactRepository backed by a SQLite database.
type SQLiteContactStore struct {
	db             *sql.DB
	queryTimeout   time.Duration
	executeTimeout time.Duration
	closed         atomic.Bool
}

// NewSQLiteContactStore wraps an open database handle. The handle is owned by
// the store and released by Close.
func NewSQLiteContactStore(db *sql.DB, queryTimeout, executeTimeout time.Duration) *SQLiteContactStore {
	return &SQLiteContactStore{
		db:             db,
		queryTimeout:   queryTimeout,
		executeTimeout: executeTimeout,
	}
}

var _ domain.ContactRepository = (*SQLiteContactStore)(nil)

func (s *SQLiteContactStore) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if msg == nil {
		return nil, opErr("contact message is nil", ErrInvalidInput)
	}

	ctx, cancel := withWriteTimeout(ctx, s.executeTimeout)
	defer cancel()

	saved := *msg
	saved.ID = uuid.NewString()
	saved.IsRead = false
	saved.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO contact_messages (` + contactColumns + `) VALUES (?, ?, ?, ?, ?, ?, 0, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		saved.ID, saved.Name, saved.Email, saved.Subject, saved.Message, saved.IPAddress,
		saved.CreatedAt.UnixNano(),
	); err != nil {
		return nil, queryErr("insert contact message", query, err)
	}
	return &saved, nil
}

func (s *SQLiteContactStore) FindByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	ctx, cancel := withReadTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = ?`, id)
	msg, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, opErr(fmt.Sprintf("load contact message %s", id), err)
	}
	return msg, nil
}

func (s *SQLiteContactStore) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactMessage, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	ctx, cancel := withReadTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := `SELECT ` + contactColumns + ` FROM contact_messages`
	if filter.UnreadOnly {
		query += " WHERE is_read = 0"
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"

	rows, err := s.db.QueryContext(ctx, query, filter.EffectiveLimit())
	if err != nil {
		return nil, queryErr("list contact messages", query, err)
	}
	defer rows.Close()

	out := make([]*domain.ContactMessage, 0)
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, opErr("scan contact message", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *SQLiteContactStore) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	execCtx, cancel := withWriteTimeout(ctx, s.executeTimeout)
	defer cancel()

	res, err := s.db.ExecContext(execCtx, `UPDATE contact_messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, opErr(fmt.Sprintf("mark contact message %s read", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, opErr("read affected rows", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *SQLiteContactStore) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	ctx, cancel := withWriteTimeout(ctx, s.executeTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return opErr(fmt.Sprintf("delete contact message %s", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return opErr("read affected rows", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the database file is still reachable.
func (s *SQLiteContactStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	ctx, cancel := withReadTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLiteContactStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.ContactMessage, error) {
	var (
		msg       domain.ContactMessage
		readInt   int
		createdNs int64
	)
	if err := row.Scan(
		&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &msg.IPAddress,
		&readInt, &createdNs,
	); err != nil {
		return nil, err
	}
	msg.IsRead = readInt == 1
	msg.CreatedAt = time.Unix(0, createdNs).UTC()
	return &msg, nil
}
