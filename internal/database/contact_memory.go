package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/eventdesk/internal/domain"
)

// MemoryContactStore keeps contact messages in process memory. Messages are
// lost on restart; it backs development setups and tests.
type MemoryContactStore struct {
	mu       sync.RWMutex
	messages map[string]*domain.ContactMessage
	seq      uint64
	order    map[string]uint64
	closed   bool
	now      func() time.Time
}

// NewMemoryContactStore returns an empty in-memory store.
func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{
		messages: make(map[string]*domain.ContactMessage),
		order:    make(map[string]uint64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ domain.ContactRepository = (*MemoryContactStore)(nil)

func (s *MemoryContactStore) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, opErr("contact message is nil", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	saved := *msg
	saved.ID = uuid.NewString()
	saved.IsRead = false
	saved.CreatedAt = s.now()

	s.seq++
	s.messages[saved.ID] = &saved
	s.order[saved.ID] = s.seq

	out := saved
	return &out, nil
}

func (s *MemoryContactStore) FindByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *msg
	return &out, nil
}

func (s *MemoryContactStore) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]*domain.ContactMessage, 0, len(s.messages))
	for _, msg := range s.messages {
		if filter.UnreadOnly && msg.IsRead {
			continue
		}
		cp := *msg
		out = append(out, &cp)
	}

	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})

	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryContactStore) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	msg.IsRead = true
	out := *msg
	return &out, nil
}

func (s *MemoryContactStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.messages[id]; !ok {
		return ErrNotFound
	}
	delete(s.messages, id)
	delete(s.order, id)
	return nil
}

// Ping reports ErrClosed once the store is closed.
func (s *MemoryContactStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store unavailable. Subsequent calls fail with ErrClosed.
func (s *MemoryContactStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
