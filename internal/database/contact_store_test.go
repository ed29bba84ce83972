package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"
)

type storeFactory func(t *testing.T) domain.ContactRepository

func newMemoryStore(t *testing.T) domain.ContactRepository {
	return NewMemoryContactStore()
}

func newSQLiteStore(t *testing.T) domain.ContactRepository {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	return NewSQLiteContactStore(db, 5*time.Second, 5*time.Second)
}

func newSurrealStore(t *testing.T) domain.ContactRepository {
	t.Helper()
	cfg := testutils.ConfigForTests(t)
	testutils.SkipWithoutSurreal(t)
	cfg.StoreDriver = config.StoreSurreal
	conn := NewConnection(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, conn.Connect(ctx))

	err := conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, "DELETE type::table($table)", map[string]any{"table": contactTable})
	})
	require.NoError(t, err)
	return NewSurrealContactStore(conn, 5*time.Second, 5*time.Second)
}

func sample(subject string) *domain.ContactMessage {
	return &domain.ContactMessage{
		Name:      "Socket Test",
		Email:     "test@socket.com",
		Subject:   subject,
		Message:   "Checking the link payload",
		IPAddress: "127.0.0.1",
	}
}

func TestContactStores(t *testing.T) {
	factories := map[string]storeFactory{
		"memory":  newMemoryStore,
		"sqlite":  newSQLiteStore,
		"surreal": newSurrealStore,
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			runContactStoreSuite(t, factory)
		})
	}
}

func runContactStoreSuite(t *testing.T, factory storeFactory) {
	ctx := context.Background()

	t.Run("create assigns id and timestamp", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		input := sample("Socket Routing")
		input.IsRead = true
		saved, err := store.Create(ctx, input)
		require.NoError(t, err)

		assert.NotEmpty(t, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())
		assert.False(t, saved.IsRead, "new messages start unread")
		assert.Equal(t, "Socket Routing", saved.Subject)
		assert.Empty(t, input.ID, "input must not be mutated")

		found, err := store.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
		assert.Equal(t, saved.Email, found.Email)
		assert.Equal(t, saved.IPAddress, found.IPAddress)
	})

	t.Run("ids are unique", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		a, err := store.Create(ctx, sample("a"))
		require.NoError(t, err)
		b, err := store.Create(ctx, sample("b"))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("missing id reports not found", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.FindByID(ctx, "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = store.MarkRead(ctx, "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, store.Delete(ctx, "does-not-exist"), domain.ErrNotFound)
	})

	t.Run("list is newest first and honours filter", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		first, err := store.Create(ctx, sample("first"))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		second, err := store.Create(ctx, sample("second"))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		third, err := store.Create(ctx, sample("third"))
		require.NoError(t, err)

		all, err := store.List(ctx, domain.ContactFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))

		read, err := store.MarkRead(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead)

		unread, err := store.List(ctx, domain.ContactFilter{UnreadOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, first.ID}, ids(unread))

		limited, err := store.List(ctx, domain.ContactFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID}, ids(limited))
	})

	t.Run("delete removes the message", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		saved, err := store.Create(ctx, sample("bye"))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, saved.ID))

		_, err = store.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func ids(msgs []*domain.ContactMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestMemoryContactStore_ClosedStoreIsUnavailable(t *testing.T) {
	store := NewMemoryContactStore()
	require.NoError(t, store.Close())

	_, err := store.Create(context.Background(), sample("late"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = store.List(context.Background(), domain.ContactFilter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMemoryContactStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryContactStore()
	ctx := context.Background()

	saved, err := store.Create(ctx, sample("copy"))
	require.NoError(t, err)
	saved.Subject = "mutated"

	found, err := store.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", found.Subject)
}

func TestMemoryContactStore_TimestampTiesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryContactStore()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	a, err := store.Create(ctx, sample("a"))
	require.NoError(t, err)
	b, err := store.Create(ctx, sample("b"))
	require.NoError(t, err)

	list, err := store.List(ctx, domain.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, ids(list))
}

func TestSQLiteContactStore_ClosedStoreIsUnavailable(t *testing.T) {
	store := newSQLiteStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")

	_, err := store.Create(context.Background(), sample("late"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestNewContactStore_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := NewContactStore(ctx, &config.Config{StoreDriver: config.StoreMemory})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryContactStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{
			StoreDriver:      config.StoreSQLite,
			SQLitePath:       filepath.Join(t.TempDir(), "factory.db"),
			DBQueryTimeout:   time.Second,
			DBExecuteTimeout: time.Second,
		}
		store, err := NewContactStore(ctx, cfg)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &SQLiteContactStore{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewContactStore(ctx, &config.Config{StoreDriver: "paper"})
		assert.Error(t, err)
	})
}

func TestStores_Ping(t *testing.T) {
	ctx := context.Background()
	type pinger interface {
		domain.ContactRepository
		Ping(context.Context) error
	}

	for name, factory := range map[string]storeFactory{"memory": newMemoryStore, "sqlite": newSQLiteStore} {
		t.Run(name, func(t *testing.T) {
			store, ok := factory(t).(pinger)
			require.True(t, ok)
			assert.NoError(t, store.Ping(ctx))
			require.NoError(t, store.Close())
			assert.ErrorIs(t, store.Ping(ctx), domain.ErrStoreUnavailable)
		})
	}
}
