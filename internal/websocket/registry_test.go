package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddRemove(t *testing.T) {
	r := NewRegistry()
	c := NewClient("a", nil, 1)

	assert.True(t, r.Add(c))
	assert.False(t, r.Add(c), "duplicate add is rejected")
	assert.Equal(t, 1, r.Count())

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"), "second remove is a no-op")
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_SnapshotIsDetached(t *testing.T) {
	r := NewRegistry()
	r.Add(NewClient("a", nil, 1))
	r.Add(NewClient("b", nil, 1))

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	r.Remove("a")
	assert.Len(t, snap, 2, "snapshot is unaffected by later removals")
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_ConcurrentConnectDisconnect(t *testing.T) {
	r := NewRegistry()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("client-%d", i)
			r.Add(NewClient(id, nil, 1))
			_ = r.Snapshot()
			if i%2 == 0 {
				r.Remove(id)
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n/2, r.Count())
}

func TestClient_Lifecycle(t *testing.T) {
	c := NewClient("a", nil, 1)
	assert.Equal(t, StateConnecting, c.State())
	assert.ErrorIs(t, c.Enqueue([]byte("early")), ErrClientClosed, "connecting clients receive nothing")

	require.True(t, c.open())
	assert.False(t, c.open(), "open is a one-way transition")
	assert.Equal(t, StateOpen, c.State())

	require.NoError(t, c.Enqueue([]byte("one")))
	assert.ErrorIs(t, c.Enqueue([]byte("two")), ErrSendBufferFull)

	c.Close()
	c.Close()
	assert.Equal(t, StateClosed, c.State())
	assert.ErrorIs(t, c.Enqueue([]byte("late")), ErrClientClosed)
	assert.Equal(t, "closed", c.State().String())
}
