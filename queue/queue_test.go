package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_FIFO(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, []byte("first")))
	require.NoError(t, q.Publish(ctx, []byte("second")))

	msg, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", string(msg))

	msg, err = q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", string(msg))
}

func TestMemory_Empty(t *testing.T) {
	q := NewMemory()

	_, err := q.Receive(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestMemory_PublishCopiesPayload(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	payload := []byte("original")
	require.NoError(t, q.Publish(ctx, payload))
	payload[0] = 'X'

	msg, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", string(msg))
}

func TestMemory_ConcurrentPublish(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = q.Publish(ctx, []byte(fmt.Sprintf("msg-%d", n)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, q.Len())
}

func TestMemory_CancelledContext(t *testing.T) {
	q := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, q.Publish(ctx, []byte("x")))
	_, err := q.Receive(ctx)
	assert.Error(t, err)
}
