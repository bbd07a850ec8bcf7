package remote

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCache_SameEndpointSameClient(t *testing.T) {
	cache := NewClientCache("", DefaultPolicy())

	first, err := cache.Get("https://extract.example.com")
	require.NoError(t, err)
	second, err := cache.Get("https://extract.example.com")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestClientCache_DistinctEndpointsDistinctClients(t *testing.T) {
	cache := NewClientCache("", DefaultPolicy())

	a, err := cache.Get("https://extract.example.com")
	require.NoError(t, err)
	b, err := cache.Get("https://generate.example.com")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

func TestClientCache_InvalidEndpoint(t *testing.T) {
	cache := NewClientCache("", DefaultPolicy())

	_, err := cache.Get("")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = cache.Get("   ")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestClientCache_ConcurrentFirstUse(t *testing.T) {
	cache := NewClientCache("", DefaultPolicy())

	const callers = 64
	clients := make([]any, callers)

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			client, err := cache.Get("https://extract.example.com")
			assert.NoError(t, err)
			clients[i] = client
		}(i)
	}
	wg.Wait()

	// Every caller must observe the identical instance.
	for i := 1; i < callers; i++ {
		assert.Same(t, clients[0], clients[i])
	}
}

func TestClientCache_ClientCarriesPolicy(t *testing.T) {
	policy := NewPolicy(WithMaxRetries(7), WithResponseTimeout(DefaultResponseTimeout))
	cache := NewClientCache("secret", policy)

	client, err := cache.Get("https://score.example.com")
	require.NoError(t, err)

	transport, ok := client.Transport.(*Transport)
	require.True(t, ok, "cached clients use the retrying transport")
	assert.Equal(t, 7, transport.policy.MaxRetries)
	assert.Equal(t, "secret", transport.credential)
	assert.Equal(t, policy.ResponseTimeout, client.Timeout)
}
