package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	body := []byte(`{"teams":[]}`)

	raw, err := encode(body, time.Unix(1730800000, 0))
	require.NoError(t, err)
	assert.NotEqual(t, body, raw)

	got, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode([]byte{0xc1})
	assert.Error(t, err)
}

// TestRedisCache runs against a live server when GRIDIRON_TEST_REDIS_URL is set.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("GRIDIRON_TEST_REDIS_URL")
	if url == "" {
		t.Skip("GRIDIRON_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	rc, err := NewRedisCache(ctx, url)
	require.NoError(t, err)
	defer rc.Close()

	key := "test:" + t.Name()
	defer rc.Delete(ctx, key)

	_, ok, err := rc.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Store(ctx, key, []byte("payload"), time.Minute))
	body, ok, err := rc.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), body)
}
