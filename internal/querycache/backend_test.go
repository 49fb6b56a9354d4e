package querycache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, backend Backend) {
	ctx := context.Background()
	entry := &Entry{Payload: []byte(`{"total":3}`), UpdatedAt: time.Unix(1_700_000_000, 0).UTC()}

	_, ok, err := backend.Load(ctx, `offers:{"page":1}`)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, key := range []string{`offers:{"page":1}`, `offers:{"page":2,"search":"a*b"}`, `universities:{"page":1}`} {
		require.NoError(t, backend.Store(ctx, key, entry))
	}

	loaded, ok, err := backend.Load(ctx, `offers:{"page":1}`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"total":3}`, string(loaded.Payload))
	assert.True(t, entry.UpdatedAt.Equal(loaded.UpdatedAt))

	n, err := backend.DeletePrefix(ctx, "offers:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, err = backend.Load(ctx, `universities:{"page":1}`)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, backend.Delete(ctx, `universities:{"page":1}`))
	_, ok, err = backend.Load(ctx, `universities:{"page":1}`)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend(time.Minute)
	defer backend.Close()
	exerciseBackend(t, backend)
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("OFFERS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OFFERS_TEST_REDIS_ADDR not set")
	}
	rdb, err := DialRedis(context.Background(), RedisConfig{Addr: addr})
	require.NoError(t, err)

	namespace := "offers-test-" + time.Now().Format("150405.000000") + ":"
	backend := NewRedisBackend(rdb, namespace, time.Minute)
	defer backend.Close()
	exerciseBackend(t, backend)
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"offers:", "offers:"},
		{`offers:{"search":"a*b"}`, `offers:{"search":"a\*b"}`},
		{"x?[y]", `x\?\[y\]`},
		{`back\slash`, `back\\slash`},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, escapeGlob(test.in), test.in)
	}
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Second, sweepInterval(time.Second))
	assert.Equal(t, 15*time.Second, sweepInterval(time.Minute))
	assert.Equal(t, time.Minute, sweepInterval(time.Hour))
}
