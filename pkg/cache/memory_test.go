package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type ratioRecorder struct {
	last float64
}

func (r *ratioRecorder) UpdateCacheHitRatio(_ string, ratio float64) {
	r.last = ratio
}

type entry struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	recorder := &ratioRecorder{}
	c := cache.NewMemoryCache(time.Minute, time.Minute, recorder, zaptest.NewLogger(t))

	t.Run("struct round trip", func(t *testing.T) {
		in := entry{Email: "admin@clinica.com", ExpiresAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
		require.NoError(t, c.Set(ctx, "k1", in, time.Minute))

		var out entry
		found, err := c.Get(ctx, "k1", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, in.Email, out.Email)
		assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	})

	t.Run("miss updates hit ratio", func(t *testing.T) {
		var out entry
		found, err := c.Get(ctx, "ausente", &out)
		require.NoError(t, err)
		assert.False(t, found)
		assert.InDelta(t, 0.5, recorder.last, 0.001)
	})

	t.Run("expired item is not returned", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "curto", "valor", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		var out string
		found, err := c.Get(ctx, "curto", &out)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete and clear", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
		require.NoError(t, c.Delete(ctx, "a"))

		var n int
		found, _ := c.Get(ctx, "a", &n)
		assert.False(t, found)

		require.NoError(t, c.Clear(ctx))
		assert.Equal(t, 0, c.ItemCount())
	})
}
