package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	t.Run("Set and Get round-trip", func(t *testing.T) {
		m := NewMemory()
		m.Set("k", map[string]int{"n": 7}, time.Minute)

		var got map[string]int
		assert.True(t, m.Get("k", &got))
		assert.Equal(t, 7, got["n"])
	})

	t.Run("expired entries miss", func(t *testing.T) {
		m := NewMemory()
		m.Set("k", "v", -time.Second)

		var got string
		assert.False(t, m.Get("k", &got))
	})

	t.Run("Del removes keys", func(t *testing.T) {
		m := NewMemory()
		m.Set("a", 1, time.Minute)
		m.Set("b", 2, time.Minute)
		m.Del("a", "b")

		var got int
		assert.False(t, m.Get("a", &got))
		assert.False(t, m.Get("b", &got))
	})

	t.Run("DelPattern matches globs", func(t *testing.T) {
		m := NewMemory()
		m.Set("feed:all:50:0", 1, time.Minute)
		m.Set("feed:all:50:50", 2, time.Minute)
		m.Set("feed:user:u1:50:0", 3, time.Minute)

		m.DelPattern("feed:all:*")

		var got int
		assert.False(t, m.Get("feed:all:50:0", &got))
		assert.False(t, m.Get("feed:all:50:50", &got))
		assert.True(t, m.Get("feed:user:u1:50:0", &got))
	})
}
