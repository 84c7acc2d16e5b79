package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Attributes(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	s := newSession("test-id")

	assert.Equal("test-id", s.ID())
	assert.False(s.CreatedAt().IsZero())

	assert.Nil(s.Get("missing"))
	s.Set("k", "v")
	assert.Equal("v", s.Get("k"))
	s.Set("k", 42)
	assert.Equal(42, s.Get("k"))
	s.Remove("k")
	assert.Nil(s.Get("k"))
}

func TestSession_Update(t *testing.T) {
	t.Parallel()
	t.Run("compound-read-modify-write", func(t *testing.T) {
		assert := assert.New(t)
		s := newSession("test-id")
		s.Set("n", 1)
		s.Update(func(attrs map[string]any) {
			n, _ := attrs["n"].(int)
			attrs["n"] = n + 1
		})
		assert.Equal(2, s.Get("n"))
	})
	t.Run("concurrent-updates-serialize", func(t *testing.T) {
		assert := assert.New(t)
		s := newSession("test-id")
		s.Set("n", 0)

		const workers = 50
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				s.Update(func(attrs map[string]any) {
					n, _ := attrs["n"].(int)
					attrs["n"] = n + 1
				})
			}()
		}
		wg.Wait()
		assert.Equal(workers, s.Get("n"))
	})
}

func TestSession_UpdatedAt(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	s := newSession("test-id")
	before := s.UpdatedAt()
	require.False(before.IsZero())

	s.Set("k", "v")
	assert.False(s.UpdatedAt().Before(before))
}
