package credential

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("seeded key", func(t *testing.T) {
		s := NewStore("  abc  ")
		assert.True(t, s.HasCredential(ctx))
		key, err := s.Credential(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc", key)
		assert.Equal(t, Status{Present: true}, s.Status())
	})

	t.Run("empty key requires prompt", func(t *testing.T) {
		s := NewStore("")
		assert.False(t, s.HasCredential(ctx))
		_, err := s.Credential(ctx)
		assert.ErrorIs(t, err, ErrCredentialMissing)
		assert.Equal(t, Status{PromptRequired: true}, s.Status())
	})
}

func TestStore_Set(t *testing.T) {
	ctx := context.Background()
	s := NewStore("")

	assert.ErrorIs(t, s.Set("   "), ErrEmptyKey)
	assert.False(t, s.HasCredential(ctx))

	require.NoError(t, s.Set("new-key"))
	key, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-key", key)
	assert.False(t, s.Status().PromptRequired)
}

func TestStore_ResetAndPrompt(t *testing.T) {
	ctx := context.Background()
	s := NewStore("key")

	s.PromptForCredential(ctx)
	assert.Equal(t, Status{Present: true, PromptRequired: true}, s.Status())

	require.NoError(t, s.Set("other"))
	s.Reset()
	assert.False(t, s.HasCredential(ctx))
	assert.Equal(t, Status{PromptRequired: true}, s.Status())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore("seed")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set("k")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Credential(ctx)
			_ = s.Status()
		}()
	}
	wg.Wait()
	assert.True(t, s.HasCredential(ctx))
}
