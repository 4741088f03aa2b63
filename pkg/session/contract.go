package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waggy/go-wizard/pkg/model"
)

// RunStoreContract verifies that a Store implementation behaves like the
// in-memory reference.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	sessionID := "contract-" + NewID()

	t.Run("Save and Load", func(t *testing.T) {
		draft := Draft{
			ProviderServiceID: 42,
			StepID:            11,
			Values:            model.Values{"title": "Walks", "extras": []any{"brush"}},
			Errors:            map[string]string{"rate": "required"},
			UpdatedAt:         time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.Save(ctx, sessionID, draft))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, int64(42), loaded.ProviderServiceID)
		assert.Equal(t, int64(11), loaded.StepID)
		assert.Equal(t, "Walks", loaded.Values["title"])
		assert.Equal(t, []any{"brush"}, loaded.Values["extras"])
		assert.Equal(t, "required", loaded.Errors["rate"])
		assert.True(t, draft.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Loaded Draft Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Values["title"] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Walks", again.Values["title"])
	})

	t.Run("List", func(t *testing.T) {
		other := "contract-other-" + NewID()
		require.NoError(t, store.Save(ctx, other, Draft{ProviderServiceID: 1}))

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, sessionID)
		assert.Contains(t, sessions, other)
		require.NoError(t, store.Delete(ctx, other))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID))
		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, store.Delete(ctx, sessionID))
	})
}
