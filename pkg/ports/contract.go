package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/hsn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID)
		s.UserID = "user_state_demo"
		s.Set("foo", "bar")
		s.Set(domain.KeyCodeGuardBlocked, true)
		s.Set(domain.KeyLastResult, []domain.Result{
			domain.ValidResult("8465", "Machine tools"),
			domain.NotFoundResult("99999999"),
		})

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, "user_state_demo", loaded.UserID)
		assert.Equal(t, "bar", loaded.State["foo"])
		assert.True(t, loaded.Flag(domain.KeyCodeGuardBlocked))

		results, err := loaded.LastResults()
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, domain.ReasonValid, results[0].Reason)
		assert.Equal(t, domain.ReasonNotFound, results[1].Reason)
	})

	t.Run("Isolation", func(t *testing.T) {
		s := domain.NewSession(sessionID + "-iso")
		s.Set("k", "original")
		require.NoError(t, store.Save(ctx, s))
		defer func() { _ = store.Delete(ctx, s.ID) }()

		s.Set("k", "mutated after save")

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", loaded.State["k"])

		loaded.Set("k", "mutated after load")
		again, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", again.State["k"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1))
		_ = store.Save(ctx, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
