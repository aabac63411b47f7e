package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoik/emailapi/internal/models"
)

// testStoreContract runs the behaviour every backend must share against a store
// whose Emails table is reset before each subtest.
func testStoreContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	fresh := func(t *testing.T) Store {
		s := open(t)
		require.NoError(t, s.Sync(ctx))
		require.NoError(t, s.Truncate(ctx))
		return s
	}

	t.Run("create assigns positive id", func(t *testing.T) {
		s := fresh(t)
		created, err := s.Create(ctx, models.NewEmail{Subject: "New subject", Message: "New message"})
		require.NoError(t, err)

		assert.Greater(t, created.ID, int64(0))
		assert.Equal(t, "New subject", created.Subject)
		assert.Equal(t, "New message", created.Message)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("bulk create keeps order", func(t *testing.T) {
		s := fresh(t)
		created, err := s.BulkCreate(ctx, []models.NewEmail{
			{Subject: "Subject 0", Message: "Email message 0"},
			{Subject: "Subject 1", Message: "Email message 1"},
			{Subject: "Subject 2", Message: "Email message 2"},
		})
		require.NoError(t, err)
		require.Len(t, created, 3)
		assert.Less(t, created[0].ID, created[1].ID)
		assert.Less(t, created[1].ID, created[2].ID)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, created, all)
	})

	t.Run("find all on empty table", func(t *testing.T) {
		s := fresh(t)
		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("find one by subject", func(t *testing.T) {
		s := fresh(t)
		_, err := s.BulkCreate(ctx, []models.NewEmail{
			{Subject: "Subject 41", Message: "Email message 41"},
			{Subject: "Subject 42", Message: "Email message 42"},
		})
		require.NoError(t, err)

		got, err := s.FindOne(ctx, models.BySubject("Subject 42"))
		require.NoError(t, err)
		assert.Equal(t, "Email message 42", got.Message)

		_, err = s.FindOne(ctx, models.BySubject("Subject 43"))
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("update merges fields", func(t *testing.T) {
		s := fresh(t)
		created, err := s.Create(ctx, models.NewEmail{Subject: "Subject 42", Message: "Email message 42"})
		require.NoError(t, err)

		subject := "Changed Subject 42"
		updated, err := s.Update(ctx, created.ID, models.EmailPatch{Subject: &subject})
		require.NoError(t, err)
		assert.Equal(t, models.Email{ID: created.ID, Subject: subject, Message: "Email message 42"}, updated)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		unchanged, err := s.Update(ctx, created.ID, models.EmailPatch{})
		require.NoError(t, err)
		assert.Equal(t, updated, unchanged)
	})

	t.Run("missing ids", func(t *testing.T) {
		s := fresh(t)
		subject := "x"

		_, err := s.FindByID(ctx, 987654)
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = s.Update(ctx, 987654, models.EmailPatch{Subject: &subject})
		assert.True(t, errors.Is(err, ErrNotFound))

		assert.True(t, errors.Is(s.Delete(ctx, 987654), ErrNotFound))
	})

	t.Run("delete removes exactly one", func(t *testing.T) {
		s := fresh(t)
		created, err := s.BulkCreate(ctx, []models.NewEmail{
			{Subject: "a", Message: "a"},
			{Subject: "b", Message: "b"},
		})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, created[0].ID))
		_, err = s.FindByID(ctx, created[0].ID)
		assert.True(t, errors.Is(err, ErrNotFound))

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Email{created[1]}, all)

		assert.True(t, errors.Is(s.Delete(ctx, created[0].ID), ErrNotFound))
	})

	t.Run("ids are not reused", func(t *testing.T) {
		s := fresh(t)
		first, err := s.Create(ctx, models.NewEmail{Subject: "a", Message: "a"})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, first.ID))
		require.NoError(t, s.Truncate(ctx))

		second, err := s.Create(ctx, models.NewEmail{Subject: "b", Message: "b"})
		require.NoError(t, err)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("ping", func(t *testing.T) {
		s := fresh(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
