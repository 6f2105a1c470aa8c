package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readify-app/readify/internal/db/memorystorage"
	"github.com/readify-app/readify/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	theStorage, err := memorystorage.New()
	require.NoError(t, err)

	return New(theStorage)
}

func TestRegisterAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	usr, err := s.RegisterAccount(ctx, "ReadingFan")
	require.NoError(t, err)
	require.NotNil(t, usr)
	assert.Equal(t, "readingfan", usr.Username)
	assert.False(t, usr.ID.IsZero())

	t.Run("the profile is created alongside the user", func(t *testing.T) {
		profile, found, err := s.GetProfile(ctx, models.ProfileQuery{OwnerID: usr.ID})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, usr.ID, profile.OwnerID)
		assert.Equal(t, "readingfan", profile.OwnerUsername)
	})

	t.Run("another spelling of the same username cannot register", func(t *testing.T) {
		_, err := s.RegisterAccount(ctx, "READINGFAN")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("an empty username cannot register", func(t *testing.T) {
		_, err := s.RegisterAccount(ctx, "")
		assert.ErrorIs(t, err, models.ErrUsernameRequired)
	})
}

func TestItemFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	usr, err := s.RegisterAccount(ctx, "reader")
	require.NoError(t, err)

	item := &models.ListItem{
		OwnerID:       usr.ID,
		OwnerUsername: usr.Username,
		URL:           "https://example.com/article",
		Tags:          []string{"go", "databases"},
	}
	itemID, err := s.SaveItem(ctx, item)
	require.NoError(t, err)
	assert.False(t, item.CreatedAt.IsZero(), "saving should stamp created_at")
	assert.False(t, item.UpdatedAt.IsZero(), "saving should stamp updated_at")

	t.Run("a fresh item shows up on the dashboard", func(t *testing.T) {
		items, err := s.ListItems(ctx, models.ListItemQuery{OwnerID: usr.ID})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, itemID, items[0].ID)
	})

	t.Run("archiving moves the item off the dashboard", func(t *testing.T) {
		updated, err := s.SetItemFlag(ctx, usr.ID, itemID.Hex(), models.FlagPatch{
			Archived: models.Bool(true),
		})
		require.NoError(t, err)
		assert.True(t, updated)

		items, err := s.ListItems(ctx, models.ListItemQuery{OwnerID: usr.ID})
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = s.ListItems(ctx, models.ListItemQuery{
			OwnerID:  usr.ID,
			Archived: models.FlagTrue,
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Archived)
	})

	t.Run("re-saving with a set id replaces the document", func(t *testing.T) {
		item.Title = "Renamed"
		again, err := s.SaveItem(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, itemID, again)

		items, err := s.ListItems(ctx, models.ListItemQuery{
			OwnerID:  usr.ID,
			Archived: models.FlagAny,
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Renamed", items[0].Title)
	})

	t.Run("ping reaches the backend", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
