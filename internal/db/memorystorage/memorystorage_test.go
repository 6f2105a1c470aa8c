package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readify-app/readify/internal/models"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()

	theStorage, err := New()
	require.NoError(t, err)
	require.NotNil(t, theStorage)

	usr := &models.User{Username: "Visitor"}
	_, err = theStorage.SaveUser(ctx, usr)
	require.NoError(t, err)

	loaded, found, err := theStorage.FindUserByUsername(ctx, "visitor")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, usr.ID, loaded.ID)

	item := &models.ListItem{OwnerID: usr.ID, OwnerUsername: usr.Username, URL: "https://example.com"}
	itemID, err := theStorage.SaveListItem(ctx, item)
	require.NoError(t, err)

	updated, err := theStorage.UpdateListItemFlag(ctx, usr.ID, itemID.Hex(), models.FlagPatch{
		Liked: models.Bool(true),
	})
	require.NoError(t, err)
	assert.True(t, updated)

	assert.NoError(t, theStorage.Ping(ctx))
	assert.NoError(t, theStorage.Close(ctx), "closing the memory storage should not touch any file")
}
