package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/readify-app/readify/internal/models"
)

func TestBuildProfileFilter(t *testing.T) {
	ownerID := primitive.NewObjectID()

	t.Run("owner username wins over owner id and is lowercased", func(t *testing.T) {
		filter, err := buildProfileFilter(models.ProfileQuery{
			OwnerUsername: "ReadingFan",
			OwnerID:       ownerID,
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"owner_username": "readingfan"}, filter)
	})

	t.Run("owner id alone", func(t *testing.T) {
		filter, err := buildProfileFilter(models.ProfileQuery{OwnerID: ownerID})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"owner_id": ownerID}, filter)
	})

	t.Run("no keys", func(t *testing.T) {
		_, err := buildProfileFilter(models.ProfileQuery{})
		assert.ErrorIs(t, err, models.ErrOwnerKeyRequired)
	})
}

func TestBuildListItemFilter(t *testing.T) {
	ownerID := primitive.NewObjectID()
	itemID := primitive.NewObjectID()

	t.Run("default browsing filter hides archived and deleted", func(t *testing.T) {
		filter, err := buildListItemFilter(models.ListItemQuery{OwnerID: ownerID})
		require.NoError(t, err)
		assert.Equal(
			t,
			bson.M{
				"owner_id": ownerID,
				"archived": false,
				"deleted":  false,
			},
			filter,
		)
	})

	t.Run("owner username is normalized and excludes the item id", func(t *testing.T) {
		filter, err := buildListItemFilter(models.ListItemQuery{
			OwnerUsername: "READER",
			ItemID:        itemID.Hex(),
		})
		require.NoError(t, err)
		assert.Equal(
			t,
			bson.M{
				"owner_username": "reader",
				"archived":       false,
				"deleted":        false,
			},
			filter,
		)
	})

	t.Run("item id narrows an owner id query", func(t *testing.T) {
		filter, err := buildListItemFilter(models.ListItemQuery{
			OwnerID: ownerID,
			ItemID:  itemID.Hex(),
		})
		require.NoError(t, err)
		assert.Equal(t, itemID, filter["_id"])
		assert.Equal(t, ownerID, filter["owner_id"])
	})

	t.Run("malformed item id", func(t *testing.T) {
		_, err := buildListItemFilter(models.ListItemQuery{
			OwnerID: ownerID,
			ItemID:  "zzz",
		})
		assert.ErrorIs(t, err, models.ErrBadItemID)
	})

	t.Run("no owner keys", func(t *testing.T) {
		_, err := buildListItemFilter(models.ListItemQuery{ItemID: itemID.Hex()})
		assert.ErrorIs(t, err, models.ErrOwnerKeyRequired)
	})

	t.Run("flag overrides disable or invert the defaults", func(t *testing.T) {
		filter, err := buildListItemFilter(models.ListItemQuery{
			OwnerID:  ownerID,
			Archived: models.FlagTrue,
			Deleted:  models.FlagAny,
			Liked:    models.FlagTrue,
		})
		require.NoError(t, err)
		assert.Equal(
			t,
			bson.M{
				"owner_id": ownerID,
				"archived": true,
				"liked":    true,
			},
			filter,
		)
	})

	t.Run("tags become a conjunctive all-of clause", func(t *testing.T) {
		filter, err := buildListItemFilter(models.ListItemQuery{
			OwnerID: ownerID,
			Tags:    []string{"go", "databases"},
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$all": []string{"go", "databases"}}, filter["tags"])
	})

	t.Run("updated-after becomes a greater-or-equal bound", func(t *testing.T) {
		since := time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC)
		filter, err := buildListItemFilter(models.ListItemQuery{
			OwnerID:      ownerID,
			UpdatedAfter: since,
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$gte": since}, filter["updated_at"])
	})
}
