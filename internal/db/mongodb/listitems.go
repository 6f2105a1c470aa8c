package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/readify-app/readify/internal/db/storage"
	"github.com/readify-app/readify/internal/models"
)

// buildListItemFilter translates a ListItemQuery into the filter document
// sent to the store. One of the owner keys is required; the item id is an
// optional extra filter usable only alongside the owner id, so a caller can
// never address an item without naming its owner.
func buildListItemFilter(query models.ListItemQuery) (bson.M, error) {
	filter := bson.M{}

	switch {
	case query.OwnerUsername != "":
		filter["owner_username"] = models.NormalizeUsername(query.OwnerUsername)
	case !query.OwnerID.IsZero():
		filter["owner_id"] = query.OwnerID
		if query.ItemID != "" {
			itemID, err := primitive.ObjectIDFromHex(query.ItemID)
			if err != nil {
				return nil, models.ErrBadItemID
			}
			filter["_id"] = itemID
		}
	default:
		return nil, models.ErrOwnerKeyRequired
	}

	// Archived and deleted default to matching only false, so normal
	// browsing hides archived and deleted items unless the caller opts out
	// with FlagAny. Liked is unfiltered unless asked for.
	if v, ok := query.Archived.Resolve(models.FlagFalse); ok {
		filter["archived"] = v
	}
	if v, ok := query.Deleted.Resolve(models.FlagFalse); ok {
		filter["deleted"] = v
	}
	if v, ok := query.Liked.Resolve(models.FlagAny); ok {
		filter["liked"] = v
	}

	if len(query.Tags) > 0 {
		filter["tags"] = bson.M{"$all": query.Tags}
	}

	if !query.UpdatedAfter.IsZero() {
		filter["updated_at"] = bson.M{"$gte": query.UpdatedAfter}
	}

	return filter, nil
}

type listItemCursor struct {
	cursor *mongo.Cursor
	item   models.ListItem
	err    error
}

func (c *listItemCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if !c.cursor.Next(ctx) {
		return false
	}

	c.item = models.ListItem{}
	if err := c.cursor.Decode(&c.item); err != nil {
		c.err = fmt.Errorf(
			"in internal/db/mongodb/listitems.go/Next(): error while `cursor.Decode()` calling: %w",
			err,
		)
		return false
	}

	return true
}

// Item returns the item the cursor currently points at. The returned value
// is only valid until the next call to Next.
func (c *listItemCursor) Item() *models.ListItem {
	return &c.item
}

func (c *listItemCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.cursor.Err()
}

func (c *listItemCursor) Close(ctx context.Context) error {
	return c.cursor.Close(ctx)
}

// FindListItems returns a lazy cursor over the items matching query.
// Documents are fetched and decoded as the caller iterates, never
// materialized eagerly; the caller must Close the cursor on every exit path.
func (db *MongoDB) FindListItems(ctx context.Context, query models.ListItemQuery) (storage.ListItemCursor, error) {
	filter, err := buildListItemFilter(query)
	if err != nil {
		return nil, err
	}

	cursor, err := db.database.Collection(listItemsCollection).Find(ctx, filter)
	if err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/mongodb/listitems.go/FindListItems(): error while `Find()` calling: %w",
				err,
			)
	}

	return &listItemCursor{cursor: cursor}, nil
}

// SaveListItem upserts an item by id and writes the resulting id back onto
// item. Timestamps are stored as given; stamping them is the caller's job.
func (db *MongoDB) SaveListItem(ctx context.Context, item *models.ListItem) (primitive.ObjectID, error) {
	item.OwnerUsername = models.NormalizeUsername(item.OwnerUsername)

	uid, err := db.saveByID(ctx, listItemsCollection, item.ID, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	item.ID = uid

	if err := db.applyAllIndexes(ctx, listItemsCollection, indexesListItem); err != nil {
		return uid, err
	}

	return uid, nil
}

// UpdateListItemFlag applies a partial update to exactly one soft-state flag
// of the item matched by both itemID and ownerID. The owner id is part of
// the filter, so a caller can never flip another user's item. Only the
// single flag field is modified; in particular updated_at keeps its value.
// A patch with no flags set is a no-op reported as (false, nil).
func (db *MongoDB) UpdateListItemFlag(
	ctx context.Context,
	ownerID primitive.ObjectID,
	itemID string,
	patch models.FlagPatch,
) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return false, models.ErrBadItemID
	}

	field, value, ok := patch.Field()
	if !ok {
		return false, nil
	}

	filter := bson.M{
		"_id":      oid,
		"owner_id": ownerID,
	}

	res, err := db.database.Collection(listItemsCollection).UpdateOne(
		ctx,
		filter,
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return false,
			fmt.Errorf(
				"in internal/db/mongodb/listitems.go/UpdateListItemFlag(): error while `UpdateOne()` calling: %w",
				err,
			)
	}

	return res.MatchedCount > 0, nil
}
