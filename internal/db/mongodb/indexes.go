package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Declared secondary indexes per collection. All entity lookups go through
// one of these keys.
var (
	indexesUser = []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}},
	}

	indexesUserProfile = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_username", Value: 1}}},
	}

	indexesListItem = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_username", Value: 1}}},
	}
)

// applyAllIndexes idempotently ensures every declared index exists on the
// collection: creating an index that is already present is a no-op.
// Intended for use after operations that create or replace entire documents,
// so index presence stays self-healing without a separate migration step.
func (db *MongoDB) applyAllIndexes(ctx context.Context, collection string, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}

	_, err := db.database.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/mongodb/indexes.go/applyAllIndexes(): error while `Indexes().CreateMany()` calling: %w",
			err,
		)
	}

	return nil
}

func (db *MongoDB) applyDeclaredIndexes(ctx context.Context) error {
	for collection, indexes := range map[string][]mongo.IndexModel{
		usersCollection:        indexesUser,
		userProfilesCollection: indexesUserProfile,
		listItemsCollection:    indexesListItem,
	} {
		if err := db.applyAllIndexes(ctx, collection, indexes); err != nil {
			return err
		}
	}

	return nil
}
