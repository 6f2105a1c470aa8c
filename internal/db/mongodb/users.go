package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/readify-app/readify/internal/models"
)

// FindUserByUsername loads a user document by exact lowercase username match.
// A miss is reported as found == false without an error, so callers can use
// it to check whether a username is already taken.
func (db *MongoDB) FindUserByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	if username == "" {
		return nil, false, models.ErrUsernameRequired
	}

	filter := bson.M{"username": models.NormalizeUsername(username)}

	var usr models.User
	err := db.database.Collection(usersCollection).FindOne(ctx, filter).Decode(&usr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false,
			fmt.Errorf(
				"in internal/db/mongodb/users.go/FindUserByUsername(): error while `FindOne().Decode()` calling: %w",
				err,
			)
	}

	return &usr, true, nil
}

// SaveUser inserts a new user document. Users are always created, never
// upserted: registration is the only write path for identities. The
// store-assigned id is written back onto usr and returned.
func (db *MongoDB) SaveUser(ctx context.Context, usr *models.User) (primitive.ObjectID, error) {
	usr.Username = models.NormalizeUsername(usr.Username)

	res, err := db.database.Collection(usersCollection).InsertOne(ctx, usr)
	if err != nil {
		return primitive.NilObjectID,
			fmt.Errorf(
				"in internal/db/mongodb/users.go/SaveUser(): error while `InsertOne()` calling: %w",
				err,
			)
	}

	uid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID,
			fmt.Errorf("in internal/db/mongodb/users.go/SaveUser(): unexpected inserted id type %T", res.InsertedID)
	}
	usr.ID = uid

	// The insert is not rolled back when index maintenance fails; the same
	// indexes are ensured again on the next write to the collection.
	if err := db.applyAllIndexes(ctx, usersCollection, indexesUser); err != nil {
		return uid, err
	}

	return uid, nil
}
