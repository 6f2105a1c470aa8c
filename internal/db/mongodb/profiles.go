package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/readify-app/readify/internal/models"
)

func buildProfileFilter(query models.ProfileQuery) (bson.M, error) {
	switch {
	case query.OwnerUsername != "":
		return bson.M{"owner_username": models.NormalizeUsername(query.OwnerUsername)}, nil
	case !query.OwnerID.IsZero():
		return bson.M{"owner_id": query.OwnerID}, nil
	default:
		return nil, models.ErrOwnerKeyRequired
	}
}

// FindUserProfile loads the profile document for an owner. Exactly one of
// the query's owner keys must be supplied; OwnerUsername takes precedence
// when both are set. A missing profile is a normal outcome ("no profile
// yet") reported as found == false.
func (db *MongoDB) FindUserProfile(ctx context.Context, query models.ProfileQuery) (*models.UserProfile, bool, error) {
	filter, err := buildProfileFilter(query)
	if err != nil {
		return nil, false, err
	}

	var profile models.UserProfile
	err = db.database.Collection(userProfilesCollection).FindOne(ctx, filter).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false,
			fmt.Errorf(
				"in internal/db/mongodb/profiles.go/FindUserProfile(): error while `FindOne().Decode()` calling: %w",
				err,
			)
	}

	return &profile, true, nil
}

// SaveUserProfile upserts a profile by id: inserts when the id is unset,
// otherwise replaces the existing document wholesale. The resulting id is
// written back onto profile and returned.
func (db *MongoDB) SaveUserProfile(ctx context.Context, profile *models.UserProfile) (primitive.ObjectID, error) {
	profile.OwnerUsername = models.NormalizeUsername(profile.OwnerUsername)

	uid, err := db.saveByID(ctx, userProfilesCollection, profile.ID, profile)
	if err != nil {
		return primitive.NilObjectID, err
	}
	profile.ID = uid

	if err := db.applyAllIndexes(ctx, userProfilesCollection, indexesUserProfile); err != nil {
		return uid, err
	}

	return uid, nil
}

// saveByID implements replace-or-insert semantics keyed by the _id field:
// a zero id inserts a fresh document and adopts the store-assigned id, a
// set id replaces the matching document, creating it when absent.
func (db *MongoDB) saveByID(
	ctx context.Context,
	collection string,
	id primitive.ObjectID,
	document interface{},
) (primitive.ObjectID, error) {
	coll := db.database.Collection(collection)

	if id.IsZero() {
		res, err := coll.InsertOne(ctx, document)
		if err != nil {
			return primitive.NilObjectID,
				fmt.Errorf(
					"in internal/db/mongodb/profiles.go/saveByID(): error while `InsertOne()` calling: %w",
					err,
				)
		}
		uid, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return primitive.NilObjectID,
				fmt.Errorf("in internal/db/mongodb/profiles.go/saveByID(): unexpected inserted id type %T", res.InsertedID)
		}
		return uid, nil
	}

	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, document, options.Replace().SetUpsert(true))
	if err != nil {
		return primitive.NilObjectID,
			fmt.Errorf(
				"in internal/db/mongodb/profiles.go/saveByID(): error while `ReplaceOne()` calling: %w",
				err,
			)
	}

	return id, nil
}
