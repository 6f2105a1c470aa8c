// Package storage declares the interface every readify storage backend
// implements. Handlers and services depend on this interface, never on a
// concrete backend, so the core stays testable with a substitute store.
package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/readify-app/readify/internal/models"
)

// ListItemCursor is a lazy sequence of list items. Items are decoded one at
// a time; callers must Close the cursor on every exit path.
type ListItemCursor interface {
	// Next advances to the next item and reports whether one is available.
	Next(ctx context.Context) bool

	// Item returns the item the cursor currently points at.
	Item() *models.ListItem

	// Err returns the first error encountered while iterating.
	Err() error

	Close(ctx context.Context) error
}

// UserStorage loads and saves identity records.
type UserStorage interface {
	// FindUserByUsername looks a user up by exact lowercase username match.
	// A miss is reported as found == false, not as an error.
	FindUserByUsername(ctx context.Context, username string) (*models.User, bool, error)

	// SaveUser inserts a new user document, writes the store-assigned id
	// back onto usr and returns it. Users are never upserted.
	SaveUser(ctx context.Context, usr *models.User) (primitive.ObjectID, error)
}

// ProfileStorage loads and saves the one-to-one user profile extension.
type ProfileStorage interface {
	// FindUserProfile resolves a profile by owner username or owner id.
	// A missing profile is a normal outcome, reported as found == false.
	FindUserProfile(ctx context.Context, query models.ProfileQuery) (*models.UserProfile, bool, error)

	// SaveUserProfile upserts a profile by id: inserts when the id is
	// unset, otherwise replaces the existing document.
	SaveUserProfile(ctx context.Context, profile *models.UserProfile) (primitive.ObjectID, error)
}

// ListItemStorage loads, saves and flag-patches saved links.
type ListItemStorage interface {
	// FindListItems returns a lazy cursor over the items matching query.
	FindListItems(ctx context.Context, query models.ListItemQuery) (ListItemCursor, error)

	// SaveListItem upserts an item by id and writes the id back onto item.
	SaveListItem(ctx context.Context, item *models.ListItem) (primitive.ObjectID, error)

	// UpdateListItemFlag sets exactly one soft-state flag on the item
	// matched by both itemID and ownerID, leaving every other field
	// untouched. It reports whether a document was matched; a patch with
	// no flags set is a no-op and reports false.
	UpdateListItemFlag(
		ctx context.Context,
		ownerID primitive.ObjectID,
		itemID string,
		patch models.FlagPatch,
	) (bool, error)
}

// Storage is the full backend contract.
type Storage interface {
	UserStorage
	ProfileStorage
	ListItemStorage

	Ping(ctx context.Context) error

	Close(ctx context.Context) error
}
