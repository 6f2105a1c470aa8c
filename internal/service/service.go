// Package service implements the in-process flows request handlers call:
// account registration, reading-list queries and item flag changes. It
// depends only on the storage interfaces it consumes.
package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/readify-app/readify/internal/db/storage"
	"github.com/readify-app/readify/internal/models"
)

type accountKeeper interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, bool, error)

	SaveUser(ctx context.Context, usr *models.User) (primitive.ObjectID, error)
}

type profileKeeper interface {
	FindUserProfile(ctx context.Context, query models.ProfileQuery) (*models.UserProfile, bool, error)

	SaveUserProfile(ctx context.Context, profile *models.UserProfile) (primitive.ObjectID, error)
}

type itemKeeper interface {
	FindListItems(ctx context.Context, query models.ListItemQuery) (storage.ListItemCursor, error)

	SaveListItem(ctx context.Context, item *models.ListItem) (primitive.ObjectID, error)

	UpdateListItemFlag(
		ctx context.Context,
		ownerID primitive.ObjectID,
		itemID string,
		patch models.FlagPatch,
	) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type store interface {
	accountKeeper
	profileKeeper
	itemKeeper
	pinger
}

// ErrUsernameTaken is returned when registering a username that already exists.
var ErrUsernameTaken = errors.New("username already taken")

// Service exposes the application flows over a storage backend.
type Service struct {
	db store
}

// New returns a Service backed by the given storage.
func New(db store) *Service {
	return &Service{
		db: db,
	}
}

// RegisterAccount creates a user and its profile. The username is lowercased
// before the uniqueness check, so two spellings of the same name cannot
// register twice.
func (s *Service) RegisterAccount(ctx context.Context, username string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	if username == "" {
		return nil, models.ErrUsernameRequired
	}

	_, found, err := s.db.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrUsernameTaken
	}

	usr := &models.User{Username: username}
	if _, err := s.db.SaveUser(ctx, usr); err != nil {
		return nil, err
	}

	// The profile is created right after the user. There is no rollback
	// when this second save fails; the next profile save repairs the pair.
	profile := &models.UserProfile{
		OwnerID:       usr.ID,
		OwnerUsername: usr.Username,
	}
	if _, err := s.db.SaveUserProfile(ctx, profile); err != nil {
		return nil, err
	}

	return usr, nil
}

// GetProfile loads the profile for an owner key; found == false means the
// owner has no profile yet.
func (s *Service) GetProfile(ctx context.Context, query models.ProfileQuery) (*models.UserProfile, bool, error) {
	return s.db.FindUserProfile(ctx, query)
}

// SaveItem stamps the item's timestamps and upserts it.
func (s *Service) SaveItem(ctx context.Context, item *models.ListItem) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	return s.db.SaveListItem(ctx, item)
}

// ListItems materializes the items matching query for a handler to render.
func (s *Service) ListItems(ctx context.Context, query models.ListItemQuery) ([]models.ListItem, error) {
	cursor, err := s.db.FindListItems(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var items []models.ListItem
	for cursor.Next(ctx) {
		items = append(items, *cursor.Item())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// SetItemFlag flips a single soft-state flag on the caller's own item.
// It reports whether the item was found under the given owner.
func (s *Service) SetItemFlag(
	ctx context.Context,
	ownerID primitive.ObjectID,
	itemID string,
	patch models.FlagPatch,
) (bool, error) {
	return s.db.UpdateListItemFlag(ctx, ownerID, itemID, patch)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
