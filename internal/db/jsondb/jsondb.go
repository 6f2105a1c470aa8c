// Package jsondb provides a JSON-file-backed implementation of the storage
// interface. The whole dataset lives in memory and is snapshotted to the
// backing file on Close; it exists for development runs and tests where a
// MongoDB server would be overkill, and mirrors the production backend's
// query semantics exactly.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/thoas/go-funk"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/readify-app/readify/internal/db/storage"
	"github.com/readify-app/readify/internal/models"
)

// JSONDB keeps every collection in memory and persists it as a single JSON
// document. Cache is exported so wrappers (see memorystorage) can seed it.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the on-disk and in-memory shape of the dataset: one slice
// per collection, mirroring the store's three independent namespaces.
type CacheStruct struct {
	Users        []models.User
	UserProfiles []models.UserProfile
	ListItems    []models.ListItem
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": [],
	"UserProfiles": [],
	"ListItems": []
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cache)
	if err != nil {
		return err
	}

	return nil
}

// New loads the dataset from fileName, creating an empty one when the file
// does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &db, nil
}

// Ping reports the store as always reachable.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close snapshots the in-memory dataset back to the backing file.
func (db *JSONDB) Close(ctx context.Context) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	err := writeToJSONFile(db.fileName, db.Cache)
	if err != nil {
		return err
	}

	return nil
}

// FindUserByUsername looks a user up by exact lowercase username match.
func (db *JSONDB) FindUserByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	if username == "" {
		return nil, false, models.ErrUsernameRequired
	}

	username = models.NormalizeUsername(username)

	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Username == username {
			found := usr
			return &found, true, nil
		}
	}

	return nil, false, nil
}

// SaveUser always inserts: a fresh id is assigned, written back onto usr and
// returned.
func (db *JSONDB) SaveUser(ctx context.Context, usr *models.User) (primitive.ObjectID, error) {
	usr.Username = models.NormalizeUsername(usr.Username)
	usr.ID = primitive.NewObjectID()

	db.mu.Lock()
	defer db.mu.Unlock()

	db.Cache.Users = append(db.Cache.Users, *usr)

	return usr.ID, nil
}

// FindUserProfile resolves a profile by owner username or owner id, with
// the username taking precedence when both are given.
func (db *JSONDB) FindUserProfile(ctx context.Context, query models.ProfileQuery) (*models.UserProfile, bool, error) {
	var match func(profile *models.UserProfile) bool
	switch {
	case query.OwnerUsername != "":
		ownerUsername := models.NormalizeUsername(query.OwnerUsername)
		match = func(profile *models.UserProfile) bool {
			return profile.OwnerUsername == ownerUsername
		}
	case !query.OwnerID.IsZero():
		match = func(profile *models.UserProfile) bool {
			return profile.OwnerID == query.OwnerID
		}
	default:
		return nil, false, models.ErrOwnerKeyRequired
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	for i := range db.Cache.UserProfiles {
		if match(&db.Cache.UserProfiles[i]) {
			found := db.Cache.UserProfiles[i]
			return &found, true, nil
		}
	}

	return nil, false, nil
}

// SaveUserProfile upserts a profile by id.
func (db *JSONDB) SaveUserProfile(ctx context.Context, profile *models.UserProfile) (primitive.ObjectID, error) {
	profile.OwnerUsername = models.NormalizeUsername(profile.OwnerUsername)

	db.mu.Lock()
	defer db.mu.Unlock()

	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
		db.Cache.UserProfiles = append(db.Cache.UserProfiles, *profile)
		return profile.ID, nil
	}

	for i := range db.Cache.UserProfiles {
		if db.Cache.UserProfiles[i].ID == profile.ID {
			db.Cache.UserProfiles[i] = *profile
			return profile.ID, nil
		}
	}

	db.Cache.UserProfiles = append(db.Cache.UserProfiles, *profile)

	return profile.ID, nil
}

func matchListItem(query *models.ListItemQuery, itemID primitive.ObjectID, item *models.ListItem) bool {
	switch {
	case query.OwnerUsername != "":
		if item.OwnerUsername != models.NormalizeUsername(query.OwnerUsername) {
			return false
		}
	default:
		if item.OwnerID != query.OwnerID {
			return false
		}
		if !itemID.IsZero() && item.ID != itemID {
			return false
		}
	}

	if v, ok := query.Archived.Resolve(models.FlagFalse); ok && item.Archived != v {
		return false
	}
	if v, ok := query.Deleted.Resolve(models.FlagFalse); ok && item.Deleted != v {
		return false
	}
	if v, ok := query.Liked.Resolve(models.FlagAny); ok && item.Liked != v {
		return false
	}

	if len(query.Tags) > 0 && !funk.Subset(query.Tags, item.Tags) {
		return false
	}

	if !query.UpdatedAfter.IsZero() && item.UpdatedAt.Before(query.UpdatedAfter) {
		return false
	}

	return true
}

type sliceCursor struct {
	items []models.ListItem
	pos   int
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	c.pos++
	return c.pos < len(c.items)
}

func (c *sliceCursor) Item() *models.ListItem {
	return &c.items[c.pos]
}

func (c *sliceCursor) Err() error {
	return nil
}

func (c *sliceCursor) Close(ctx context.Context) error {
	return nil
}

// FindListItems returns a cursor over the items matching query. The match
// rules are the same as the production backend's filter document: one owner
// key required, archived/deleted hidden by default, conjunctive tag match,
// and a greater-or-equal bound on updated_at.
func (db *JSONDB) FindListItems(ctx context.Context, query models.ListItemQuery) (storage.ListItemCursor, error) {
	var itemID primitive.ObjectID
	switch {
	case query.OwnerUsername != "":
		// item id is only usable alongside the owner id
	case !query.OwnerID.IsZero():
		if query.ItemID != "" {
			oid, err := primitive.ObjectIDFromHex(query.ItemID)
			if err != nil {
				return nil, models.ErrBadItemID
			}
			itemID = oid
		}
	default:
		return nil, models.ErrOwnerKeyRequired
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	var matched []models.ListItem
	for i := range db.Cache.ListItems {
		if matchListItem(&query, itemID, &db.Cache.ListItems[i]) {
			matched = append(matched, db.Cache.ListItems[i])
		}
	}

	return &sliceCursor{items: matched, pos: -1}, nil
}

// SaveListItem upserts an item by id.
func (db *JSONDB) SaveListItem(ctx context.Context, item *models.ListItem) (primitive.ObjectID, error) {
	item.OwnerUsername = models.NormalizeUsername(item.OwnerUsername)

	db.mu.Lock()
	defer db.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
		db.Cache.ListItems = append(db.Cache.ListItems, *item)
		return item.ID, nil
	}

	for i := range db.Cache.ListItems {
		if db.Cache.ListItems[i].ID == item.ID {
			db.Cache.ListItems[i] = *item
			return item.ID, nil
		}
	}

	db.Cache.ListItems = append(db.Cache.ListItems, *item)

	return item.ID, nil
}

// UpdateListItemFlag sets exactly one soft-state flag on the item matched by
// both itemID and ownerID, leaving every other field (updated_at included)
// untouched.
func (db *JSONDB) UpdateListItemFlag(
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

	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.Cache.ListItems {
		item := &db.Cache.ListItems[i]
		if item.ID != oid || item.OwnerID != ownerID {
			continue
		}

		switch field {
		case "archived":
			item.Archived = value
		case "liked":
			item.Liked = value
		case "deleted":
			item.Deleted = value
		}

		return true, nil
	}

	return false, nil
}
