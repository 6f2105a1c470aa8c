// Package models defines the entity types persisted by the readify storage
// layer and the criteria structures repositories accept when loading them.
package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUsernameRequired is returned when a user lookup is attempted without a username.
var ErrUsernameRequired = errors.New("<username> field required")

// ErrOwnerKeyRequired is returned when neither owner id nor owner username was
// supplied to a lookup that needs one of them.
var ErrOwnerKeyRequired = errors.New("<owner_id> or <owner_username> field required")

// ErrBadItemID is returned when an item id string is not a valid object id.
var ErrBadItemID = errors.New("malformed item id")

// User is an identity record. Username is unique and is always stored and
// compared in lowercase; credential fields live with the authentication
// collaborator, not here.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
}

// UserProfile is the one-to-one extension of a User. OwnerUsername is a
// denormalized lowercase copy of the owner's username so profiles can be
// found by either key without a join.
type UserProfile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OwnerUsername string             `bson:"owner_username" json:"owner_username"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Location      string             `bson:"location,omitempty" json:"location,omitempty"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
}

// ListItem is a saved link owned by exactly one user. The three boolean
// flags are independent soft state; "deleted" never removes the document.
type ListItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OwnerUsername string             `bson:"owner_username" json:"owner_username"`
	URL           string             `bson:"url" json:"url" validate:"required,url"`
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Archived      bool               `bson:"archived" json:"archived"`
	Deleted       bool               `bson:"deleted" json:"deleted"`
	Liked         bool               `bson:"liked" json:"liked"`
	CreatedAt     time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ProfileQuery selects a UserProfile by one of its owner keys.
// OwnerUsername takes precedence when both are set.
type ProfileQuery struct {
	OwnerUsername string
	OwnerID       primitive.ObjectID
}

// FlagFilter is a tri-state filter value for the boolean item flags.
// The zero value means "use the field's documented default", which for
// Archived and Deleted is to match only false (normal browsing hides
// archived and deleted items) and for Liked is to not filter at all.
type FlagFilter int

const (
	// FlagDefault applies the field's default filtering behaviour.
	FlagDefault FlagFilter = iota

	// FlagTrue matches only items with the flag set.
	FlagTrue

	// FlagFalse matches only items with the flag unset.
	FlagFalse

	// FlagAny disables filtering on the flag entirely.
	FlagAny
)

// Resolve collapses the tri-state into a concrete filter decision given the
// field's default. It returns the boolean to match and whether to filter
// at all.
func (f FlagFilter) Resolve(dflt FlagFilter) (value, filter bool) {
	if f == FlagDefault {
		f = dflt
	}
	switch f {
	case FlagTrue:
		return true, true
	case FlagFalse:
		return false, true
	default:
		return false, false
	}
}

// ListItemQuery enumerates every filter FindListItems recognizes.
// Exactly one of OwnerUsername / OwnerID is required; ItemID is an optional
// extra filter usable only alongside OwnerID.
type ListItemQuery struct {
	ItemID        string
	OwnerID       primitive.ObjectID
	OwnerUsername string

	Archived FlagFilter
	Deleted  FlagFilter
	Liked    FlagFilter

	// Tags, when non-empty, requires every listed tag to be present on a
	// matching item (conjunctive match).
	Tags []string

	// UpdatedAfter, when non-zero, restricts results to items whose
	// updated_at is greater than or equal to it (incremental sync).
	UpdatedAfter time.Time
}

// FlagPatch carries at most one flag change for UpdateListItemFlag.
// When several fields are set, only the first one in the order
// Archived, Liked, Deleted takes effect.
type FlagPatch struct {
	Archived *bool
	Liked    *bool
	Deleted  *bool
}

// Field returns the storage field name and value of the single flag this
// patch applies, honouring the fixed precedence order. The boolean result
// reports whether any flag was supplied.
func (p FlagPatch) Field() (name string, value bool, ok bool) {
	switch {
	case p.Archived != nil:
		return "archived", *p.Archived, true
	case p.Liked != nil:
		return "liked", *p.Liked, true
	case p.Deleted != nil:
		return "deleted", *p.Deleted, true
	default:
		return "", false, false
	}
}

// Storage backend kinds selectable through configuration.
const (
	StorageTypeUnknown = iota
	StorageTypeMongo
	StorageTypeFile
	StorageTypeMemory
)

// NormalizeUsername lowercases a username for storage and comparison.
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}

// Bool returns a pointer to b, for building FlagPatch literals.
func Bool(b bool) *bool {
	return &b
}
