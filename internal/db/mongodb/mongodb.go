// Package mongodb provides the MongoDB-backed implementation of the storage
// interface for persisting users, user profiles and reading-list items.
// It owns a single long-lived client shared by all repositories; per-request
// socket checkout and pool return are handled by the driver, with request
// lifetimes bounded by the caller's context.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/readify-app/readify/internal/db/storage"
)

const (
	usersCollection        = "users"
	userProfilesCollection = "userprofiles"
	listItemsCollection    = "listitems"
)

// MongoDB is a MongoDB-backed implementation of the readify storage.
// It handles all persistence operations via a shared mongo client.
type MongoDB struct {
	client            *mongo.Client
	database          *mongo.Database
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables dropping the database before use.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes the connection to the configured MongoDB database, verifies
// it with a ping and ensures the declared secondary indexes exist.
// Optionally accepts initialization options, such as WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	databaseName string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*MongoDB, error) {
	opts := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(opts)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctxWithTimeout, options.Client().ApplyURI(databaseDSN))
	if err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/mongodb/mongodb.go/New(): error while `mongo.Connect()` calling: %w",
				err,
			)
	}

	result := &MongoDB{
		client:            client,
		database:          client.Database(databaseName),
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/mongodb/mongodb.go/New(): error while `result.Ping()` calling: %w",
				err,
			)
	}

	if opts.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/mongodb/mongodb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := result.applyDeclaredIndexes(ctx); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/mongodb/mongodb.go/New(): error while `result.applyDeclaredIndexes()` calling: %w",
				err,
			)
	}

	return result, nil
}

// Ping verifies connectivity with the MongoDB server within the configured timeout.
func (db *MongoDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.client.Ping(ctxWithTimeout, readpref.Primary())
}

// Close disconnects the underlying client and releases its connection pool.
func (db *MongoDB) Close(ctx context.Context) error {
	err := db.client.Disconnect(ctx)
	if err != nil {
		return err
	}

	return nil
}

func (db *MongoDB) resetDB(ctx context.Context) error {
	if err := db.database.Drop(ctx); err != nil {
		return fmt.Errorf(
			"in internal/db/mongodb/mongodb.go/resetDB(): error while `db.database.Drop()` calling: %w",
			err,
		)
	}
	return nil
}

var _ storage.Storage = (*MongoDB)(nil)
