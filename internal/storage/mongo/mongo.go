// Package mongo implements storage.Store on MongoDB using the
// users/projects/tasks collection layout with camelCase fields and
// ObjectID references.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adanyl0v/project-tracker/internal/config"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

const (
	usersCollection    = "users"
	projectsCollection = "projects"
	tasksCollection    = "tasks"
)

var errNotConnected = errors.New("mongo: not connected")

type Store struct {
	logger zerolog.Logger
	cfg    config.MongoConfig

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

var _ storage.Store = (*Store)(nil)

func New(logger zerolog.Logger, cfg config.MongoConfig) *Store {
	return &Store{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetConnectTimeout(s.cfg.ConnectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping mongo: %w", err)
	}

	s.client = client
	s.db = client.Database(s.cfg.Database)
	s.logger.Info().
		Str("database", s.cfg.Database).
		Bool("transactions", s.cfg.Transactions).
		Msg("connected to mongo")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Migrate(ctx context.Context) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		projectsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "projectId", Value: 1}}},
			{Keys: bson.D{{Key: "projectId", Value: 1}}},
		},
	}
	for collection, models := range indexes {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
		s.logger.Info().
			Str("collection", collection).
			Strs("indexes", names).
			Msg("ensured mongo indexes")
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	s.logger.Info().Msg("disconnected from mongo")
	return nil
}

func (s *Store) database() (*mongo.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, errNotConnected
	}
	return s.db, nil
}

// withTransaction runs fn inside a multi-document transaction when
// transactions are enabled and directly otherwise.
func (s *Store) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.cfg.Transactions {
		return fn(ctx)
	}

	db, err := s.database()
	if err != nil {
		return err
	}

	session, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// objectID parses a hex id. Malformed ids cannot match any document,
// so they are reported as storage.ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, storage.ErrNotFound
	}
	return oid, nil
}
