package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
	"lms-backend/internal/config"
	"lms-backend/internal/logger"
)

const (
	usersCollection   = "users"
	coursesCollection = "courses"
	connectTimeout    = 10 * time.Second
)

// Store holds the mongo client and the database the repositories write to.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.Database.MongoURI).
		SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Database.MongoDB)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("Mongo connection established", zap.String("database", cfg.Database.MongoDB))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reset_token_hash", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
