package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrNotFound = errors.New("not found")

const (
	messagesCollection = "messages"
	followsCollection  = "follow_requests"
	usersCollection    = "users"
)

type MongoChatRepository struct {
	client   *mongo.Client
	messages *mongo.Collection
	follows  *mongo.Collection
	users    *mongo.Collection
}

func NewMongoChatRepository(ctx context.Context, uri, dbName string) (*MongoChatRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(dbName)
	repo := &MongoChatRepository{
		client:   client,
		messages: db.Collection(messagesCollection),
		follows:  db.Collection(followsCollection),
		users:    db.Collection(usersCollection),
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return repo, nil
}

func (r *MongoChatRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("pair_history_idx"),
		},
		{
			Keys:    bson.D{{Key: "to", Value: 1}, {Key: "from", Value: 1}, {Key: "read", Value: 1}},
			Options: options.Index().SetName("unread_idx"),
		},
	})
	if err != nil {
		return err
	}

	// follow_requests is owned by the follow-request service, but the
	// mutual-follow check depends on this index being present.
	_, err = r.follows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("follow_edge_idx"),
	})
	return err
}

func (r *MongoChatRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoChatRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
