package database

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TransactionsCollection is the collection holding ledger documents.
const TransactionsCollection = "transactions"

// ConnectMongo dials MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureMongoIndexes creates the index backing the per-user, date-ordered
// listing. Creating an existing index is a no-op.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(TransactionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}},
		Options: options.Index().SetName("user_date"),
	})
	if err != nil {
		return fmt.Errorf("create transactions index: %w", err)
	}
	return nil
}
