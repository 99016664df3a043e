package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectToDB connects to mongoURI and returns the database named in its
// path, falling back to fallbackDB when the URI carries none.
func ConnectToDB(ctx context.Context, mongoURI, fallbackDB string) (*mongo.Client, *mongo.Database, error) {
	uri, err := url.Parse(mongoURI)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing MongoDB URI: %w", err)
	}

	dbName := strings.TrimPrefix(uri.Path, "/")
	if dbName == "" {
		dbName = fallbackDB
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	return client, client.Database(dbName), nil
}

// CreateTTLIndexForCollection expires documents at their expires_at field.
func CreateTTLIndexForCollection(ctx context.Context, db *mongo.Database, collectionName string) error {
	collection := db.Collection(collectionName)

	indexModel := mongo.IndexModel{
		Keys:    bson.M{"expires_at": 1},
		Options: options.Index().SetExpireAfterSeconds(0), // 0 means that MongoDB will calculate the TTL based on the `ExpiresAt` field.
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("create ttl index on %s: %w", collectionName, err)
	}
	return nil
}
