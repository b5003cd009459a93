// Package dbmongo holds the MongoDB side of the service: an append-only
// log of engagement events kept next to the MySQL counters.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"personafeed/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoClient struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Engagement *mongo.Collection
}

func NewMongoConnection(c *config.Config) (*MongoClient, error) {
	uri := c.GetMongoURI()
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(c.MongoDB.Database)
	mc := &MongoClient{
		Client:     client,
		Database:   database,
		Engagement: database.Collection(c.MongoDB.Collection),
	}
	if err := mc.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return mc, nil
}

// ensureIndexes supports per-content history reads in time order.
func (mc *MongoClient) ensureIndexes(ctx context.Context) error {
	_, err := mc.Engagement.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create engagement index: %w", err)
	}
	return nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
