package dbmongo

import (
	"context"
	"fmt"
	"time"

	"personafeed/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EngagementEvent is one applied counter increment.
type EngagementEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ContentID int64              `bson:"content_id" json:"content_id"`
	Type      string             `bson:"type" json:"type"`
	Delta     int64              `bson:"delta" json:"delta"`
	At        time.Time          `bson:"at" json:"at"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	UserID    int64              `bson:"user_id,omitempty" json:"user_id,omitempty"`
}

// eventCollection is the subset of *mongo.Collection the log needs.
type eventCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

type EngagementLog struct {
	coll eventCollection
}

func NewEngagementLog(mongoClient *MongoClient) *EngagementLog {
	return &EngagementLog{coll: mongoClient.Engagement}
}

// RecordEngagement appends one event, tagged with the request and user ids
// carried by ctx.
func (l *EngagementLog) RecordEngagement(ctx context.Context, contentID int64, kind string, delta int64, at time.Time) error {
	ev := EngagementEvent{
		ContentID: contentID,
		Type:      kind,
		Delta:     delta,
		At:        at.UTC(),
		RequestID: logger.RequestIDFromContext(ctx),
	}
	if uid, ok := logger.UserIDFromContext(ctx); ok {
		ev.UserID = uid
	}
	if _, err := l.coll.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("insert engagement event: %w", err)
	}
	return nil
}

// History returns the newest events for a content item, at most limit.
func (l *EngagementLog) History(ctx context.Context, contentID int64, limit int64) ([]EngagementEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := l.coll.Find(ctx, bson.M{"content_id": contentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find engagement events: %w", err)
	}
	defer cur.Close(ctx)

	events := make([]EngagementEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode engagement events: %w", err)
	}
	return events, nil
}
