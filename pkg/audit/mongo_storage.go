package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const eventsCollection = "audit_events"

// mongoStorage persists audit events in a MongoDB collection.
type mongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage returns a Storage backed by the "audit_events" collection
// of the given database.
func NewMongoStorage(db *mongo.Database) Storage {
	if db == nil {
		panic("audit: mongo database is required")
	}
	return &mongoStorage{coll: db.Collection(eventsCollection)}
}

func (s *mongoStorage) Store(ctx context.Context, event Event) error {
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageNotAvailable, err)
	}
	return nil
}

func (s *mongoStorage) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	filter := bson.M{}
	if criteria.Action != "" {
		filter["action"] = criteria.Action
	}
	if criteria.Actor != "" {
		filter["actor"] = criteria.Actor
	}
	if criteria.SubscriptionID != "" {
		filter["subscription_id"] = criteria.SubscriptionID
	}

	created := bson.M{}
	if !criteria.From.IsZero() {
		created["$gte"] = criteria.From
	}
	if !criteria.To.IsZero() {
		created["$lte"] = criteria.To
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if criteria.Limit > 0 {
		opts.SetLimit(int64(criteria.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageNotAvailable, err)
	}

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}
	return events, nil
}
