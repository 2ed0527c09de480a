package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const subscriptionsCollection = "subscriptions"

// mongoStore persists subscriptions as documents, one per record, with the
// embedded note and history arrays stored inline.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a Store backed by the "subscriptions" collection of
// the given database.
func NewMongoStore(db *mongo.Database) Store {
	if db == nil {
		panic("subscription: mongo database is required")
	}
	return &mongoStore{coll: db.Collection(subscriptionsCollection)}
}

func (s *mongoStore) Create(ctx context.Context, sub *Subscription) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (s *mongoStore) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	var sub Subscription
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

// Update replaces the document only while its stored version still matches.
// The version filter is what turns a lost race into ErrConflict instead of a
// silent overwrite.
func (s *mongoStore) Update(ctx context.Context, sub *Subscription, expectedVersion int64) error {
	res, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": sub.ID, "version": expectedVersion},
		sub,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing record from a lost version race.
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": sub.ID})
		if err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (s *mongoStore) List(ctx context.Context, filter Filter) ([]Subscription, error) {
	cur, err := s.coll.Find(ctx, mongoFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	var subs []Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}

func (s *mongoStore) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}

func mongoFilter(f Filter) bson.M {
	filter := bson.M{}

	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.PlanID != "" {
		filter["plan.plan_id"] = f.PlanID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.AutoRenew != nil {
		filter["auto_renew"] = *f.AutoRenew
	}

	end := bson.M{}
	if f.EndsFrom != nil {
		end["$gte"] = *f.EndsFrom
	}
	if f.EndsTo != nil {
		end["$lte"] = *f.EndsTo
	}
	if len(end) > 0 {
		filter["end_date"] = end
	}

	if f.DueForRenewalAt != nil {
		filter["next_billing_date"] = bson.M{"$lte": *f.DueForRenewalAt}
	}

	created := bson.M{}
	if f.CreatedFrom != nil {
		created["$gte"] = *f.CreatedFrom
	}
	if f.CreatedTo != nil {
		created["$lte"] = *f.CreatedTo
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	cancelled := bson.M{}
	if f.CancelledFrom != nil {
		cancelled["$gte"] = *f.CancelledFrom
	}
	if f.CancelledTo != nil {
		cancelled["$lte"] = *f.CancelledTo
	}
	if len(cancelled) > 0 {
		filter["cancellation.date"] = cancelled
	}

	return filter
}
