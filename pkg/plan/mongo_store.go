package plan

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const plansCollection = "plans"

// mongoStore persists plans as documents in a MongoDB collection.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a Store backed by the "plans" collection of the
// given database.
func NewMongoStore(db *mongo.Database) Store {
	if db == nil {
		panic("plan: mongo database is required")
	}
	return &mongoStore{coll: db.Collection(plansCollection)}
}

func (s *mongoStore) Create(ctx context.Context, p *Plan) error {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePlan
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// Update writes the patchable fields only while the stored version still
// matches. The recommended flag is deliberately absent from the $set: it is
// owned by SetRecommended, and a stale update must not resurrect it.
func (s *mongoStore) Update(ctx context.Context, p *Plan, expectedVersion int64) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": p.ID, "version": expectedVersion},
		bson.M{"$set": bson.M{
			"name":        p.Name,
			"description": p.Description,
			"type":        p.Type,
			"price":       p.Price,
			"cycles":      p.Cycles,
			"trial":       p.Trial,
			"features":    p.Features,
			"active":      p.Active,
			"public":      p.Public,
			"popular":     p.Popular,
			"version":     p.Version,
			"updated_at":  p.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing plan from a lost version race.
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": p.ID})
		if err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		if n == 0 {
			return ErrPlanNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *mongoStore) Get(ctx context.Context, id string) (*Plan, error) {
	var p Plan
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

func (s *mongoStore) GetByName(ctx context.Context, name string) (*Plan, error) {
	var p Plan
	if err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan by name: %w", err)
	}
	return &p, nil
}

func (s *mongoStore) List(ctx context.Context) ([]Plan, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	var plans []Plan
	if err := cur.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	return plans, nil
}

// SetRecommended clears the flag everywhere else, then sets it on the target.
// The Catalog serializes callers, so the two writes cannot interleave with a
// competing SetRecommended; a crash between them leaves zero recommended
// plans rather than two, which keeps the at-most-one invariant intact.
func (s *mongoStore) SetRecommended(ctx context.Context, id string) error {
	if _, err := s.coll.UpdateMany(ctx,
		bson.M{"recommended": true, "_id": bson.M{"$ne": id}},
		bson.M{"$set": bson.M{"recommended": false}},
	); err != nil {
		return fmt.Errorf("clear recommended plans: %w", err)
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"recommended": true}},
	)
	if err != nil {
		return fmt.Errorf("set recommended plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPlanNotFound
	}
	return nil
}
