package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

const profileCollection = "gin_profiles"

// MongoProfileRepository caches Gin API user profiles, one document per
// login identifier.
type MongoProfileRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection(profileCollection), now: time.Now}
}

type mongoProfile struct {
	Identifier string             `bson:"_id"`
	Profile    domain.UserProfile `bson:"profile"`
	UpdatedAt  int64              `bson:"updated_at"`
}

func (r *MongoProfileRepository) Find(ctx context.Context, identifier string) (*domain.UserProfile, error) {
	var doc mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"_id": identifier}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &doc.Profile, nil
}

// Save upserts the profile for identifier.
func (r *MongoProfileRepository) Save(ctx context.Context, identifier string, profile *domain.UserProfile) error {
	if profile == nil {
		return nil
	}
	update := bson.M{"$set": bson.M{
		"profile":    profile,
		"updated_at": r.now().UTC().Unix(),
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": identifier}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepository) Delete(ctx context.Context, identifier string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": identifier}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
