package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/portal-service/internal/domain"
)

// GetProfile reads the profile document at uid. An absent document is a
// legal state, not an error: (nil, nil).
func (s *Store) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.DB.Collection("profiles").FindOne(ctx, bson.M{"_id": uid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile writes the denormalized profile at uid. created_at is
// assigned on first insert only.
func (s *Store) UpsertProfile(ctx context.Context, uid, name, email string) error {
	_, err := s.DB.Collection("profiles").UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{
			"$set":         bson.M{"name": name, "email": email},
			"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
