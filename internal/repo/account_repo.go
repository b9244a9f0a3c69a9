package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/portal-service/internal/domain"
	"github.com/tazhibayda/portal-service/internal/security"
)

// accountDoc is the provider-side record. The password hash never leaves
// this package.
type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Name         string             `bson:"name"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d accountDoc) account() *domain.Account {
	return &domain.Account{
		UID:       d.ID.Hex(),
		Email:     d.Email,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) accounts() *mongo.Collection { return s.DB.Collection("accounts") }

// FindAccountByEmail resolves an account by email. Returns
// domain.ErrAccountNotFound when no account carries the email.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var d accountDoc
	err := s.accounts().FindOne(ctx, bson.M{"email": email}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.account(), nil
}

// CreateAccount registers a new account. The provider owns both the
// password policy and email uniqueness; violations map to
// domain.ErrWeakPassword / domain.ErrEmailTaken.
func (s *Store) CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error) {
	if len(password) < 8 {
		return nil, domain.ErrWeakPassword
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	d := accountDoc{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	res, err := s.accounts().InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	d.ID = res.InsertedID.(primitive.ObjectID)
	return d.account(), nil
}

// DeleteAccount removes an account by UID. Used as the compensating
// action when the profile write fails after account creation.
func (s *Store) DeleteAccount(ctx context.Context, uid string) error {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return err
	}
	_, err = s.accounts().DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
