// Package mongostore implements auth.UserStore on MongoDB. Uniqueness of
// username and email is enforced by unique indexes, so concurrent
// registrations race safely inside the database.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskhub.org/internal/auth"
)

const usersCollection = "users"

var _ auth.UserStore = (*Store)(nil)

// Store wraps the users collection.
type Store struct {
	users *mongo.Collection
}

// New constructs a Store over the given database.
func New(db *mongo.Database) *Store {
	return &Store{users: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes the store relies on. It is called
// once at startup and is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (s *Store) Create(ctx context.Context, u *auth.User) error {
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *Store) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) FindByVerificationDigest(ctx context.Context, digest string, now time.Time) (*auth.User, error) {
	if digest == "" {
		return nil, auth.ErrNotFound
	}
	return s.findOne(ctx, bson.M{
		"email_verification_digest": digest,
		"email_verification_expiry": bson.M{"$gt": now},
	})
}

func (s *Store) FindByResetDigest(ctx context.Context, digest string, now time.Time) (*auth.User, error) {
	if digest == "" {
		return nil, auth.ErrNotFound
	}
	return s.findOne(ctx, bson.M{
		"forgot_password_digest": digest,
		"forgot_password_expiry": bson.M{"$gt": now},
	})
}

func (s *Store) Update(ctx context.Context, u *auth.User) error {
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrAlreadyExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) SwapRefreshDigest(ctx context.Context, userID, oldDigest, newDigest string, now time.Time) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "refresh_token_digest": oldDigest},
		bson.M{"$set": bson.M{"refresh_token_digest": newDigest, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var u auth.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
