package auth

import (
	"FitTrack/internal/config"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// UserRepository is the credential store backed by the users collection.
type UserRepository struct {
	collection *mongo.Collection
	nowFn      func() time.Time
}

func NewUserRepository(db *config.MongoDBClient) *UserRepository {
	return &UserRepository{collection: db.GetCollection(usersCollection), nowFn: time.Now}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	return config.UniqueIndex(ctx, r.collection, "email")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Create inserts an unverified user. The unique email index turns a racing
// duplicate signup into ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	now := r.nowFn().UTC()
	user := &User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) SetVerified(ctx context.Context, email string) (*User, error) {
	return r.update(ctx, email, bson.M{"is_verified": true})
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, email, hash string) (*User, error) {
	return r.update(ctx, email, bson.M{"password_hash": hash})
}

func (r *UserRepository) update(ctx context.Context, email string, set bson.M) (*User, error) {
	set["updated_at"] = r.nowFn().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}
