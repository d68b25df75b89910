package auth

import (
	"FitTrack/internal/config"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const otpsCollection = "otps"

// CodeRepository is the one-time code store. The collection holds at most
// one document per email: issuing replaces, consuming deletes.
type CodeRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	nowFn      func() time.Time
}

func NewCodeRepository(db *config.MongoDBClient, cfg *config.Config) *CodeRepository {
	return &CodeRepository{
		collection: db.GetCollection(otpsCollection),
		ttl:        cfg.OTPTTL,
		nowFn:      time.Now,
	}
}

func (r *CodeRepository) EnsureIndexes(ctx context.Context) error {
	return config.UniqueIndex(ctx, r.collection, "email")
}

// Issue generates a fresh code for email and atomically replaces whatever
// code the email had before, whatever its purpose.
func (r *CodeRepository) Issue(ctx context.Context, email string, purpose Purpose) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	now := r.nowFn().UTC()
	doc := OneTimeCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"email": email}, doc, opts); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Consume deletes the matching unexpired code. A second call with the same
// code finds nothing.
func (r *CodeRepository) Consume(ctx context.Context, email, code string, purpose Purpose) error {
	err := r.collection.FindOneAndDelete(ctx, r.liveFilter(email, code, purpose)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOrExpired
		}
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

// ExchangeForTicket swaps a live password reset code for a reset ticket in
// one write, so the typed code stops being usable the moment the ticket
// exists.
func (r *CodeRepository) ExchangeForTicket(ctx context.Context, email, code, ticketHash string, ttl time.Duration) error {
	now := r.nowFn().UTC()
	ticket := OneTimeCode{
		Email:     email,
		Code:      ticketHash,
		Purpose:   PurposeResetTicket,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	err := r.collection.FindOneAndReplace(ctx, r.liveFilter(email, code, PurposePasswordReset), ticket).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOrExpired
		}
		return fmt.Errorf("exchange reset code: %w", err)
	}
	return nil
}

func (r *CodeRepository) ConsumeTicket(ctx context.Context, email, ticketHash string) error {
	return r.Consume(ctx, email, ticketHash, PurposeResetTicket)
}

// DeleteExpired removes codes nobody consumed.
func (r *CodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": r.nowFn().UTC()}})
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CodeRepository) liveFilter(email, code string, purpose Purpose) bson.M {
	return bson.M{
		"email":      email,
		"code":       code,
		"purpose":    purpose,
		"expires_at": bson.M{"$gt": r.nowFn().UTC()},
	}
}
