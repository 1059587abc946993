package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srushti128/kodbank/internal/core/domain"
)

const sessionCollection = "sessions"

// SessionRepository implements ports.SessionRepository using MongoDB.
//
// Liveness is decided at query time: FindActive filters on expiry rather
// than relying on expired rows having been deleted, so correctness never
// depends on the background sweep.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionCollection)}
}

type mongoSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	OwnerUID  string             `bson:"uid"`
	Expiry    time.Time          `bson:"expiry"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *SessionRepository) Create(ctx context.Context, tokenValue, ownerUID string, expiry time.Time) (*domain.SessionRecord, error) {
	doc := mongoSession{
		Token:     tokenValue,
		OwnerUID:  ownerUID,
		Expiry:    expiry.UTC(),
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateSession
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &domain.SessionRecord{
		ID:        res.InsertedID.(primitive.ObjectID).Hex(),
		Token:     doc.Token,
		OwnerUID:  doc.OwnerUID,
		Expiry:    doc.Expiry,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// FindActive returns the record only if the token matches exactly and its
// expiry is still in the future at query time.
func (r *SessionRepository) FindActive(ctx context.Context, tokenValue string) (*domain.SessionRecord, error) {
	filter := bson.M{
		"token":  tokenValue,
		"expiry": bson.M{"$gt": time.Now().UTC()},
	}

	var ms mongoSession
	if err := r.coll.FindOne(ctx, filter).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &domain.SessionRecord{
		ID:        ms.ID.Hex(),
		Token:     ms.Token,
		OwnerUID:  ms.OwnerUID,
		Expiry:    ms.Expiry.UTC(),
		CreatedAt: ms.CreatedAt.UTC(),
	}, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, tokenValue string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"token": tokenValue})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteAllByOwner removes every session record owned by ownerUID. This is
// the cascade invoked when an account is deleted.
func (r *SessionRepository) DeleteAllByOwner(ctx context.Context, ownerUID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"uid": ownerUID}); err != nil {
		return fmt.Errorf("delete sessions by owner: %w", err)
	}
	return nil
}

// DeleteExpired removes records whose expiry is at or before the given
// instant and reports how many were deleted.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expiry": bson.M{"$lte": before.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.DeletedCount, nil
}
