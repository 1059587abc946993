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

const userCollection = "users"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Phone        string             `bson:"phone,omitempty"`
	Role         string             `bson:"role"`
	Balance      float64            `bson:"balance"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// Create inserts the user. The unique indexes on username and email are the
// authoritative duplicate check; a violation maps to domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Phone:        user.Phone,
		Role:         user.Role,
		Balance:      user.Balance,
		CreatedAt:    user.CreatedAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.UID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.User{
		UID:          mu.ID.Hex(),
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Phone:        mu.Phone,
		Role:         mu.Role,
		Balance:      mu.Balance,
		CreatedAt:    mu.CreatedAt.UTC(),
	}, nil
}
