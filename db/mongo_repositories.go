package db

import (
	"context"
	"fmt"
	"time"

	"imagerecog/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the UserRepository interface for MongoDB
type MongoUserRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(client *mongo.Client, database, collection string) *MongoUserRepository {
	return &MongoUserRepository{
		client:     client,
		database:   database,
		collection: collection,
	}
}

func (r *MongoUserRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// Close closes the MongoDB connection
func (r *MongoUserRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// EnsureIndexes creates the unique index on username. Registration safety
// depends on it: the caller's existence check alone cannot rule out a
// concurrent insert.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("error creating username index: %w", err)
	}
	return nil
}

// Exists reports whether a user with the given username is registered
func (r *MongoUserRepository) Exists(ctx context.Context, username string) (bool, error) {
	count, err := r.coll().CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("error counting users: %w", err)
	}
	return count != 0, nil
}

// Create inserts a new user
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.ID == "" {
		user.ID = GenerateID()
	}

	_, err := r.coll().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// FindByUsername finds a user by username
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll().FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &user, nil
}

// UpdateTokens overwrites the token balance for a user
func (r *MongoUserRepository) UpdateTokens(ctx context.Context, username string, tokens int) error {
	update := bson.M{"$set": bson.M{
		"tokens":     tokens,
		"updated_at": time.Now(),
	}}

	result, err := r.coll().UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return fmt.Errorf("error updating tokens: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// DebitToken decrements the token balance by one, conditional on the balance
// being positive. The filter and $inc execute as one server-side operation, so
// concurrent debits serialize against the document and the balance can never
// go negative.
func (r *MongoUserRepository) DebitToken(ctx context.Context, username string) (int, error) {
	filter := bson.M{"username": username, "tokens": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"tokens": -1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	after := options.After
	opts := &options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var updated models.User
	err := r.coll().FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			exists, existsErr := r.Exists(ctx, username)
			if existsErr != nil {
				return 0, existsErr
			}
			if !exists {
				return 0, ErrNotFound
			}
			return 0, ErrInsufficientTokens
		}
		return 0, fmt.Errorf("error debiting token: %w", err)
	}

	return updated.Tokens, nil
}
