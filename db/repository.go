package db

import (
	"context"
	"database/sql"
	"errors"

	"imagerecog/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for user account operations. Uniqueness
// and the balance invariant live here: Create fails on a duplicate username via
// the store's unique index, and DebitToken is an atomic conditional decrement
// that never drives the balance below zero.
type UserRepository interface {
	Repository
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateTokens(ctx context.Context, username string, tokens int) error
	DebitToken(ctx context.Context, username string) (int, error)
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	SQLiteDB    *sql.DB
	MongoClient *mongo.Client
	DBName      string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, mongoClient *mongo.Client, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB:    sqliteDB,
		MongoClient: mongoClient,
		DBName:      dbName,
	}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteUserRepository(f.SQLiteDB)
	}
	return NewMongoUserRepository(f.MongoClient, f.DBName, "users")
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
