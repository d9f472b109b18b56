package account

import (
	"context"
	"errors"
	"fmt"

	"imagerecog/db"
	"imagerecog/internal/config"
	"imagerecog/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists        = errors.New("user already exists")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// AccountService handles registration and credential verification
type AccountService struct {
	repo      db.UserRepository
	dbManager *db.DBManager
	cost      int
}

// NewAccountService creates a new AccountService
func NewAccountService(repo db.UserRepository, cfg *config.Config, dbManager *db.DBManager) *AccountService {
	return &AccountService{
		repo:      repo,
		dbManager: dbManager,
		cost:      cfg.BcryptCost,
	}
}

// Register creates a new account with the starting token grant. The existence
// check is advisory only: the store's unique index is what actually rejects a
// concurrent duplicate, so a duplicate-key error from Create maps to
// ErrUserExists as well.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	exists, err := s.repo.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking user existence: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Tokens:       models.StartingTokens,
	}

	if err := s.dbManager.CreateUser(s.repo, ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateUser) {
			return ErrUserExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// VerifyCredentials checks a username/password pair against the stored bcrypt
// hash. It is the single authentication gate for every endpoint that carries
// credentials.
func (s *AccountService) VerifyCredentials(ctx context.Context, username, password string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrInvalidUsername
		}
		return fmt.Errorf("error finding user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrIncorrectPassword
	}

	return nil
}
