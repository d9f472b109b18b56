package ledger

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"imagerecog/db"
	"imagerecog/internal/config"
)

// ErrUnauthorized means the supplied admin secret did not match.
var ErrUnauthorized = errors.New("incorrect admin password")

// LedgerService tracks per-user token balances. Balance checks never mutate;
// the only decrement path is CommitDebit, deferred until after a successful
// classification so users are not charged for failed upstream calls.
type LedgerService struct {
	repo        db.UserRepository
	dbManager   *db.DBManager
	adminSecret []byte
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo db.UserRepository, cfg *config.Config, dbManager *db.DBManager) *LedgerService {
	return &LedgerService{
		repo:        repo,
		dbManager:   dbManager,
		adminSecret: cfg.AdminSecret,
	}
}

// Balance returns the current token balance for a user
func (s *LedgerService) Balance(ctx context.Context, username string) (int, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.Tokens, nil
}

// Authorize reports whether the user may attempt a classification. It reads
// the balance but does not reserve anything: the conditional decrement in
// CommitDebit is the real gate, Authorize just rejects obvious shortages early.
func (s *LedgerService) Authorize(ctx context.Context, username string) (bool, error) {
	balance, err := s.Balance(ctx, username)
	if err != nil {
		return false, err
	}
	return balance > 0, nil
}

// CommitDebit charges one token and returns the new balance. The decrement is
// atomic and conditional on tokens > 0; db.ErrInsufficientTokens signals a
// shortage discovered late, after a concurrent request spent the last token.
func (s *LedgerService) CommitDebit(ctx context.Context, username string) (int, error) {
	balance, err := s.dbManager.DebitToken(s.repo, ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInsufficientTokens) {
			return 0, err
		}
		return 0, fmt.Errorf("error committing debit: %w", err)
	}
	return balance, nil
}

// Refill overwrites the token balance with the given amount. This is an
// absolute set, not an increment, matching the administrative override
// semantics. The amount itself is trusted; callers validate it.
func (s *LedgerService) Refill(ctx context.Context, username string, amount int, adminSecret string) error {
	exists, err := s.repo.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking user existence: %w", err)
	}
	if !exists {
		return db.ErrNotFound
	}

	if subtle.ConstantTimeCompare([]byte(adminSecret), s.adminSecret) != 1 {
		return ErrUnauthorized
	}

	if err := s.dbManager.SetTokens(s.repo, ctx, username, amount); err != nil {
		return fmt.Errorf("error refilling tokens: %w", err)
	}

	return nil
}
