package integration

import (
	"context"
	"sync"
	"testing"

	"imagerecog/db"
	"imagerecog/models"
	"imagerecog/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Integration(t *testing.T) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)
	defer cleanup()

	userRepo := factory.NewUserRepository()
	ctx := context.Background()

	t.Run("CreateAndFind", func(t *testing.T) {
		user := &models.User{
			Username:     "alice",
			PasswordHash: "$2a$04$hash",
			Tokens:       models.StartingTokens,
		}

		require.NoError(t, userRepo.Create(ctx, user))
		require.NotEmpty(t, user.ID)

		found, err := userRepo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.Username, found.Username)
		assert.Equal(t, user.PasswordHash, found.PasswordHash)
		assert.Equal(t, models.StartingTokens, found.Tokens)

		exists, err := userRepo.Exists(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("DuplicateInsertRejected", func(t *testing.T) {
		dup := &models.User{
			Username:     "alice",
			PasswordHash: "$2a$04$other",
			Tokens:       models.StartingTokens,
		}
		err := userRepo.Create(ctx, dup)
		assert.ErrorIs(t, err, db.ErrDuplicateUser)
	})

	t.Run("FindMissing", func(t *testing.T) {
		_, err := userRepo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, db.ErrNotFound)

		exists, err := userRepo.Exists(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("UpdateTokens", func(t *testing.T) {
		require.NoError(t, userRepo.UpdateTokens(ctx, "alice", 10))

		found, err := userRepo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 10, found.Tokens)

		err = userRepo.UpdateTokens(ctx, "nobody", 10)
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("DebitToken", func(t *testing.T) {
		require.NoError(t, userRepo.UpdateTokens(ctx, "alice", 2))

		balance, err := userRepo.DebitToken(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 1, balance)

		balance, err = userRepo.DebitToken(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 0, balance)

		_, err = userRepo.DebitToken(ctx, "alice")
		assert.ErrorIs(t, err, db.ErrInsufficientTokens)

		_, err = userRepo.DebitToken(ctx, "nobody")
		assert.ErrorIs(t, err, db.ErrNotFound)
	})
}

func TestUserRepository_ConcurrentDebits(t *testing.T) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)
	defer cleanup()

	userRepo := factory.NewUserRepository()
	manager := db.NewDBManager()
	defer manager.Stop()
	ctx := context.Background()

	const startingBalance = 10
	const debits = 7

	user := &models.User{
		Username:     "contended",
		PasswordHash: "$2a$04$hash",
		Tokens:       startingBalance,
	}
	require.NoError(t, userRepo.Create(ctx, user))

	var wg sync.WaitGroup
	errs := make(chan error, debits)
	for i := 0; i < debits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.DebitToken(userRepo, ctx, "contended")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Every debit landed exactly once regardless of interleaving.
	found, err := userRepo.FindByUsername(ctx, "contended")
	require.NoError(t, err)
	assert.Equal(t, startingBalance-debits, found.Tokens)
}

func TestUserRepository_DebitsNeverGoNegative(t *testing.T) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)
	defer cleanup()

	userRepo := factory.NewUserRepository()
	manager := db.NewDBManager()
	defer manager.Stop()
	ctx := context.Background()

	user := &models.User{
		Username:     "scarce",
		PasswordHash: "$2a$04$hash",
		Tokens:       3,
	}
	require.NoError(t, userRepo.Create(ctx, user))

	// More concurrent attempts than tokens: the surplus must fail with
	// insufficient tokens, and the balance must bottom out at zero.
	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.DebitToken(userRepo, ctx, "scarce")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, insufficient int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, db.ErrInsufficientTokens)
		insufficient++
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, insufficient)

	found, err := userRepo.FindByUsername(ctx, "scarce")
	require.NoError(t, err)
	assert.Equal(t, 0, found.Tokens)
}
