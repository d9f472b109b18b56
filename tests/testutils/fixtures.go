package testutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"imagerecog/db"
	"imagerecog/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// CreateTestUser inserts a user directly through the repository with a
// MinCost bcrypt hash so tests stay fast.
func CreateTestUser(t *testing.T, repo db.UserRepository, username, password string, tokens int) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Tokens:       tokens,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// MakeTestPNG encodes a small valid PNG for image-fetch paths.
func MakeTestPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
