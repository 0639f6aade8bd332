package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/go-task-manager/internal/storage/memory"
)

func newTestAuthService() AuthService {
	return NewAuthService(
		zerolog.Nop(),
		memory.New(),
		"go-task-manager-test",
		[]byte("test-signing-key"),
		time.Hour,
	)
}

func TestSignupThenLogin(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	signedUp, err := auth.Signup(ctx, SignupParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signedUp.UserID)
	require.NotEmpty(t, signedUp.Token)

	loggedIn, err := auth.Login(ctx, LoginParams{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, signedUp.UserID, loggedIn.UserID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	_, err := auth.Signup(ctx, SignupParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	_, err = auth.Signup(ctx, SignupParams{
		Name:     "Impostor",
		Email:    "alice@example.com",
		Password: "password2",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	_, err := auth.Signup(ctx, SignupParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	_, wrongPassword := auth.Login(ctx, LoginParams{
		Email:    "alice@example.com",
		Password: "not it",
	})
	_, unknownEmail := auth.Login(ctx, LoginParams{
		Email:    "nobody@example.com",
		Password: "password1",
	})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// Identical signal for both failure modes.
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestPasswordIsStoredHashed(t *testing.T) {
	store := memory.New()
	auth := NewAuthService(zerolog.Nop(), store, "issuer", []byte("key"), time.Hour)

	_, err := auth.Signup(context.Background(), SignupParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "plain-text-secret",
	})
	require.NoError(t, err)

	user, err := store.UserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotContains(t, user.Password, "plain-text-secret")
	assert.Contains(t, user.Password, "$argon2id$")
}

func TestParseTokenRoundTrip(t *testing.T) {
	auth := newTestAuthService()

	result, err := auth.Signup(context.Background(), SignupParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	userID, err := auth.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.UserID, userID)

	_, err = auth.ParseToken("not.a.token")
	assert.Error(t, err)
}
