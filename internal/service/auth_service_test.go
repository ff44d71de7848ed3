package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/chirpy/internal/auth"
	"github.com/spec-kit/chirpy/internal/events"
	"github.com/spec-kit/chirpy/internal/repository/repositorytest"
	apperrors "github.com/spec-kit/chirpy/pkg/errorutil"
)

func newAuthService(t *testing.T) (*AuthService, *repositorytest.Store) {
	t.Helper()
	store := repositorytest.NewStore()
	svc := NewAuthService(testConfig(), AuthDependencies{UserRepo: store.Users()})
	return svc, store
}

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestRegisterUser(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, " walt@breakingbad.com ", "04234")
	require.NoError(t, err)
	assert.Equal(t, "walt@breakingbad.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "04234", user.HashedPassword)
	assert.True(t, auth.NewPasswordHasher(auth.Argon2Params{}).Verify("04234", user.HashedPassword))

	stored, err := store.Users().GetByEmail(ctx, "walt@breakingbad.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	_, err = svc.RegisterUser(ctx, "walt@breakingbad.com", "other")
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = svc.RegisterUser(ctx, "", "pw")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = svc.RegisterUser(ctx, "jesse@breakingbad.com", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	registered, err := svc.RegisterUser(ctx, "saul@bettercall.com", "123456")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "saul@bettercall.com", "123456", nil)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	subject, err := svc.TokenManager().ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.String(), subject)

	_, _, err = svc.Login(ctx, "saul@bettercall.com", "wrong", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	_, _, err = svc.Login(ctx, "nobody@bettercall.com", "123456", nil)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "saul@bettercall.com", "", nil)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestLoginTokenLifetime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := repositorytest.NewStore()
	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo: store.Users(),
		Now:      func() time.Time { return now },
	})
	ctx := context.Background()
	_, err := svc.RegisterUser(ctx, "kim@wexler.com", "pw")
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "kim@wexler.com", "pw", intPtr(0))
	require.NoError(t, err)
	_, err = svc.TokenManager().ValidateJWT(token, testSecret)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailure, "zero lifetime token is issued already expired")

	_, token, err = svc.Login(ctx, "kim@wexler.com", "pw", intPtr(60))
	require.NoError(t, err)
	_, err = svc.TokenManager().ValidateJWT(token, testSecret)
	assert.NoError(t, err)
}

func TestTokenDuration(t *testing.T) {
	svc, _ := newAuthService(t)

	assert.Equal(t, time.Hour, svc.TokenDuration(nil))
	assert.Equal(t, time.Hour, svc.TokenDuration(intPtr(3600)))
	assert.Equal(t, time.Hour, svc.TokenDuration(intPtr(3601)))
	assert.Equal(t, time.Minute, svc.TokenDuration(intPtr(60)))
	assert.Equal(t, time.Duration(0), svc.TokenDuration(intPtr(0)))
	assert.Equal(t, time.Duration(0), svc.TokenDuration(intPtr(-1)))
	assert.Equal(t, time.Duration(0), svc.TokenDuration(intPtr(-9300000000)))
}

func TestLoginNegativeLifetimeIsExpired(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.RegisterUser(ctx, "mike@ehrmantraut.com", "pw")
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "mike@ehrmantraut.com", "pw", intPtr(-9300000000))
	require.NoError(t, err)

	_, err = svc.TokenManager().ValidateJWT(token, testSecret)
	require.Error(t, err)
	assert.True(t, auth.IsExpired(err))
}

func TestUpdateUser(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.EventType
	for _, et := range []events.EventType{events.EventUserCreated, events.EventUserUpdated} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			published = append(published, e.Type)
			return nil
		})
	}

	store := repositorytest.NewStore()
	svc := NewAuthService(testConfig(), AuthDependencies{UserRepo: store.Users(), Dispatcher: dispatcher})
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "mike@ehrmantraut.com", "old")
	require.NoError(t, err)
	_, err = svc.RegisterUser(ctx, "gus@pollos.com", "pw")
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, user.ID, "mike@madrigal.com", "new")
	require.NoError(t, err)
	assert.Equal(t, "mike@madrigal.com", updated.Email)

	_, _, err = svc.Login(ctx, "mike@madrigal.com", "new", nil)
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, "mike@madrigal.com", "old", nil)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.UpdateUser(ctx, user.ID, "gus@pollos.com", "x")
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = svc.UpdateUser(ctx, uuid.New(), "a@b.c", "x")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, err = svc.UpdateUser(ctx, user.ID, "", "x")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	assert.Equal(t, []events.EventType{events.EventUserCreated, events.EventUserCreated, events.EventUserUpdated}, published)
}
