package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/service"
)

var secret = []byte("test-secret-test-secret")

func adminRepoWith(t *testing.T, username, password string) *mockAdminRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &mockAdminRepo{getByUsername: func(_ context.Context, u string) (domain.AdminUser, error) {
		if u != username {
			return domain.AdminUser{}, domain.ErrNotFound
		}
		return domain.AdminUser{ID: uuid.New(), Username: u, PasswordHash: string(hash)}, nil
	}}
}

func TestAdminService_LoginAndSession(t *testing.T) {
	svc := service.NewAdminService(adminRepoWith(t, "owner", "correct horse"), secret, time.Hour, fixedNow, discard)

	token, sess, err := svc.Login(context.Background(), "owner", "correct horse")
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "owner", sess.Username)
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))

	got, err := svc.Session(token)
	require.NoError(t, err)
	assert.True(t, got.LoggedIn)
	assert.Equal(t, "owner", got.Username)
}

func TestAdminService_Login_badCredentials(t *testing.T) {
	svc := service.NewAdminService(adminRepoWith(t, "owner", "correct horse"), secret, time.Hour, fixedNow, discard)

	for _, tc := range []struct{ user, pass string }{
		{"owner", "wrong"},
		{"stranger", "correct horse"},
	} {
		_, sess, err := svc.Login(context.Background(), tc.user, tc.pass)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.False(t, sess.LoggedIn)
		key, _ := messageKey(t, err)
		assert.Equal(t, service.MsgInvalidCredentials, key)
	}
}

func TestAdminService_Login_repoError(t *testing.T) {
	boom := errors.New("db down")
	repo := &mockAdminRepo{getByUsername: func(context.Context, string) (domain.AdminUser, error) {
		return domain.AdminUser{}, boom
	}}
	svc := service.NewAdminService(repo, secret, time.Hour, fixedNow, discard)

	_, _, err := svc.Login(context.Background(), "owner", "x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAdminService_Session_rejects(t *testing.T) {
	svc := service.NewAdminService(adminRepoWith(t, "owner", "correct horse"), secret, time.Hour, fixedNow, discard)
	token, _, err := svc.Login(context.Background(), "owner", "correct horse")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Session("not.a.jwt")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("other secret", func(t *testing.T) {
		other := service.NewAdminService(&mockAdminRepo{}, []byte("another-secret"), time.Hour, fixedNow, discard)
		_, err := other.Session(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := pricing.ClockFunc(func() time.Time { return now.Add(2 * time.Hour) })
		expired := service.NewAdminService(&mockAdminRepo{}, secret, time.Hour, later, discard)
		_, err := expired.Session(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAdminService_CreateAdmin(t *testing.T) {
	var stored domain.AdminUser
	repo := &mockAdminRepo{create: func(_ context.Context, u domain.AdminUser) (domain.AdminUser, error) {
		stored = u
		return u, nil
	}}
	svc := service.NewAdminService(repo, secret, time.Hour, fixedNow, discard)

	_, err := svc.CreateAdmin(context.Background(), " owner ", "long enough password")
	require.NoError(t, err)
	assert.Equal(t, "owner", stored.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long enough password")))

	_, err = svc.CreateAdmin(context.Background(), "owner", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateAdmin(context.Background(), "  ", "long enough password")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
