package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo/repotest"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/tokens"
)

func newTestAuthService(t *testing.T) (*AuthService, *events.Memory) {
	t.Helper()
	pub := &events.Memory{}
	return NewAuthService(repotest.InitTestDB(t), pub, 0), pub
}

func register(t *testing.T, svc *AuthService, email, password string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), transport.RegisterRequest{
		Name: "Asha", Email: email, Password: password, City: "Lahore",
	})
	require.NoError(t, err)
	return u
}

func TestAuthService_Register_HashesAndCreatesLoyalty(t *testing.T) {
	t.Parallel()
	svc, pub := newTestAuthService(t)
	ctx := context.Background()

	u := register(t, svc, "  Asha@Example.COM ", "secret1")
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)

	l, err := svc.Repo.GetLoyalty(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierBronze, l.MembershipLevel)
	assert.Zero(t, l.PointsBalance)
	assert.True(t, l.TotalSpent.IsZero())

	assert.Equal(t, []string{events.UserRegistered}, pub.Types())

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name  string
		req   transport.RegisterRequest
		field string
	}{
		{"missing name", transport.RegisterRequest{Email: "a@b.co", Password: "secret1"}, "name"},
		{"missing email", transport.RegisterRequest{Name: "A", Password: "secret1"}, "email"},
		{"malformed email", transport.RegisterRequest{Name: "A", Email: "a@b", Password: "secret1"}, "email"},
		{"missing password", transport.RegisterRequest{Name: "A", Email: "a@b.co"}, "password"},
		{"short password", transport.RegisterRequest{Name: "A", Email: "a@b.co", Password: "12345"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrValidation)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	register(t, svc, "dup@example.com", "secret1")
	_, err := svc.Register(ctx, transport.RegisterRequest{Name: "Other", Email: "DUP@example.com", Password: "secret2"})
	require.ErrorIs(t, err, ErrConflict)

	var n int64
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAuthService_Login_NoLockout(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	register(t, svc, "lock@example.com", "secret1")

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, transport.LoginRequest{Email: "lock@example.com", Password: "wrong-one"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := svc.Login(ctx, transport.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "LOCK@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := register(t, svc, "off@example.com", "secret1")
	require.NoError(t, svc.Repo.DB.Model(u).Update("is_active", false).Error)

	_, err := svc.Login(ctx, transport.LoginRequest{Email: "off@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SessionLifecycle(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := register(t, svc, "sess@example.com", "secret1")

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "sess@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), res.ExpiresAt, time.Minute)

	sess, err := svc.Repo.GetSessionByHash(ctx, tokens.Sha256Hex(res.Token))
	require.NoError(t, err)
	assert.NotEqual(t, res.Token, sess.TokenHash)

	got, err := svc.ResolveCurrentUser(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, svc.Logout(ctx, res.Token))
	require.NoError(t, svc.Logout(ctx, res.Token))
	require.NoError(t, svc.Logout(ctx, ""))

	_, err = svc.ResolveCurrentUser(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_ResolveCurrentUser_Rejects(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := register(t, svc, "exp@example.com", "secret1")

	_, err := svc.ResolveCurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.ResolveCurrentUser(ctx, "unknown")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "exp@example.com", Password: "secret1"})
	require.NoError(t, err)

	svc.Now = func() time.Time { return time.Now().Add(DefaultSessionTTL + time.Hour) }
	_, err = svc.ResolveCurrentUser(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	svc.Now = time.Now
	require.NoError(t, svc.Repo.DB.Model(u).Update("is_active", false).Error)
	_, err = svc.ResolveCurrentUser(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_PruneExpiredSessions(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	register(t, svc, "prune@example.com", "secret1")

	_, err := svc.Login(ctx, transport.LoginRequest{Email: "prune@example.com", Password: "secret1"})
	require.NoError(t, err)

	n, err := svc.PruneExpiredSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.PruneExpiredSessions(ctx, time.Now().Add(DefaultSessionTTL+time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)

	u, err := svc.CreateAdmin(context.Background(), "Owner", "Owner@Store.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "owner@store.com", u.Email)

	_, err = svc.CreateAdmin(context.Background(), "Owner", "owner@store.com", "secret1")
	assert.ErrorIs(t, err, ErrConflict)
}
