package service

import (
	"context"
	"testing"
	"time"

	"github.com/clearhaven/claimdesk/internal/config"
	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/pkg/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users          map[string]*domain.User
	failedAttempts map[uuid.UUID]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:          make(map[string]*domain.User),
		failedAttempts: make(map[uuid.UUID]int),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.New()
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (r *fakeUserRepo) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	if success {
		r.failedAttempts[id] = 0
		return nil
	}
	r.failedAttempts[id]++
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return ErrInvalidCredentials
}

const testPassword = "correct-horse-battery"

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *domain.User, *AuditService) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newFakeUserRepo()
	user := &domain.User{
		Email:        "reviewer@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleReviewer,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))

	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters!!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "claimdesk-test",
	})
	auditSvc := NewAuditService(&fakeAuditRepo{}, nil, zap.NewNop())

	return NewAuthService(repo, jwtManager, auditSvc, zap.NewNop()), repo, user, auditSvc
}

func TestLogin(t *testing.T) {
	svc, _, _, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	pair, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	_, err := svc.Login(context.Background(), "reviewer@example.com", "wrong", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, repo.failedAttempts[user.ID], "failed attempt must be recorded")
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	_, err := svc.Login(context.Background(), "nobody@example.com", testPassword, "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	user.IsActive = false
	_, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginLockedAccount(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	until := time.Now().Add(10 * time.Minute)
	user.LockedUntil = &until

	_, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginExpiredLockIsIgnored(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	until := time.Now().Add(-time.Minute)
	user.LockedUntil = &until

	_, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	assert.NoError(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, _, _, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	pair, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	require.NoError(t, err)

	renewed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc, _, _, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	pair, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenDeactivatedUser(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	pair, err := svc.Login(context.Background(), "reviewer@example.com", testPassword, "127.0.0.1")
	require.NoError(t, err)

	user.IsActive = false
	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	err := svc.ChangePassword(context.Background(), user.ID, testPassword, "a-much-longer-new-password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "reviewer@example.com", "a-much-longer-new-password", "127.0.0.1")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "a-much-longer-new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordTooShort(t *testing.T) {
	svc, _, user, auditSvc := newAuthService(t)
	defer auditSvc.Shutdown()

	err := svc.ChangePassword(context.Background(), user.ID, testPassword, "short")

	var validErr *ValidationError
	assert.ErrorAs(t, err, &validErr)
}
