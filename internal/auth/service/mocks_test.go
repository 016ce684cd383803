package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/jokes-gateway/internal/auth/service"
	"github.com/AlibekovAA/jokes-gateway/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/jokes-gateway/internal/common/crypto"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	userdomain "github.com/AlibekovAA/jokes-gateway/internal/user/domain"
)

const testJWTSecret = "test-secret-key-must-be-at-least-32-bytes-long"

type mockUserRepo struct {
	insertFunc         func(ctx context.Context, user userdomain.User) (userdomain.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, bool, error)
}

func (m *mockUserRepo) Insert(ctx context.Context, user userdomain.User) (userdomain.User, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, user)
	}
	user.ID = 1
	return user, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, bool, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, false, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed_"+password {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "jti-123", nil
}

var _ commoncrypto.PasswordHasher = (*mockHasher)(nil)

func newTestLogger() *logger.Logger {
	log, _ := logger.NewWithWriter(&bytes.Buffer{}, "", "test", "critical")
	return log
}

func setupAuthService(t *testing.T) (*service.AuthService, *mockUserRepo, *mockHasher, *service.TokenIssuer, *clock.MockClock) {
	t.Helper()

	repo := &mockUserRepo{}
	hasher := &mockHasher{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := service.NewTokenIssuer(testJWTSecret, &mockIDGenerator{}, 15*time.Minute, mockClock)

	svc := service.NewAuthService(service.AuthServiceDeps{
		Repo:        repo,
		Hasher:      hasher,
		TokenIssuer: issuer,
		Log:         newTestLogger(),
	})

	return svc, repo, hasher, issuer, mockClock
}
