package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/jokes-gateway/internal/auth/service"
	commonerrors "github.com/AlibekovAA/jokes-gateway/internal/common/errors"
	"github.com/AlibekovAA/jokes-gateway/internal/common/resilience"
	userdomain "github.com/AlibekovAA/jokes-gateway/internal/user/domain"
	userrepo "github.com/AlibekovAA/jokes-gateway/internal/user/repository"
)

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, _, issuer, mockClock := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		if username != "foo" {
			t.Errorf("expected username foo, got %s", username)
		}
		return userdomain.User{
			ID:           42,
			Username:     "foo",
			PasswordHash: "hashed_bar",
			CreatedAt:    mockClock.Now(),
		}, true, nil
	}

	result, err := svc.Login(context.Background(), service.LoginInput{Username: "foo", Password: "bar"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Message != "welcome, foo" {
		t.Errorf("expected welcome message, got %q", result.Message)
	}
	if result.Token == "" {
		t.Fatal("expected token to be set")
	}

	claims, err := issuer.Verify(result.Token)
	if err != nil {
		t.Fatalf("expected issued token to verify, got %v", err)
	}
	if claims.UserID != 42 || claims.Username != "foo" {
		t.Errorf("expected claims for user 42/foo, got %+v", claims)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "ghost", Password: "bar"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo, _, _, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		return userdomain.User{ID: 1, Username: "foo", PasswordHash: "hashed_bar"}, true, nil
	}

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "foo", Password: "baz"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MalformedStoredHash(t *testing.T) {
	svc, repo, hasher, _, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		return userdomain.User{ID: 1, Username: "foo", PasswordHash: "not-a-hash"}, true, nil
	}
	hasher.compareFunc = func(hash string, password string) error {
		return errors.New("crypto/bcrypt: hashedSecret too short")
	}

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "foo", Password: "bar"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, repo, _, _, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		t.Error("lookup must not happen without credentials")
		return userdomain.User{}, false, nil
	}

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "foo"})
	if !errors.Is(err, service.ErrCredentialsRequired) {
		t.Fatalf("expected ErrCredentialsRequired, got %v", err)
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	svc, repo, _, _, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		return userdomain.User{}, false, errors.New("timeout")
	}

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "foo", Password: "bar"})
	if !errors.Is(err, service.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestAuthService_Login_TokenIssueError(t *testing.T) {
	repo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, bool, error) {
			return userdomain.User{ID: 1, Username: "foo", PasswordHash: "hashed_bar"}, true, nil
		},
	}
	svc := service.NewAuthService(service.AuthServiceDeps{
		Repo:        repo,
		Hasher:      &mockHasher{},
		TokenIssuer: failingIssuer{},
		Log:         newTestLogger(),
	})

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "foo", Password: "bar"})
	if !errors.Is(err, service.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

type failingIssuer struct{}

func (failingIssuer) IssueAccessToken(userdomain.User) (string, string, error) {
	return "", "", errors.New("rng exhausted")
}

func TestAuthService_Login_UnknownUserStillComparesHash(t *testing.T) {
	svc, _, hasher, _, _ := setupAuthService(t)

	hashes, compares := 0, 0
	hasher.hashFunc = func(password string) (string, error) {
		hashes++
		return "hashed_" + password, nil
	}
	hasher.compareFunc = func(hash string, password string) error {
		compares++
		return bcrypt.ErrMismatchedHashAndPassword
	}

	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), service.LoginInput{Username: "ghost", Password: "bar"})
		if !errors.Is(err, service.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	if compares != 3 {
		t.Errorf("expected one comparison per unknown-user login, got %d", compares)
	}
	if hashes != 1 {
		t.Errorf("expected the throwaway hash to be built once, got %d", hashes)
	}
}

func TestAuthService_Login_ControlCharactersRejected(t *testing.T) {
	svc, repo, _, _, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		t.Error("lookup must not happen for a username the store cannot hold")
		return userdomain.User{}, false, nil
	}

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "fo\x00o", Password: "bar"})
	if !errors.Is(err, service.ErrValidationUsernameChars) {
		t.Fatalf("expected ErrValidationUsernameChars, got %v", err)
	}
	de, _ := commonerrors.AsDomainError(err)
	if de.HTTPStatus() != 400 {
		t.Errorf("expected 400, got %d", de.HTTPStatus())
	}
}

func TestAuthService_CanceledRequestsDoNotOpenCircuit(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  5,
		Timeout:    time.Second,
		ResetAfter: time.Minute,
		Ignore:     []error{userrepo.ErrUsernameAlreadyExists},
	})
	svc := service.NewAuthService(service.AuthServiceDeps{
		Repo:           userrepo.NewMemoryRepository(),
		Hasher:         &mockHasher{},
		TokenIssuer:    &mockIssuer{},
		CircuitBreaker: cb,
		Log:            newTestLogger(),
	})

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 10; i++ {
		if _, err := svc.Login(canceled, service.LoginInput{Username: "foo", Password: "bar"}); err == nil {
			t.Fatal("expected canceled login to fail")
		}
	}

	if _, err := svc.Register(context.Background(), service.RegisterInput{Username: "healthy", Password: "pw"}); err != nil {
		t.Fatalf("expected register to succeed after client cancellations, got %v", err)
	}
}

type mockIssuer struct{}

func (mockIssuer) IssueAccessToken(userdomain.User) (string, string, error) {
	return "token", "jti", nil
}

func TestAuthService_Login_UnusableStoredHash(t *testing.T) {
	svc, repo, hasher, _, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, bool, error) {
		return userdomain.User{ID: 7, Username: username, PasswordHash: "not-a-bcrypt-hash"}, true, nil
	}
	hasher.compareFunc = func(hash string, password string) error {
		return bcrypt.ErrHashTooShort
	}

	_, err := svc.Login(context.Background(), service.LoginInput{Username: "foo", Password: "bar"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
