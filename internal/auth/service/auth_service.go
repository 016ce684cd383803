package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	commoncrypto "github.com/AlibekovAA/jokes-gateway/internal/common/crypto"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	"github.com/AlibekovAA/jokes-gateway/internal/common/resilience"
	userdomain "github.com/AlibekovAA/jokes-gateway/internal/user/domain"
	userrepo "github.com/AlibekovAA/jokes-gateway/internal/user/repository"
)

type AccessTokenIssuer interface {
	IssueAccessToken(user userdomain.User) (token string, jti string, err error)
}

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	tokenIssuer AccessTokenIssuer
	validator   CredentialValidator
	cb          *resilience.CircuitBreaker
	log         *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

type AuthServiceDeps struct {
	Repo           userrepo.Repository
	Hasher         commoncrypto.PasswordHasher
	TokenIssuer    AccessTokenIssuer
	CircuitBreaker *resilience.CircuitBreaker
	Log            *logger.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	return &AuthService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		tokenIssuer: deps.TokenIssuer,
		validator:   NewCredentialValidator(),
		cb:          deps.CircuitBreaker,
		log:         deps.Log,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Message string
	Token   string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validator.Validate(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		recordRegistration("invalid")
		return userdomain.User{}, err
	}

	_, found, err := s.findByUsername(ctx, input.Username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_lookup_failed",
		}).Errorf("register failed: lookup error: %v", err)
		recordRegistration("error")
		return userdomain.User{}, storageError(err)
	}
	if found {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_username_exists",
		}).Warn("register failed: already exists")
		recordRegistration("conflict")
		return userdomain.User{}, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		recordRegistration("error")
		return userdomain.User{}, ErrStorage.WithCause(fmt.Errorf("hash password: %w", err))
	}

	var stored userdomain.User
	err = s.call(ctx, func(ctx context.Context) error {
		var insertErr error
		stored, insertErr = s.repo.Insert(ctx, userdomain.User{
			Username:     input.Username,
			PasswordHash: hash,
		})
		return insertErr
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: lost insert race")
			recordRegistration("conflict")
			return userdomain.User{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		recordRegistration("error")
		return userdomain.User{}, storageError(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": stored.Username,
		"user_id":  int64(stored.ID),
		"action":   "register_success",
	}).Info("user registered")
	recordRegistration("success")

	return stored, nil
}

// Login answers ErrInvalidCredentials both for an unknown user and for a
// wrong password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := s.validator.RequirePresent(input.Username, input.Password); err != nil {
		recordLogin("invalid")
		return LoginResult{}, err
	}

	user, found, err := s.findByUsername(ctx, input.Username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_lookup_failed",
		}).Errorf("login failed: lookup error: %v", err)
		recordLogin("error")
		return LoginResult{}, storageError(err)
	}

	if !found {
		s.burnCompare(input.Password)
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_credentials",
		}).Warn("login failed: invalid credentials")
		recordLogin("invalid_credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		fields := logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_credentials",
		}
		if !commoncrypto.IsMismatch(err) {
			fields["action"] = "login_stored_hash_unusable"
			s.log.WithFields(ctx, fields).Errorf("login failed: stored hash unusable: %v", err)
		} else {
			s.log.WithFields(ctx, fields).Warn("login failed: invalid credentials")
		}
		recordLogin("invalid_credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	token, jti, err := s.tokenIssuer.IssueAccessToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_token_failed",
		}).Errorf("login failed: token issue error: %v", err)
		recordLogin("error")
		return LoginResult{}, ErrStorage.WithCause(fmt.Errorf("issue token: %w", err))
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"jti":      jti,
		"action":   "login_success",
	}).Info("user logged in")
	recordLogin("success")

	return LoginResult{
		Message: "welcome, " + user.Username,
		Token:   token,
	}, nil
}

// burnCompare runs one bcrypt comparison against a throwaway hash so an
// unknown username costs as much time as a wrong password.
func (s *AuthService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("jokes-gateway-dummy-password")
		if err != nil {
			s.log.Errorf("failed to prepare dummy hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_ = commoncrypto.Verify(s.hasher, s.dummyHash, password)
	}
}

func (s *AuthService) findByUsername(ctx context.Context, username string) (userdomain.User, bool, error) {
	var (
		user  userdomain.User
		found bool
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var findErr error
		user, found, findErr = s.repo.FindByUsername(ctx, username)
		return findErr
	})
	return user, found, err
}

func (s *AuthService) call(ctx context.Context, fn func(context.Context) error) error {
	if s.cb == nil {
		return fn(ctx)
	}
	return s.cb.Call(ctx, fn)
}
