package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/jokes-gateway/internal/user/domain"
)

// MemoryRepository keeps users in process memory. The username index gives
// it the same uniqueness guarantee as the users_username_key constraint.
type MemoryRepository struct {
	mu         sync.RWMutex
	nextID     domain.ID
	byUsername map[string]domain.User
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byUsername: make(map[string]domain.User),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return domain.User{}, ErrUsernameAlreadyExists
	}

	r.nextID++
	stored := domain.User{
		ID:           r.nextID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.byUsername[stored.Username] = stored

	return stored, nil
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byUsername[username]
	return user, ok, nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
