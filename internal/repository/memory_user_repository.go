package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
)

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byPhone map[string]string
	now     func() time.Time
}

// NewMemoryUserRepository returns an empty store with the same semantics as
// the Postgres implementation.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byPhone: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byPhone[user.Phone]; exists {
		return ErrPhoneTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byPhone[user.Phone] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPhone[phone]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.RLock()
	users := make([]domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, user)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	if offset >= len(users) {
		return []domain.User{}, nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (r *MemoryUserRepository) UpdateQuizStatus(_ context.Context, id string, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.QuizCompleted = completed
	user.UpdatedAt = r.now().UTC()
	r.byID[id] = user
	return nil
}

// Delete removes a user.
func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	delete(r.byPhone, user.Phone)
	return nil
}
