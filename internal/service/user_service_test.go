package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
	"github.com/spec-kit/yuhuhero-service/internal/events"
	"github.com/spec-kit/yuhuhero-service/internal/repository"
)

func TestUserService_UpdateQuizStatus(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	user := &domain.User{Name: "Ana", Phone: "1", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))

	dispatcher := events.NewInMemoryDispatcher()
	recorded := &recordedEvents{}
	dispatcher.Subscribe(events.EventQuizStatusChanged, recorded.handle)

	svc := NewUserService(users, dispatcher, nil)
	updated, err := svc.UpdateQuizStatus(ctx, user.Identity(), true)
	require.NoError(t, err)
	assert.True(t, updated.QuizCompleted)
	assert.Equal(t, []events.EventType{events.EventQuizStatusChanged}, recorded.types())

	_, err = svc.UpdateQuizStatus(ctx, domain.Identity{ID: "missing"}, true)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserService_ListUsersStripsCredentials(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	for i := 0; i < 3; i++ {
		require.NoError(t, users.Create(ctx, &domain.User{
			Name:         fmt.Sprintf("user%d", i),
			Phone:        fmt.Sprintf("%d", i),
			PasswordHash: "secret-hash",
		}))
	}

	svc := NewUserService(users, nil, nil)

	list, err := svc.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	for _, identity := range list {
		assert.NotContains(t, fmt.Sprintf("%+v", identity), "secret-hash")
	}

	page, err := svc.ListUsers(ctx, 2, -5)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
