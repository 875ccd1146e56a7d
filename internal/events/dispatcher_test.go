package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_FailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		calls = append(calls, "other type")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventUserLoggedIn, "u1", nil))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventLoginFailed, "", nil)))
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventUserRegistered, "u1", UserRegisteredPayload{Name: "Ana"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventUserRegistered, e.Type)
	assert.Equal(t, "u1", e.SubjectID)
	assert.False(t, e.Timestamp.IsZero())
}
