package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/yuhuhero-service/internal/repository"
)

// ErrTooManyAttempts is returned while a phone number is locked out.
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// LoginGuard throttles repeated failed logins for the same phone number.
// Store failures never block a login.
type LoginGuard struct {
	store       repository.LoginAttemptStore
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginGuard returns a guard; maxAttempts <= 0 or a nil store disables it.
func NewLoginGuard(store repository.LoginAttemptStore, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginGuard{store: store, maxAttempts: maxAttempts, window: window, logger: logger}
}

func (g *LoginGuard) enabled() bool {
	return g != nil && g.store != nil && g.maxAttempts > 0 && g.window > 0
}

// Check returns ErrTooManyAttempts once phone has used up its attempts.
func (g *LoginGuard) Check(ctx context.Context, phone string) error {
	if !g.enabled() {
		return nil
	}
	failures, err := g.store.Failures(ctx, phone)
	if err != nil {
		g.logger.Warn("login attempt store unavailable", zap.Error(err))
		return nil
	}
	if failures >= g.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// Fail records a failed attempt and returns the running count.
func (g *LoginGuard) Fail(ctx context.Context, phone string) int {
	if !g.enabled() {
		return 0
	}
	failures, err := g.store.RecordFailure(ctx, phone, g.window)
	if err != nil {
		g.logger.Warn("record login failure", zap.Error(err))
		return 0
	}
	return failures
}

// Succeed clears the failures for phone.
func (g *LoginGuard) Succeed(ctx context.Context, phone string) {
	if !g.enabled() {
		return
	}
	if err := g.store.Reset(ctx, phone); err != nil {
		g.logger.Warn("reset login failures", zap.Error(err))
	}
}
