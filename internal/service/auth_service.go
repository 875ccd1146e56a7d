package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/yuhuhero-service/internal/auth"
	"github.com/spec-kit/yuhuhero-service/internal/domain"
	"github.com/spec-kit/yuhuhero-service/internal/events"
	"github.com/spec-kit/yuhuhero-service/internal/repository"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	ErrInvalidLogin    = errors.New("invalid phone or password")
	ErrPhoneRegistered = errors.New("phone already registered")
)

// ValidationError describes rejected registration input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// AuthResult is returned by successful register and login calls.
type AuthResult struct {
	User      domain.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	hasher     *auth.Hasher
	guard      *LoginGuard
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Hasher     *auth.Hasher
	Guard      *LoginGuard
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// RegisterInput carries new account details.
type RegisterInput struct {
	Name     string
	Phone    string
	Password string
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(in.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	if len(in.Password) > auth.MaxSecretLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", auth.MaxSecretLength)}
	}
	return nil
}

// RegisterUser creates a standard account and signs the caller in.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByPhone(ctx, in.Phone); err == nil {
		return nil, ErrPhoneRegistered
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:          in.Name,
		Phone:         in.Phone,
		PasswordHash:  hash,
		Role:          domain.RoleUser,
		QuizCompleted: false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrPhoneTaken) {
			return nil, ErrPhoneRegistered
		}
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewEvent(events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Name:  user.Name,
		Phone: user.Phone,
	}))
	return result, nil
}

// LoginUser authenticates a player by phone and password. Unknown phones and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) LoginUser(ctx context.Context, phone, password string) (*AuthResult, error) {
	phone = strings.TrimSpace(phone)
	if err := s.guard.Check(ctx, phone); err != nil {
		s.publish(ctx, events.NewEvent(events.EventLoginFailed, "", events.LoginFailedPayload{Phone: phone, Reason: "locked"}))
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.loginFailed(ctx, phone, "", "unknown_phone")
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, phone, user.ID, "wrong_password")
		return nil, ErrInvalidLogin
	}

	s.guard.Succeed(ctx, phone)
	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewEvent(events.EventUserLoggedIn, user.ID, nil))
	return result, nil
}

// EnsureAdmin creates an administrator account for phone unless one with
// that phone already exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := in.validate(); err != nil {
		return false, err
	}

	existing, err := s.users.GetByPhone(ctx, in.Phone)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn("bootstrap admin phone belongs to a standard user", zap.String("user_id", existing.ID))
		}
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", admin.ID))
	return true, nil
}

func (s *AuthService) loginFailed(ctx context.Context, phone, subjectID, reason string) {
	failures := s.guard.Fail(ctx, phone)
	s.publish(ctx, events.NewEvent(events.EventLoginFailed, subjectID, events.LoginFailedPayload{
		Phone:    phone,
		Reason:   reason,
		Failures: failures,
	}))
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokens.GenerateToken(user.ID, map[string]string{auth.ClaimPhone: user.Phone}, 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user.Identity(), Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
