package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
	"github.com/spec-kit/yuhuhero-service/internal/observability"
)

// UserLookup is the read the resolver needs from the user store.
// A missing user is reported as pgx.ErrNoRows.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Rejection reasons recorded server-side only.
const (
	reasonMissing      = "missing"
	reasonMalformed    = "malformed"
	reasonBadSignature = "bad_signature"
	reasonExpired      = "expired"
	reasonNoSubject    = "no_subject"
	reasonBadSubject   = "bad_subject"
	reasonUnknownUser  = "unknown_user"
)

// Resolver turns a presented token into the caller's identity.
type Resolver struct {
	tokens  *TokenManager
	users   UserLookup
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewResolver constructs a resolver. logger and metrics may be nil.
func NewResolver(tokens *TokenManager, users UserLookup, logger *zap.Logger, metrics *observability.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{tokens: tokens, users: users, logger: logger, metrics: metrics}
}

// Resolve verifies token and loads the user it names. Token failures of any
// kind, and tokens naming a user that no longer exists, all yield
// ErrInvalidCredentials. Storage failures are returned wrapped and are not
// auth errors.
func (r *Resolver) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		r.reject(reasonMissing, nil)
		return domain.Identity{}, ErrMissingCredentials
	}

	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		r.reject(tokenReason(err), err)
		return domain.Identity{}, ErrInvalidCredentials
	}

	subjectID := claims.SubjectID()
	if subjectID == "" {
		r.reject(reasonNoSubject, nil)
		return domain.Identity{}, ErrInvalidCredentials
	}
	if _, err := uuid.Parse(subjectID); err != nil {
		r.reject(reasonBadSubject, err, zap.String("subject", subjectID))
		return domain.Identity{}, ErrInvalidCredentials
	}

	user, err := r.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.reject(reasonUnknownUser, nil, zap.String("subject", subjectID))
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("lookup user %s: %w", subjectID, err)
	}
	if user == nil {
		r.reject(reasonUnknownUser, nil, zap.String("subject", subjectID))
		return domain.Identity{}, ErrInvalidCredentials
	}

	return user.Identity(), nil
}

func (r *Resolver) reject(reason string, err error, fields ...zap.Field) {
	r.metrics.RecordAuthRejection(reason)
	fields = append(fields, zap.String("reason", reason))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.logger.Warn("authentication rejected", fields...)
}

func tokenReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return reasonExpired
	case errors.Is(err, ErrTokenBadSignature):
		return reasonBadSignature
	default:
		return reasonMalformed
	}
}
