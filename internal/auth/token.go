package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClaimPhone is the extra claim carrying the subject's phone number.
const ClaimPhone = "phone"

// TokenManager issues and verifies signed access tokens.
type TokenManager struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a manager for one of HS256, HS384 or HS512.
func NewTokenManager(secret, algorithm string, defaultTTL time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token signing key is empty")
	}
	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	tm := &TokenManager{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

func hmacMethod(algorithm string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(algorithm) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
}

// Claims describes the token payload.
type Claims struct {
	Extra map[string]string `json:"ext,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the identifier of the authenticated entity.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// Phone returns the optional phone claim.
func (c *Claims) Phone() string {
	return c.Extra[ClaimPhone]
}

// GenerateToken signs a token for subjectID. A non-positive ttl uses the
// configured default.
func (tm *TokenManager) GenerateToken(subjectID string, extra map[string]string, ttl time.Duration) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, ErrEmptySubject
	}
	if ttl <= 0 {
		ttl = tm.defaultTTL
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)

	var ext map[string]string
	if len(extra) > 0 {
		ext = make(map[string]string, len(extra))
		for k, v := range extra {
			ext[k] = v
		}
	}

	claims := &Claims{
		Extra: ext,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates the signature and expiry of tokenStr and returns its claims.
// Errors are one of ErrTokenMalformed, ErrTokenBadSignature or ErrTokenExpired.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
