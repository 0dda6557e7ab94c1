package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the session (jti) and the user (sub) behind a token.
type Claims struct {
	SessionID string
	UserID    uint64
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is how long issued tokens stay valid.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue creates a token for userID with a fresh session id.
func (t *TokenIssuer) Issue(userID uint64) (string, Claims, error) {
	now := t.now()
	claims := Claims{
		SessionID: uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(t.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        claims.SessionID,
		Subject:   strconv.FormatUint(userID, 10),
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, issuer and expiry of token.
func (t *TokenIssuer) Parse(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	registered := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, registered, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(registered.Subject, 10, 64)
	if err != nil || registered.ID == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		SessionID: registered.ID,
		UserID:    userID,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
