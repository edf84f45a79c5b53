package auth

import (
	"errors"
	"fmt"
	"time"

	"auction-hub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionContext is the immutable identity attached to every command. It
// is produced once at authentication time; the role inside any client
// payload is never trusted over this.
type SessionContext struct {
	SessionID string
	Role      models.Role
}

// TokenMaker issues and verifies HS256 session tokens.
type TokenMaker struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenMaker creates a token maker with the given signing secret and
// token lifetime.
func NewTokenMaker(secret string, ttl time.Duration) *TokenMaker {
	return &TokenMaker{secret: []byte(secret), ttl: ttl}
}

// CreateToken mints a token carrying a fresh session id and the
// server-assigned role.
func (m *TokenMaker) CreateToken(role models.Role) (string, SessionContext, error) {
	sess := SessionContext{
		SessionID: uuid.NewString(),
		Role:      role,
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sid":  sess.SessionID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", SessionContext{}, fmt.Errorf("sign token: %w", err)
	}
	return token, sess, nil
}

// VerifyToken parses and validates a token and returns its session context.
func (m *TokenMaker) VerifyToken(token string) (SessionContext, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionContext{}, ErrExpiredToken
		}
		return SessionContext{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return SessionContext{}, ErrInvalidToken
	}

	sid, _ := claims["sid"].(string)
	role, _ := claims["role"].(string)
	if sid == "" || role == "" {
		return SessionContext{}, ErrInvalidToken
	}

	switch models.Role(role) {
	case models.RoleHost, models.RoleBidder, models.RoleGuest:
	default:
		return SessionContext{}, ErrInvalidToken
	}

	return SessionContext{SessionID: sid, Role: models.Role(role)}, nil
}
