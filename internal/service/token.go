package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"todo_backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims is the payload of both token types. Access tokens prove identity
// for a single request window; refresh tokens additionally carry a JTI so
// they can be revoked through the denylist.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	denylist   Denylist
	log        *slog.Logger
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, denylist Denylist, log *slog.Logger) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		denylist:   denylist,
		log:        log,
	}
}

// IssuePair mints an access/refresh token pair bound to the user. Both
// tokens embed the username and email claims.
func (s *TokenService) IssuePair(user *domain.User) (TokenPair, error) {
	access, err := s.sign(user, tokenTypeAccess, s.accessTTL, "")
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(user, tokenTypeRefresh, s.refreshTTL, uuid.NewString())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token (signature, expiry, denylist) and mints
// a new access token. The refresh token itself is not rotated.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return "", ErrInvalidToken
	}

	// A denylist store failure is an infrastructure error, never reported
	// as an invalid token.
	denied, err := s.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("denylist check: %w", err)
	}
	if denied {
		return "", ErrInvalidToken
	}

	user := &domain.User{ID: claims.UserID, Username: claims.Username, Email: claims.Email}
	return s.sign(user, tokenTypeAccess, s.accessTTL, "")
}

// Blacklist revokes a refresh token. It is idempotent and never reports a
// caller-visible failure: revoking an already-revoked, malformed or expired
// token is still a successful logout. Denylist write errors are logged.
func (s *TokenService) Blacklist(ctx context.Context, refreshToken string) {
	claims, err := s.parse(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh || claims.ID == "" {
		return
	}

	ttl := s.refreshTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.denylist.Add(ctx, claims.ID, ttl); err != nil {
		s.log.Warn("failed to write refresh token to denylist", "error", err)
	}
}

// ParseAccess validates an access token and returns its claims.
func (s *TokenService) ParseAccess(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil || claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) sign(user *domain.User, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
