package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingToken = apperr.Unauthenticated("missing_token", "Access denied. Authentication token not found.")
	ErrInvalidToken = apperr.Unauthenticated("invalid_token", "Invalid token.")
	ErrExpiredToken = apperr.Unauthenticated("expired_token", "Token expired. Please refresh or log in again.")
)

// Identity is the caller as encoded in a token. It is not re-read from the
// database on each request.
type Identity struct {
	UserID int64     `json:"id"`
	Email  string    `json:"email"`
	Role   user.Role `json:"role"`
	UnitID *int64    `json:"unitKerjaId"`
}

// IdentityOf builds the claims payload for u.
func IdentityOf(u user.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role, UnitID: u.UnitID}
}

type Claims struct {
	UserID    int64     `json:"id"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	UnitID    *int64    `json:"unitKerjaId"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role, UnitID: c.UnitID}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock returns a copy of m that reads time from now. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) IssueTokenPair(id Identity) (TokenPair, error) {
	access, err := m.sign(id, tokenTypeAccess, m.accessSecret, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := m.sign(id, tokenTypeRefresh, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) sign(id Identity, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := m.now().UTC()

	claims := Claims{
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		UnitID:    id.UnitID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (m *Manager) VerifyAccess(tokenStr string) (Identity, error) {
	return m.verify(tokenStr, tokenTypeAccess, m.accessSecret)
}

func (m *Manager) VerifyRefresh(tokenStr string) (Identity, error) {
	return m.verify(tokenStr, tokenTypeRefresh, m.refreshSecret)
}

func (m *Manager) verify(tokenStr, tokenType string, secret []byte) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		// jwt/v5 only reports expiry after the signature checked out.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken.Wrap(err)
		}
		return Identity{}, ErrInvalidToken.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if claims.TokenType != tokenType {
		return Identity{}, ErrInvalidToken.Wrap(errors.New("invalid token type"))
	}

	if claims.UserID <= 0 || !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken.Wrap(errors.New("invalid claims"))
	}

	return claims.identity(), nil
}
