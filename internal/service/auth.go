package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/security"
)

var (
	ErrInvalidCredentials = apperr.Unauthenticated("invalid_credentials", "Email or password is incorrect.")
	ErrRefreshRequired    = apperr.Invalid("refresh_required", "Refresh token is required.", apperr.Field("refreshToken", "is required"))
	ErrUnknownTokenUser   = apperr.Unauthenticated("unknown_user", "User not found.")
)

// TokenIssuer is the part of auth.Manager the auth flows need.
type TokenIssuer interface {
	IssueTokenPair(id auth.Identity) (auth.TokenPair, error)
	VerifyRefresh(token string) (auth.Identity, error)
}

type LoginResult struct {
	User   user.User
	Tokens auth.TokenPair
}

type AuthService struct {
	users  UserStore
	hasher security.PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(users UserStore, hasher security.PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register always creates a USER-role account without a unit.
func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return user.User{}, user.ErrEmailTaken
	} else if !isNotFound(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, apperr.Internal("Could not create user", err)
	}

	return s.users.Create(ctx, user.NewUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	})
}

func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if isNotFound(err, user.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, apperr.Internal("Could not verify credentials", err)
	}

	pair, err := s.tokens.IssueTokenPair(auth.IdentityOf(u))
	if err != nil {
		return LoginResult{}, apperr.Internal("Could not generate tokens", err)
	}

	return LoginResult{User: u, Tokens: pair}, nil
}

// Refresh re-reads the user so role and unit changes land in the new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return auth.TokenPair{}, ErrRefreshRequired
	}

	claimed, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}

	u, err := s.users.GetByID(ctx, claimed.UserID)
	if err != nil {
		if isNotFound(err, user.ErrNotFound) {
			return auth.TokenPair{}, ErrUnknownTokenUser
		}
		return auth.TokenPair{}, err
	}

	pair, err := s.tokens.IssueTokenPair(auth.IdentityOf(u))
	if err != nil {
		return auth.TokenPair{}, apperr.Internal("Could not generate tokens", err)
	}

	return pair, nil
}

func (s *AuthService) Me(ctx context.Context, id auth.Identity) (user.User, error) {
	return s.users.GetByID(ctx, id.UserID)
}

func isNotFound(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}
