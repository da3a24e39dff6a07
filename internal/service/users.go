package service

import (
	"context"
	"strings"

	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/authz"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/security"
)

var errUnitRequired = apperr.Invalid("unit_required", "Input validation failed.",
	apperr.Field("unitKerjaId", "is required for ENTRY_USER and USER accounts"))

type UserService struct {
	users  UserStore
	hasher security.PasswordHasher
}

func NewUserService(users UserStore, hasher security.PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) List(ctx context.Context, id auth.Identity) ([]user.User, error) {
	return s.users.List(ctx, authz.EffectiveUserFilter(id))
}

func (s *UserService) Get(ctx context.Context, id auth.Identity, userID int64) (user.User, error) {
	if err := authz.CanViewUser(id, userID); err != nil {
		return user.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) Create(ctx context.Context, id auth.Identity, req user.CreateRequest) (user.User, error) {
	if err := authz.CanManageUsersOrUnits(id); err != nil {
		return user.User{}, err
	}

	if !req.Role.Valid() {
		return user.User{}, apperr.Validation("Input validation failed.", apperr.Field("role", "must be one of SUPER_USER, ENTRY_USER, USER"))
	}
	if req.Role != user.RoleSuperUser && req.UnitID == nil {
		return user.User{}, errUnitRequired
	}

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
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		UnitID:       req.UnitID,
	})
}

func (s *UserService) Update(ctx context.Context, id auth.Identity, userID int64, req user.UpdateRequest) (user.User, error) {
	if err := authz.CanManageUsersOrUnits(id); err != nil {
		return user.User{}, err
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	patch := user.Patch{Name: req.Name, Role: req.Role, UnitID: req.UnitID}

	if req.Role != nil && !req.Role.Valid() {
		return user.User{}, apperr.Validation("Input validation failed.", apperr.Field("role", "must be one of SUPER_USER, ENTRY_USER, USER"))
	}
	if req.UnitID.Value != nil && *req.UnitID.Value <= 0 {
		return user.User{}, apperr.Validation("Input validation failed.", apperr.Field("unitKerjaId", "must be a positive integer"))
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		patch.Email = &email
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return user.User{}, apperr.Internal("Could not update user", err)
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		return current, nil
	}

	return s.users.Update(ctx, userID, patch)
}

func (s *UserService) Delete(ctx context.Context, id auth.Identity, userID int64) error {
	if err := authz.CanDeleteUser(id, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
