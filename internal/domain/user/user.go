package user

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/geocoder89/kinerjahub/internal/apperr"
)

var (
	ErrNotFound   = apperr.NotFound("user_not_found", "User not found.")
	ErrEmailTaken = apperr.Conflict("email_taken", "Email is already registered.")
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	UnitID       *int64    `json:"unitKerjaId"`
	UnitName     *string   `json:"unitKerja,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser is what the store persists on create; the hash is computed by the caller.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	UnitID       *int64
}

// Patch holds only the fields that should change.
type Patch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	UnitID       NullableInt64
}

// Empty reports whether applying p would change nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil && p.Role == nil && !p.UnitID.Set
}

type ListFilter struct {
	ID *int64
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,strongpassword"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateRequest struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required,oneof=SUPER_USER ENTRY_USER USER"`
	UnitID   *int64 `json:"unitKerjaId" binding:"omitempty,gt=0"`
}

type UpdateRequest struct {
	Name     *string       `json:"name" binding:"omitempty,min=3"`
	Email    *string       `json:"email" binding:"omitempty,email"`
	Password *string       `json:"password" binding:"omitempty,min=6"`
	Role     *Role         `json:"role" binding:"omitempty,oneof=SUPER_USER ENTRY_USER USER"`
	UnitID   NullableInt64 `json:"unitKerjaId"`
}

// NullableInt64 distinguishes an absent JSON field from an explicit null.
type NullableInt64 struct {
	Set   bool
	Value *int64
}

func (n *NullableInt64) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
