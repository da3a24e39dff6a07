package unit

import (
	"time"

	"github.com/geocoder89/kinerjahub/internal/apperr"
)

var (
	ErrNotFound = apperr.NotFound("unit_not_found", "Unit not found.")
	// ErrUnknown is returned when another row references a unit id that does not exist.
	ErrUnknown = apperr.ForeignKey("unknown_unit", "Referenced unit does not exist.")
	// ErrInUse is returned when users or reports still reference the unit.
	ErrInUse = apperr.Conflict("unit_in_use", "Unit cannot be deleted while users or reports still reference it.")
)

type Unit struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nama"`
	Description *string   `json:"deskripsi"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name        string  `json:"nama" binding:"required,min=3"`
	Description *string `json:"deskripsi"`
}

type UpdateRequest struct {
	Name        *string `json:"nama" binding:"omitempty,min=3"`
	Description *string `json:"deskripsi"`
}

// Dependents counts the rows that keep a unit from being deleted.
type Dependents struct {
	Users   int
	Reports int
}

func (d Dependents) Any() bool {
	return d.Users > 0 || d.Reports > 0
}
