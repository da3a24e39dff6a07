package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/geocoder89/kinerjahub/internal/apperr"
)

var (
	ErrNotFound          = apperr.NotFound("report_not_found", "Report not found.")
	ErrNoCategories      = apperr.Invalid("no_categories", "At least one performance category must be reported.", apperr.Field("kategori", "must contain at least one category"))
	ErrDuplicateCategory = apperr.Invalid("duplicate_category", "A category may only appear once per report.", apperr.Field("kategori", "contains a duplicate category"))
)

const dateLayout = "2006-01-02"

// CategoryValue is one report<->category association.
type CategoryValue struct {
	CategoryID   int64    `json:"kategoriKinerjaId"`
	CategoryName string   `json:"nama,omitempty"`
	Value        *float64 `json:"nilai"`
}

type Report struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"tanggal"`
	Target      float64         `json:"target"`
	Realization float64         `json:"realisasi"`
	Note        *string         `json:"keterangan"`
	UnitID      int64           `json:"unitKerjaId"`
	UnitName    string          `json:"unitKerja,omitempty"`
	Categories  []CategoryValue `json:"kategori"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewReport is a validated create request ready for persistence.
type NewReport struct {
	Date        time.Time
	Target      float64
	Realization float64
	Note        *string
	UnitID      int64
	Categories  []CategoryValue
}

// Patch carries the fields to change. A non-nil Categories replaces every association.
type Patch struct {
	Date        *time.Time
	Target      *float64
	Realization *float64
	Note        NullableString
	UnitID      *int64
	Categories  []CategoryValue
}

type ListFilter struct {
	UnitID *int64
}

type CategoryValueInput struct {
	CategoryID int64    `json:"kategoriKinerjaId" binding:"required,gt=0"`
	Value      *float64 `json:"nilai"`
}

type CreateRequest struct {
	Date        string               `json:"tanggal" binding:"required"`
	Target      *float64             `json:"target" binding:"required,gte=0"`
	Realization *float64             `json:"realisasi" binding:"required,gte=0"`
	Note        *string              `json:"keterangan"`
	UnitID      int64                `json:"unitKerjaId" binding:"required,gt=0"`
	Categories  []CategoryValueInput `json:"kategori" binding:"required,dive"`
}

type UpdateRequest struct {
	Date        *string              `json:"tanggal"`
	Target      *float64             `json:"target" binding:"omitempty,gte=0"`
	Realization *float64             `json:"realisasi" binding:"omitempty,gte=0"`
	Note        NullableString       `json:"keterangan"`
	UnitID      *int64               `json:"unitKerjaId" binding:"omitempty,gt=0"`
	Categories  []CategoryValueInput `json:"kategori" binding:"omitempty,dive"`
}

// NullableString tells an absent field apart from an explicit null, which clears the note.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and truncates to the day in UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Invalid("invalid_date", "Invalid report date.", apperr.Field("tanggal", "must be a date in YYYY-MM-DD or RFC 3339 format"))
	}

	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// CategoryValues converts request entries, rejecting an empty list or a repeated category.
func CategoryValues(in []CategoryValueInput) ([]CategoryValue, error) {
	if len(in) == 0 {
		return nil, ErrNoCategories
	}

	seen := make(map[int64]struct{}, len(in))
	out := make([]CategoryValue, 0, len(in))

	for _, item := range in {
		if _, dup := seen[item.CategoryID]; dup {
			return nil, ErrDuplicateCategory
		}
		seen[item.CategoryID] = struct{}{}
		out = append(out, CategoryValue{CategoryID: item.CategoryID, Value: item.Value})
	}

	return out, nil
}

// FromCreateRequest validates req and builds the persistence input.
func FromCreateRequest(req CreateRequest) (NewReport, error) {
	values, err := CategoryValues(req.Categories)
	if err != nil {
		return NewReport{}, err
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return NewReport{}, err
	}

	var fields []apperr.FieldError
	if req.Target == nil || *req.Target < 0 {
		fields = append(fields, apperr.Field("target", "must be zero or greater"))
	}
	if req.Realization == nil || *req.Realization < 0 {
		fields = append(fields, apperr.Field("realisasi", "must be zero or greater"))
	}
	if req.UnitID <= 0 {
		fields = append(fields, apperr.Field("unitKerjaId", "must be a positive integer"))
	}
	if len(fields) > 0 {
		return NewReport{}, apperr.Validation("Input validation failed.", fields...)
	}

	return NewReport{
		Date:        date,
		Target:      *req.Target,
		Realization: *req.Realization,
		Note:        req.Note,
		UnitID:      req.UnitID,
		Categories:  values,
	}, nil
}

// PatchFromUpdateRequest validates req. An explicitly empty category list is rejected.
func PatchFromUpdateRequest(req UpdateRequest) (Patch, error) {
	var p Patch

	if req.Date != nil {
		d, err := ParseDate(*req.Date)
		if err != nil {
			return Patch{}, err
		}
		p.Date = &d
	}

	if req.Target != nil && *req.Target < 0 {
		return Patch{}, apperr.Validation("Input validation failed.", apperr.Field("target", "must be zero or greater"))
	}
	if req.Realization != nil && *req.Realization < 0 {
		return Patch{}, apperr.Validation("Input validation failed.", apperr.Field("realisasi", "must be zero or greater"))
	}
	if req.UnitID != nil && *req.UnitID <= 0 {
		return Patch{}, apperr.Validation("Input validation failed.", apperr.Field("unitKerjaId", "must be a positive integer"))
	}

	p.Target = req.Target
	p.Realization = req.Realization
	p.Note = req.Note
	p.UnitID = req.UnitID

	if req.Categories != nil {
		values, err := CategoryValues(req.Categories)
		if err != nil {
			return Patch{}, err
		}
		p.Categories = values
	}

	return p, nil
}
