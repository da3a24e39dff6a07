package category

import "github.com/geocoder89/kinerjahub/internal/apperr"

var (
	// ErrNotFound is a foreign key failure: callers only reach categories through reports.
	ErrNotFound  = apperr.ForeignKey("unknown_category", "Referenced category does not exist.")
	ErrNameTaken = apperr.Conflict("category_exists", "A category with this name already exists.")
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nama"`
}
