// Package memory is a process-local implementation of the service stores.
// All repos built from one Store share a single lock, so multi-row changes
// (a report plus its category values) are applied atomically.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/service"
)

type reportRow struct {
	ID          int64
	Date        time.Time
	Target      float64
	Realization float64
	Note        *string
	UnitID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Store struct {
	mu sync.RWMutex

	users      map[int64]user.User
	units      map[int64]unit.Unit
	categories map[int64]category.Category
	reports    map[int64]reportRow
	// values holds report id -> category associations
	values map[int64][]report.CategoryValue

	nextUserID     int64
	nextUnitID     int64
	nextCategoryID int64
	nextReportID   int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]user.User),
		units:      make(map[int64]unit.Unit),
		categories: make(map[int64]category.Category),
		reports:    make(map[int64]reportRow),
		values:     make(map[int64][]report.CategoryValue),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Stores wires every repo of s into a service.Stores bundle.
func (s *Store) Stores() service.Stores {
	return service.Stores{
		Users:      NewUsersRepo(s),
		Units:      NewUnitsRepo(s),
		Categories: NewCategoriesRepo(s),
		Reports:    NewReportsRepo(s),
		Ping:       func(context.Context) error { return nil },
	}
}

// CategoryValueCount reports how many associations a report currently has.
func (s *Store) CategoryValueCount(reportID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values[reportID])
}

func (s *Store) unitExists(id int64) bool {
	_, ok := s.units[id]
	return ok
}

func (s *Store) unitName(id *int64) *string {
	if id == nil {
		return nil
	}
	u, ok := s.units[*id]
	if !ok {
		return nil
	}
	name := u.Name
	return &name
}
