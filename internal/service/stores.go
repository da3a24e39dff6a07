package service

import (
	"context"

	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
)

// UserStore persists users. GetByID and GetByEmail return user.ErrNotFound when absent.
type UserStore interface {
	Create(ctx context.Context, u user.NewUser) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Update(ctx context.Context, id int64, patch user.Patch) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UnitStore interface {
	Create(ctx context.Context, req unit.CreateRequest) (unit.Unit, error)
	GetByID(ctx context.Context, id int64) (unit.Unit, error)
	List(ctx context.Context) ([]unit.Unit, error)
	Update(ctx context.Context, id int64, req unit.UpdateRequest) (unit.Unit, error)
	Dependents(ctx context.Context, id int64) (unit.Dependents, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	Create(ctx context.Context, name string) (category.Category, error)
	List(ctx context.Context) ([]category.Category, error)
}

// ReportStore must apply Create, Update and Delete atomically together with the
// category associations.
type ReportStore interface {
	Create(ctx context.Context, in report.NewReport) (report.Report, error)
	GetByID(ctx context.Context, id int64) (report.Report, error)
	List(ctx context.Context, filter report.ListFilter) ([]report.Report, error)
	Update(ctx context.Context, id int64, patch report.Patch) (report.Report, error)
	Delete(ctx context.Context, id int64) error
}

// Stores bundles the persistence handles a process needs.
type Stores struct {
	Users      UserStore
	Units      UnitStore
	Categories CategoryStore
	Reports    ReportStore
	// Ping reports store liveness for readiness probes; nil means always ready.
	Ping func(ctx context.Context) error
}
