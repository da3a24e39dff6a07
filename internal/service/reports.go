package service

import (
	"context"
	"time"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/authz"
	"github.com/geocoder89/kinerjahub/internal/cache"
	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
)

// ReportService applies the authorization policy before touching the store.
type ReportService struct {
	reports    ReportStore
	categories CategoryStore
	catalog    *cache.Cache[[]category.Category]
}

// categories only change through seeding, so a short TTL is enough
const categoryCacheTTL = 30 * time.Second

func NewReportService(reports ReportStore, categories CategoryStore) *ReportService {
	return &ReportService{
		reports:    reports,
		categories: categories,
		catalog:    cache.New[[]category.Category](categoryCacheTTL),
	}
}

func (s *ReportService) Create(ctx context.Context, id auth.Identity, req report.CreateRequest) (report.Report, error) {
	if id.Role != user.RoleSuperUser && id.Role != user.RoleEntryUser {
		return report.Report{}, authz.ErrForbiddenRole
	}

	if err := authz.CanCreateOrModifyReport(id, req.UnitID); err != nil {
		return report.Report{}, err
	}

	in, err := report.FromCreateRequest(req)
	if err != nil {
		return report.Report{}, err
	}

	return s.reports.Create(ctx, in)
}

// List returns reports newest first. requestedUnit is ignored for entry users.
func (s *ReportService) List(ctx context.Context, id auth.Identity, requestedUnit *int64) ([]report.Report, error) {
	filter := report.ListFilter{UnitID: authz.EffectiveReportFilter(id, requestedUnit)}
	return s.reports.List(ctx, filter)
}

func (s *ReportService) Get(ctx context.Context, id auth.Identity, reportID int64) (report.Report, error) {
	r, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return report.Report{}, err
	}

	if err := authz.CanViewReport(id, r.UnitID); err != nil {
		return report.Report{}, err
	}

	return r, nil
}

// Update checks ownership against the stored unit, not the unit in the payload.
func (s *ReportService) Update(ctx context.Context, id auth.Identity, reportID int64, req report.UpdateRequest) (report.Report, error) {
	existing, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return report.Report{}, err
	}

	if err := authz.CanCreateOrModifyReport(id, existing.UnitID); err != nil {
		return report.Report{}, err
	}

	patch, err := report.PatchFromUpdateRequest(req)
	if err != nil {
		return report.Report{}, err
	}

	return s.reports.Update(ctx, reportID, patch)
}

func (s *ReportService) Delete(ctx context.Context, id auth.Identity, reportID int64) error {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return err
	}

	if err := authz.CanDeleteReport(id); err != nil {
		return err
	}

	return s.reports.Delete(ctx, reportID)
}

// ListCategories is open to every authenticated identity.
func (s *ReportService) ListCategories(ctx context.Context) ([]category.Category, error) {
	return s.catalog.GetOrLoad("all", func() ([]category.Category, error) {
		return s.categories.List(ctx)
	})
}
