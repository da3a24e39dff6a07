package service

import (
	"context"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/authz"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
)

type UnitService struct {
	units UnitStore
}

func NewUnitService(units UnitStore) *UnitService {
	return &UnitService{units: units}
}

func (s *UnitService) List(ctx context.Context) ([]unit.Unit, error) {
	return s.units.List(ctx)
}

func (s *UnitService) Get(ctx context.Context, unitID int64) (unit.Unit, error) {
	return s.units.GetByID(ctx, unitID)
}

func (s *UnitService) Create(ctx context.Context, id auth.Identity, req unit.CreateRequest) (unit.Unit, error) {
	if err := authz.CanManageUsersOrUnits(id); err != nil {
		return unit.Unit{}, err
	}
	return s.units.Create(ctx, req)
}

func (s *UnitService) Update(ctx context.Context, id auth.Identity, unitID int64, req unit.UpdateRequest) (unit.Unit, error) {
	if err := authz.CanManageUsersOrUnits(id); err != nil {
		return unit.Unit{}, err
	}
	return s.units.Update(ctx, unitID, req)
}

// Delete refuses with unit.ErrInUse while users or reports reference the unit.
func (s *UnitService) Delete(ctx context.Context, id auth.Identity, unitID int64) error {
	if err := authz.CanManageUsersOrUnits(id); err != nil {
		return err
	}

	if _, err := s.units.GetByID(ctx, unitID); err != nil {
		return err
	}

	deps, err := s.units.Dependents(ctx, unitID)
	if err != nil {
		return err
	}
	if deps.Any() {
		return unit.ErrInUse
	}

	return s.units.Delete(ctx, unitID)
}
