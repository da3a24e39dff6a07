package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
)

type UnitsRepo struct {
	s *Store
}

func NewUnitsRepo(s *Store) *UnitsRepo {
	return &UnitsRepo{s: s}
}

func (r *UnitsRepo) Create(_ context.Context, req unit.CreateRequest) (unit.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextUnitID++
	now := r.s.now()

	u := unit.Unit{
		ID:          r.s.nextUnitID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.units[u.ID] = u

	return u, nil
}

func (r *UnitsRepo) GetByID(_ context.Context, id int64) (unit.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.units[id]
	if !ok {
		return unit.Unit{}, unit.ErrNotFound
	}
	return u, nil
}

func (r *UnitsRepo) List(_ context.Context) ([]unit.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]unit.Unit, 0, len(r.s.units))
	for _, u := range r.s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *UnitsRepo) Update(_ context.Context, id int64, req unit.UpdateRequest) (unit.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.units[id]
	if !ok {
		return unit.Unit{}, unit.ErrNotFound
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Description != nil {
		u.Description = req.Description
	}
	u.UpdatedAt = r.s.now()
	r.s.units[id] = u

	return u, nil
}

func (r *UnitsRepo) Dependents(_ context.Context, id int64) (unit.Dependents, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.dependents(id), nil
}

func (r *UnitsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.units[id]; !ok {
		return unit.ErrNotFound
	}
	// same guarantee the foreign keys give in postgres
	if r.s.dependents(id).Any() {
		return unit.ErrInUse
	}

	delete(r.s.units, id)
	return nil
}

func (s *Store) dependents(unitID int64) unit.Dependents {
	var d unit.Dependents
	for _, u := range s.users {
		if u.UnitID != nil && *u.UnitID == unitID {
			d.Users++
		}
	}
	for _, rep := range s.reports {
		if rep.UnitID == unitID {
			d.Reports++
		}
	}
	return d
}

type CategoriesRepo struct {
	s *Store
}

func NewCategoriesRepo(s *Store) *CategoriesRepo {
	return &CategoriesRepo{s: s}
}

func (r *CategoriesRepo) Create(_ context.Context, name string) (category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Name == name {
			return category.Category{}, category.ErrNameTaken
		}
	}

	r.s.nextCategoryID++
	c := category.Category{ID: r.s.nextCategoryID, Name: name}
	r.s.categories[c.ID] = c

	return c, nil
}

func (r *CategoriesRepo) List(_ context.Context) ([]category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]category.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}
