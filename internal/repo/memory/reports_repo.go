package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
)

type ReportsRepo struct {
	s *Store
}

func NewReportsRepo(s *Store) *ReportsRepo {
	return &ReportsRepo{s: s}
}

func (r *ReportsRepo) Create(_ context.Context, in report.NewReport) (report.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.unitExists(in.UnitID) {
		return report.Report{}, unit.ErrUnknown
	}
	if err := r.s.checkCategories(in.Categories); err != nil {
		return report.Report{}, err
	}

	r.s.nextReportID++
	now := r.s.now()

	row := reportRow{
		ID:          r.s.nextReportID,
		Date:        in.Date,
		Target:      in.Target,
		Realization: in.Realization,
		Note:        in.Note,
		UnitID:      in.UnitID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.reports[row.ID] = row
	r.s.values[row.ID] = copyValues(in.Categories)

	return r.s.assemble(row), nil
}

func (r *ReportsRepo) GetByID(_ context.Context, id int64) (report.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.reports[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	return r.s.assemble(row), nil
}

func (r *ReportsRepo) List(_ context.Context, filter report.ListFilter) ([]report.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]report.Report, 0, len(r.s.reports))
	for _, row := range r.s.reports {
		if filter.UnitID != nil && row.UnitID != *filter.UnitID {
			continue
		}
		out = append(out, r.s.assemble(row))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})

	return out, nil
}

func (r *ReportsRepo) Update(_ context.Context, id int64, p report.Patch) (report.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.reports[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}

	if p.UnitID != nil && !r.s.unitExists(*p.UnitID) {
		return report.Report{}, unit.ErrUnknown
	}
	if p.Categories != nil {
		if err := r.s.checkCategories(p.Categories); err != nil {
			return report.Report{}, err
		}
	}

	if p.Date != nil {
		row.Date = *p.Date
	}
	if p.Target != nil {
		row.Target = *p.Target
	}
	if p.Realization != nil {
		row.Realization = *p.Realization
	}
	if p.Note.Set {
		row.Note = copyString(p.Note.Value)
	}
	if p.UnitID != nil {
		row.UnitID = *p.UnitID
	}
	row.UpdatedAt = r.s.now()
	r.s.reports[id] = row

	if p.Categories != nil {
		// full replace, never merge
		delete(r.s.values, id)
		r.s.values[id] = copyValues(p.Categories)
	}

	return r.s.assemble(row), nil
}

func (r *ReportsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reports[id]; !ok {
		return report.ErrNotFound
	}

	delete(r.s.values, id)
	delete(r.s.reports, id)
	return nil
}

func (s *Store) checkCategories(values []report.CategoryValue) error {
	for _, v := range values {
		if _, ok := s.categories[v.CategoryID]; !ok {
			return category.ErrNotFound
		}
	}
	return nil
}

func (s *Store) assemble(row reportRow) report.Report {
	rep := report.Report{
		ID:          row.ID,
		Date:        row.Date,
		Target:      row.Target,
		Realization: row.Realization,
		Note:        row.Note,
		UnitID:      row.UnitID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	if u, ok := s.units[row.UnitID]; ok {
		rep.UnitName = u.Name
	}

	values := s.values[row.ID]
	rep.Categories = make([]report.CategoryValue, 0, len(values))
	for _, v := range values {
		v.CategoryName = s.categories[v.CategoryID].Name
		rep.Categories = append(rep.Categories, v)
	}
	sort.Slice(rep.Categories, func(i, j int) bool {
		return rep.Categories[i].CategoryID < rep.Categories[j].CategoryID
	})

	return rep
}

func copyValues(in []report.CategoryValue) []report.CategoryValue {
	out := make([]report.CategoryValue, len(in))
	copy(out, in)
	return out
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
