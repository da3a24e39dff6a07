package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UnitsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewUnitsRepo(pool *pgxpool.Pool, prom *observability.Prom) *UnitsRepo {
	return &UnitsRepo{pool: pool, observer: observer{prom: prom}}
}

func scanUnit(row pgx.Row) (unit.Unit, error) {
	var u unit.Unit
	err := row.Scan(&u.ID, &u.Name, &u.Description, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UnitsRepo) Create(ctx context.Context, req unit.CreateRequest) (unit.Unit, error) {
	var u unit.Unit

	err := r.observe("units.create", func() error {
		var err error
		u, err = scanUnit(r.pool.QueryRow(ctx,
			`INSERT INTO units (name, description)
			VALUES ($1, $2)
			RETURNING id, name, description, created_at, updated_at`,
			req.Name, req.Description,
		))
		return err
	})

	if err != nil {
		return unit.Unit{}, err
	}
	return u, nil
}

func (r *UnitsRepo) GetByID(ctx context.Context, id int64) (unit.Unit, error) {
	var u unit.Unit

	err := r.observe("units.get_by_id", func() error {
		var err error
		u, err = scanUnit(r.pool.QueryRow(ctx,
			`SELECT id, name, description, created_at, updated_at FROM units WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return unit.Unit{}, unit.ErrNotFound
		}
		return unit.Unit{}, err
	}
	return u, nil
}

func (r *UnitsRepo) List(ctx context.Context) ([]unit.Unit, error) {
	out := make([]unit.Unit, 0)

	err := r.observe("units.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, description, created_at, updated_at FROM units ORDER BY name ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUnit(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UnitsRepo) Update(ctx context.Context, id int64, req unit.UpdateRequest) (unit.Unit, error) {
	var u unit.Unit

	err := r.observe("units.update", func() error {
		var err error
		u, err = scanUnit(r.pool.QueryRow(ctx,
			`UPDATE units
			SET name = COALESCE($2, name),
				description = COALESCE($3, description),
				updated_at = NOW()
			WHERE id = $1
			RETURNING id, name, description, created_at, updated_at`,
			id, req.Name, req.Description,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return unit.Unit{}, unit.ErrNotFound
		}
		return unit.Unit{}, err
	}
	return u, nil
}

func (r *UnitsRepo) Dependents(ctx context.Context, id int64) (unit.Dependents, error) {
	var d unit.Dependents

	err := r.observe("units.dependents", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT
				(SELECT COUNT(*) FROM users WHERE unit_id = $1),
				(SELECT COUNT(*) FROM reports WHERE unit_id = $1)`,
			id,
		).Scan(&d.Users, &d.Reports)
	})

	return d, err
}

// Delete relies on the RESTRICT foreign keys to refuse units still referenced.
func (r *UnitsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("units.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		if isForeignKeyViolation(err, "users_unit_fk") || isForeignKeyViolation(err, "reports_unit_fk") {
			return unit.ErrInUse
		}
		return err
	}
	if affected == 0 {
		return unit.ErrNotFound
	}
	return nil
}

type CategoriesRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, observer: observer{prom: prom}}
}

func (r *CategoriesRepo) Create(ctx context.Context, name string) (category.Category, error) {
	c := category.Category{Name: name}

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
		).Scan(&c.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return category.Category{}, category.ErrNameTaken
		}
		return category.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	out := make([]category.Category, 0)

	err := r.observe("categories.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c category.Category
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
