package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportSelect = `SELECT r.id, r.report_date, r.target, r.realization, r.note, r.unit_id, un.name, r.created_at, r.updated_at
	FROM reports r
	JOIN units un ON un.id = r.unit_id`

type ReportsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewReportsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReportsRepo {
	return &ReportsRepo{pool: pool, observer: observer{prom: prom}}
}

func scanReport(row pgx.Row) (report.Report, error) {
	var rep report.Report

	err := row.Scan(
		&rep.ID,
		&rep.Date,
		&rep.Target,
		&rep.Realization,
		&rep.Note,
		&rep.UnitID,
		&rep.UnitName,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)

	return rep, err
}

func mapReportWriteErr(err error) error {
	switch {
	case isForeignKeyViolation(err, "reports_unit_fk"):
		return unit.ErrUnknown
	case isForeignKeyViolation(err, "report_category_values_category_fk"):
		return category.ErrNotFound
	case IsUniqueViolation(err):
		return report.ErrDuplicateCategory
	}
	return err
}

func (r *ReportsRepo) Create(ctx context.Context, in report.NewReport) (report.Report, error) {
	var id int64

	err := r.observe("reports.create", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		err = tx.QueryRow(ctx,
			`INSERT INTO reports (report_date, target, realization, note, unit_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			in.Date, in.Target, in.Realization, in.Note, in.UnitID,
		).Scan(&id)
		if err != nil {
			return err
		}

		if err := insertValues(ctx, tx, id, in.Categories); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return report.Report{}, mapReportWriteErr(err)
	}

	return r.GetByID(ctx, id)
}

func insertValues(ctx context.Context, tx pgx.Tx, reportID int64, values []report.CategoryValue) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"report_category_values"},
		[]string{"report_id", "category_id", "value"},
		pgx.CopyFromSlice(len(values), func(i int) ([]any, error) {
			return []any{reportID, values[i].CategoryID, values[i].Value}, nil
		}),
	)
	return err
}

func (r *ReportsRepo) GetByID(ctx context.Context, id int64) (report.Report, error) {
	var rep report.Report

	err := r.observe("reports.get_by_id", func() error {
		var err error
		rep, err = scanReport(r.pool.QueryRow(ctx, reportSelect+` WHERE r.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, err
	}

	reports := []report.Report{rep}
	if err := r.attachValues(ctx, reports); err != nil {
		return report.Report{}, err
	}
	return reports[0], nil
}

func (r *ReportsRepo) List(ctx context.Context, filter report.ListFilter) ([]report.Report, error) {
	query := reportSelect

	var args []any
	if filter.UnitID != nil {
		query += ` WHERE r.unit_id = $1`
		args = append(args, *filter.UnitID)
	}
	query += ` ORDER BY r.report_date DESC, r.id DESC`

	out := make([]report.Report, 0)

	err := r.observe("reports.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rep, err := scanReport(rows)
			if err != nil {
				return err
			}
			out = append(out, rep)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if err := r.attachValues(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachValues loads the category values of all given reports in one query.
func (r *ReportsRepo) attachValues(ctx context.Context, reports []report.Report) error {
	if len(reports) == 0 {
		return nil
	}

	ids := make([]int64, len(reports))
	index := make(map[int64]int, len(reports))
	for i := range reports {
		ids[i] = reports[i].ID
		index[reports[i].ID] = i
		reports[i].Categories = make([]report.CategoryValue, 0)
	}

	return r.observe("reports.values", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT v.report_id, v.category_id, c.name, v.value
			FROM report_category_values v
			JOIN categories c ON c.id = v.category_id
			WHERE v.report_id = ANY($1)`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var reportID int64
			var v report.CategoryValue
			if err := rows.Scan(&reportID, &v.CategoryID, &v.CategoryName, &v.Value); err != nil {
				return err
			}
			i := index[reportID]
			reports[i].Categories = append(reports[i].Categories, v)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range reports {
			cats := reports[i].Categories
			sort.Slice(cats, func(a, b int) bool { return cats[a].CategoryID < cats[b].CategoryID })
		}
		return nil
	})
}

func (r *ReportsRepo) Update(ctx context.Context, id int64, p report.Patch) (report.Report, error) {
	err := r.observe("reports.update", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		tag, err := tx.Exec(ctx,
			`UPDATE reports
			SET report_date = COALESCE($2, report_date),
				target = COALESCE($3, target),
				realization = COALESCE($4, realization),
				note = CASE WHEN $5::boolean THEN $6 ELSE note END,
				unit_id = COALESCE($7, unit_id),
				updated_at = NOW()
			WHERE id = $1`,
			id, p.Date, p.Target, p.Realization, p.Note.Set, p.Note.Value, p.UnitID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return report.ErrNotFound
		}

		if p.Categories != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM report_category_values WHERE report_id = $1`, id); err != nil {
				return err
			}
			if err := insertValues(ctx, tx, id, p.Categories); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return report.Report{}, mapReportWriteErr(err)
	}

	return r.GetByID(ctx, id)
}

func (r *ReportsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("reports.delete", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, err := tx.Exec(ctx, `DELETE FROM report_category_values WHERE report_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return report.ErrNotFound
		}

		return tx.Commit(ctx)
	})
}
