package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role, u.unit_id, un.name, u.created_at, u.updated_at`

const userFrom = ` FROM users u LEFT JOIN units un ON un.id = u.unit_id`

type UsersRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, observer: observer{prom: prom}}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.UnitID,
		&u.UnitName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func mapUserWriteErr(err error) error {
	switch {
	case IsUniqueViolation(err):
		return user.ErrEmailTaken
	case isForeignKeyViolation(err, "users_unit_fk"):
		return unit.ErrUnknown
	}
	return err
}

func (r *UsersRepo) Create(ctx context.Context, in user.NewUser) (user.User, error) {
	var id int64

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash, role, unit_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			in.Name, in.Email, in.PasswordHash, string(in.Role), in.UnitID,
		).Scan(&id)
	})

	if err != nil {
		return user.User{}, mapUserWriteErr(err)
	}

	return r.GetByID(ctx, id)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `WHERE u.id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `WHERE u.email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+userFrom+` `+where, arg))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	query := `SELECT ` + userColumns + userFrom

	var args []any
	if filter.ID != nil {
		query += ` WHERE u.id = $1`
		args = append(args, *filter.ID)
	}
	query += ` ORDER BY u.name ASC, u.id ASC`

	out := make([]user.User, 0)

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
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

func (r *UsersRepo) Update(ctx context.Context, id int64, p user.Patch) (user.User, error) {
	var sets []string
	var args []any

	argsPosition := 1

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}
	if p.Role != nil {
		add("role", string(*p.Role))
	}
	if p.UnitID.Set {
		// Value nil clears the unit
		add("unit_id", p.UnitID.Value)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), argsPosition)

	var affected int64

	err := r.observe("users.update", func() error {
		tag, err := r.pool.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return user.User{}, mapUserWriteErr(err)
	}
	if affected == 0 {
		return user.User{}, user.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}
