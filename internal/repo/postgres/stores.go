package postgres

import (
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/geocoder89/kinerjahub/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// observer times queries when metrics are enabled.
type observer struct {
	prom *observability.Prom
}

func (o observer) observe(op string, fn func() error) error {
	if o.prom != nil {
		return o.prom.ObserveDB(op, fn)
	}
	return fn()
}

// NewStores wires every postgres repo over one pool. prom may be nil.
func NewStores(pool *pgxpool.Pool, prom *observability.Prom) service.Stores {
	return service.Stores{
		Users:      NewUsersRepo(pool, prom),
		Units:      NewUnitsRepo(pool, prom),
		Categories: NewCategoriesRepo(pool, prom),
		Reports:    NewReportsRepo(pool, prom),
		Ping:       pool.Ping,
	}
}
