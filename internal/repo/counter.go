package repo

import (
	"context"
	"database/sql"
	"errors"
)

// CounterRepo tracks the last asset tag counter issued per company and device type.
type CounterRepo struct {
	DB *sql.DB
}

func NewCounterRepo(db *sql.DB) *CounterRepo {
	return &CounterRepo{DB: db}
}

// Last returns the last issued counter, 0 when none has been issued yet.
func (r *CounterRepo) Last(ctx context.Context, company, deviceType string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT last_counter FROM asset_tag_counters WHERE company = $1 AND device_type = $2`,
		company, deviceType,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Next atomically reserves and returns the next counter.
func (r *CounterRepo) Next(ctx context.Context, company, deviceType string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO asset_tag_counters (company, device_type, last_counter)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (company, device_type)
		 DO UPDATE SET last_counter = asset_tag_counters.last_counter + 1
		 RETURNING last_counter`,
		company, deviceType,
	).Scan(&n)
	return n, err
}
