package repo

import (
	"context"
	"database/sql"
	"strings"
)

// KDSRepo serves the code lists behind form dropdowns (e.g. COMPANY).
type KDSRepo struct {
	DB *sql.DB
}

func NewKDSRepo(db *sql.DB) *KDSRepo {
	return &KDSRepo{DB: db}
}

// Values returns the active values of a code in display order. Unknown codes yield an
// empty list.
func (r *KDSRepo) Values(ctx context.Context, code string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT value FROM kds_values WHERE code = $1 AND active ORDER BY sort_order, value`,
		strings.ToUpper(strings.TrimSpace(code)),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
