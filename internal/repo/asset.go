package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crucial707/it-inventory/internal/models"
	"github.com/lib/pq"
)

// ========================
// QUERY TARGET
// ========================

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Stamp is who changed a record and when.
type Stamp struct {
	User string
	At   time.Time
}

func (s Stamp) Date() string { return s.At.Format(models.DateLayout) }
func (s Stamp) Time() string { return s.At.Format(models.TimeLayout) }

// ========================
// REPOSITORY STRUCT
// ========================

// AssetRepo reads and writes current-state asset rows for every table type.
type AssetRepo struct {
	DB *sql.DB
	q  DBTX

	columns *columnCache
}

type columnCache struct {
	mu     sync.RWMutex
	byType map[models.TableType][]string
}

func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{
		DB:      db,
		q:       db,
		columns: &columnCache{byType: make(map[models.TableType][]string)},
	}
}

// WithTx returns a repo whose queries run inside tx. The column cache is shared.
func (r *AssetRepo) WithTx(tx *sql.Tx) *AssetRepo {
	return &AssetRepo{DB: r.DB, q: tx, columns: r.columns}
}

// ========================
// COLUMNS
// ========================

// Columns returns the column names of a table type in table order.
func (r *AssetRepo) Columns(ctx context.Context, t models.TableType) ([]string, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTableType, string(t))
	}

	r.columns.mu.RLock()
	cols, ok := r.columns.byType[t]
	r.columns.mu.RUnlock()
	if ok {
		return cols, nil
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1
		 ORDER BY ordinal_position`,
		string(t),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns", t)
	}

	r.columns.mu.Lock()
	r.columns.byType[t] = cols
	r.columns.mu.Unlock()
	return cols, nil
}

// CheckUpdatable verifies that every field exists and may be changed by a user.
// Metadata and identity columns are read-only.
func (r *AssetRepo) CheckUpdatable(ctx context.Context, t models.TableType, fields []string) error {
	return r.checkColumns(ctx, t, fields, func(name string) bool {
		return models.IsMetadataColumn(name) || models.IsKeyColumn(t, name)
	})
}

func (r *AssetRepo) checkColumns(ctx context.Context, t models.TableType, fields []string, readOnly func(string) bool) error {
	cols, err := r.Columns(ctx, t)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}
	for _, f := range fields {
		if !known[f] {
			return &models.FieldError{Field: f, Err: models.ErrUnknownColumn}
		}
		if readOnly != nil && readOnly(f) {
			return &models.FieldError{Field: f, Err: models.ErrReadOnlyColumn}
		}
	}
	return nil
}

// ========================
// GET ROW BY KEY
// ========================

// GetRow returns the single row matching key. Dates come back as YYYY-MM-DD.
func (r *AssetRepo) GetRow(ctx context.Context, t models.TableType, key models.KeySpec) (models.Row, error) {
	return r.getRow(ctx, t, key, false)
}

// GetRowForUpdate is GetRow plus a row lock; only meaningful on a repo from WithTx.
func (r *AssetRepo) GetRowForUpdate(ctx context.Context, t models.TableType, key models.KeySpec) (models.Row, error) {
	return r.getRow(ctx, t, key, true)
}

func (r *AssetRepo) getRow(ctx context.Context, t models.TableType, key models.KeySpec, lock bool) (models.Row, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTableType, string(t))
	}
	where, args := key.Where(1)
	query := "SELECT * FROM " + pq.QuoteIdentifier(string(t)) + " WHERE " + where
	if lock {
		query += " FOR UPDATE"
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	list, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	return list[0], nil
}

// ========================
// INSERT ROW
// ========================

// InsertRow adds a record, stamping create metadata. A missing sr_no gets the next free
// number of that table; the number is read and used under a table lock so concurrent
// creates cannot share it. sr_no is unique per table.
func (r *AssetRepo) InsertRow(ctx context.Context, t models.TableType, data models.Row, stamp Stamp) (models.Row, error) {
	if err := r.checkColumns(ctx, t, data.Fields(), models.IsMetadataColumn); err != nil {
		return nil, err
	}

	values := make(models.Row, len(data)+1)
	for _, f := range data.Fields() {
		v, err := models.StoreValue(f, data[f])
		if err != nil {
			return nil, err
		}
		values[f] = v
	}

	if v, ok := values["sr_no"]; ok && v != nil && v != "" {
		return r.insert(ctx, r.q, t, values, stamp)
	}

	var row models.Row
	err := r.inTx(ctx, func(q DBTX) error {
		table := pq.QuoteIdentifier(string(t))
		if _, err := q.ExecContext(ctx, "LOCK TABLE "+table+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return err
		}
		var next int64
		if err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(sr_no), 0) + 1 FROM "+table).Scan(&next); err != nil {
			return err
		}
		values["sr_no"] = next
		var err error
		row, err = r.insert(ctx, q, t, values, stamp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// inTx runs fn in a new transaction, or in the current one when the repo is already bound to a tx.
func (r *AssetRepo) inTx(ctx context.Context, fn func(q DBTX) error) error {
	if tx, ok := r.q.(*sql.Tx); ok {
		return fn(tx)
	}
	return InTx(ctx, r.DB, func(tx *sql.Tx) error { return fn(tx) })
}

func (r *AssetRepo) insert(ctx context.Context, q DBTX, t models.TableType, values models.Row, stamp Stamp) (models.Row, error) {
	if _, err := models.ResolveKey(t, models.KeyFromRow(values)); err != nil {
		return nil, err
	}

	fields := values.Fields()
	cols := make([]string, 0, len(fields)+3)
	marks := make([]string, 0, len(fields)+3)
	args := make([]any, 0, len(fields)+3)
	for i, f := range fields {
		cols = append(cols, pq.QuoteIdentifier(f))
		marks = append(marks, fmt.Sprintf("$%d", i+1))
		args = append(args, values[f])
	}
	n := len(args)
	cols = append(cols, models.ColCreateDate, models.ColCreateTime, models.ColCreateUser)
	marks = append(marks, fmt.Sprintf("$%d", n+1), fmt.Sprintf("$%d", n+2), fmt.Sprintf("$%d", n+3))
	args = append(args, stamp.Date(), stamp.Time(), stamp.User)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(string(t)), strings.Join(cols, ", "), strings.Join(marks, ", "))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError(err)
	}
	list, err := scanRows(rows)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if len(list) == 0 {
		return nil, errors.New("insert returned no row")
	}
	return list[0], nil
}

// ========================
// UPDATE ROW BY KEY
// ========================

// UpdateRow sets the given fields and stamps change metadata. Values are written as given;
// callers validate and normalize them first.
func (r *AssetRepo) UpdateRow(ctx context.Context, t models.TableType, key models.KeySpec, updates models.Row, stamp Stamp) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownTableType, string(t))
	}
	if len(updates) == 0 {
		return models.ErrNoFieldsToUpdate
	}

	fields := updates.Fields()
	sets := make([]string, 0, len(fields)+3)
	args := make([]any, 0, len(fields)+6)
	for i, f := range fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(f), i+1))
		args = append(args, updates[f])
	}
	n := len(args)
	sets = append(sets,
		fmt.Sprintf("%s = $%d", models.ColChangeDate, n+1),
		fmt.Sprintf("%s = $%d", models.ColChangeTime, n+2),
		fmt.Sprintf("%s = $%d", models.ColChangeUser, n+3),
	)
	args = append(args, stamp.Date(), stamp.Time(), stamp.User)

	where, whereArgs := key.Where(n + 4)
	args = append(args, whereArgs...)

	query := "UPDATE " + pq.QuoteIdentifier(string(t)) + " SET " + strings.Join(sets, ", ") + " WHERE " + where
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ========================
// LIST ROWS WITH FILTERS
// ========================

// List returns rows whose columns equal every filter value, ordered by sr_no.
// limit <= 0 returns every matching row.
func (r *AssetRepo) List(ctx context.Context, t models.TableType, filters map[string]string, limit, offset int) ([]models.Row, error) {
	names := make([]string, 0, len(filters))
	for k := range filters {
		names = append(names, k)
	}
	sort.Strings(names)
	if err := r.checkColumns(ctx, t, names, nil); err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + pq.QuoteIdentifier(string(t))
	var args []any
	if len(names) > 0 {
		conds := make([]string, 0, len(names))
		for i, name := range names {
			conds = append(conds, fmt.Sprintf("%s::text = $%d", pq.QuoteIdentifier(name), i+1))
			args = append(args, filters[name])
		}
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sr_no"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// ========================
// HELPERS
// ========================

// scanRows reads every row into a column map and closes rows.
func scanRows(rows *sql.Rows) ([]models.Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, _ := rows.ColumnTypes()

	var out []models.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(models.Row, len(cols))
		for i, c := range cols {
			dbType := ""
			if i < len(types) && types[i] != nil {
				dbType = types[i].DatabaseTypeName()
			}
			row[c] = formatValue(c, dbType, vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// formatValue makes driver values JSON- and diff-friendly: text as string, DATE columns as
// YYYY-MM-DD and TIME columns as HH:MM:SS.
func formatValue(col, dbType string, v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		switch {
		case dbType == "DATE", dbType == "" && models.IsDateColumn(col):
			return x.Format(models.DateLayout)
		case dbType == "TIME", dbType == "TIMETZ", dbType == "" && strings.HasSuffix(col, "_time"):
			return x.Format(models.TimeLayout)
		default:
			return x.Format(time.RFC3339)
		}
	default:
		return v
	}
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", models.ErrDuplicateAsset, pqErr.Detail)
		case "23502":
			return &models.FieldError{Field: pqErr.Column, Err: models.ErrInvalidValue, Detail: "value required"}
		case "22007", "22008":
			return fmt.Errorf("%w: %s", models.ErrInvalidDateFormat, pqErr.Message)
		}
	}
	return err
}
