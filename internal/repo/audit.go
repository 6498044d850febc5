package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/it-inventory/internal/models"
)

// AuditRepo persists field-level asset history. Rows are only ever inserted.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

const insertHistorySQL = `INSERT INTO asset_history
	(table_type, sr_no, machine_asset_tag, monitor_asset_tag, asset_tag, field_name, old_value, new_value, changed_by, change_date, change_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Append writes entries in a single transaction: either all of them land or none do.
func (r *AuditRepo) Append(ctx context.Context, entries []models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return InTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, insertHistorySQL,
				string(e.TableType), e.SrNo,
				e.MachineAssetTag, e.MonitorAssetTag, e.AssetTag,
				e.FieldName, e.OldValue, e.NewValue,
				e.ChangedBy, e.ChangeDate, e.ChangeTime,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns the entries of one asset, most recent first.
func (r *AuditRepo) History(ctx context.Context, t models.TableType, key models.KeySpec) ([]models.AuditEntry, error) {
	where, args := key.Where(2)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, table_type, sr_no, machine_asset_tag, monitor_asset_tag, asset_tag,
		        field_name, old_value, new_value, changed_by, change_date, change_time
		 FROM asset_history
		 WHERE table_type = $1 AND `+where+`
		 ORDER BY change_date DESC, change_time DESC, id DESC`,
		append([]any{string(t)}, args...)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var (
			e                      models.AuditEntry
			tableType              string
			machine, monitor, tag  sql.NullString
			oldValue, newValue     sql.NullString
			changeDate, changeTime time.Time
		)
		if err := rows.Scan(&e.ID, &tableType, &e.SrNo, &machine, &monitor, &tag,
			&e.FieldName, &oldValue, &newValue, &e.ChangedBy, &changeDate, &changeTime); err != nil {
			return nil, err
		}
		e.TableType = models.TableType(tableType)
		e.MachineAssetTag = nullString(machine)
		e.MonitorAssetTag = nullString(monitor)
		e.AssetTag = nullString(tag)
		e.OldValue = nullString(oldValue)
		e.NewValue = nullString(newValue)
		e.ChangeDate = changeDate.Format(models.DateLayout)
		e.ChangeTime = changeTime.Format(models.TimeLayout)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
