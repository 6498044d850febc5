package models

// AuditEntry is one field-level change to an asset. Entries are append-only.
type AuditEntry struct {
	ID              int64     `json:"id"`
	TableType       TableType `json:"table_type"`
	SrNo            int64     `json:"sr_no"`
	MachineAssetTag *string   `json:"machine_asset_tag"`
	MonitorAssetTag *string   `json:"monitor_asset_tag"`
	AssetTag        *string   `json:"asset_tag"`
	FieldName       string    `json:"field_name"`
	OldValue        *string   `json:"old_value"`
	NewValue        *string   `json:"new_value"`
	ChangedBy       string    `json:"changed_by"`
	ChangeDate      string    `json:"change_date"` // YYYY-MM-DD
	ChangeTime      string    `json:"change_time"` // HH:MM:SS
}
