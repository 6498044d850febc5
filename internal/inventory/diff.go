package inventory

import (
	"time"

	"github.com/crucial707/it-inventory/internal/models"
)

// Diff compares the pre-update snapshot with the applied updates and returns one history
// entry per field whose value actually changed. nil and "" count as the same value.
// Entries carry the raw values, not their comparison form.
func Diff(t models.TableType, key models.KeySpec, before, updates models.Row, actor string, at time.Time) []models.AuditEntry {
	machine, monitor, asset := key.Tags()
	date := at.Format(models.DateLayout)
	clock := at.Format(models.TimeLayout)

	var entries []models.AuditEntry
	for _, field := range updates.Fields() {
		if models.IsMetadataColumn(field) {
			continue
		}
		oldValue := before[field]
		newValue := updates[field]
		if models.Comparable(oldValue) == models.Comparable(newValue) {
			continue
		}
		entries = append(entries, models.AuditEntry{
			TableType:       t,
			SrNo:            key.Serial(),
			MachineAssetTag: machine,
			MonitorAssetTag: monitor,
			AssetTag:        asset,
			FieldName:       field,
			OldValue:        models.NullableString(oldValue),
			NewValue:        models.NullableString(newValue),
			ChangedBy:       actor,
			ChangeDate:      date,
			ChangeTime:      clock,
		})
	}
	return entries
}
