package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crucial707/it-inventory/internal/models"
	"github.com/crucial707/it-inventory/internal/repo"
)

// Device types of a systems record.
const (
	DeviceLaptop      = "Laptop"
	DeviceAllInOne    = "All-in-one"
	DeviceDesktop     = "Desktop"
	DeviceWorkstation = "Workstation"
	DeviceMonitor     = "Monitor"
)

// DeviceTypes lists the accepted device_type values.
var DeviceTypes = []string{DeviceLaptop, DeviceAllInOne, DeviceDesktop, DeviceWorkstation, DeviceMonitor}

var (
	machineFields = []string{"model", "serial_number", "configuration", "machine_asset_no", "machine_asset_tag"}
	monitorFields = []string{"monitor_model", "monitor_serial", "monitor_asset_no", "monitor_asset_tag"}
)

// NormalizeDeviceType matches s case-insensitively against DeviceTypes. Empty means Laptop.
func NormalizeDeviceType(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DeviceLaptop, nil
	}
	for _, d := range DeviceTypes {
		if strings.EqualFold(d, s) {
			return d, nil
		}
	}
	return "", &models.FieldError{Field: "device_type", Err: models.ErrInvalidValue,
		Detail: "one of " + strings.Join(DeviceTypes, ", ")}
}

// ApplyDeviceType fills the half of a systems record that does not apply to its device type:
// tag and model fields become N/A and the purchase date is cleared.
func ApplyDeviceType(data models.Row) error {
	raw, _ := data["device_type"].(string)
	device, err := NormalizeDeviceType(raw)
	if err != nil {
		return err
	}
	data["device_type"] = device

	switch device {
	case DeviceLaptop, DeviceAllInOne:
		for _, f := range monitorFields {
			data[f] = models.NotApplicable
		}
		data["monitor_date_of_purchase"] = nil
	case DeviceMonitor:
		for _, f := range machineFields {
			data[f] = models.NotApplicable
		}
		data["machine_date_of_purchase"] = nil
	}
	return nil
}

// CreateAsset inserts a new record stamped with the system actor and returns it as stored.
func (s *Service) CreateAsset(ctx context.Context, t models.TableType, data models.Row) (models.Row, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTableType, string(t))
	}
	row := make(models.Row, len(data))
	for k, v := range data {
		row[k] = v
	}
	if t == models.TableSystems {
		if err := ApplyDeviceType(row); err != nil {
			return nil, err
		}
	}

	created, err := s.Assets.InsertRow(ctx, t, row, repo.Stamp{User: s.SystemActor, At: s.now()})
	if err != nil {
		return nil, err
	}
	slog.Info("asset created", "table_type", t, "sr_no", created["sr_no"], "actor", s.SystemActor)
	return created, nil
}
