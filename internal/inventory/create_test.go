package inventory

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/it-inventory/internal/models"
)

func TestNormalizeDeviceType(t *testing.T) {
	got, err := NormalizeDeviceType("")
	require.NoError(t, err)
	assert.Equal(t, DeviceLaptop, got)

	got, err = NormalizeDeviceType(" all-in-one ")
	require.NoError(t, err)
	assert.Equal(t, DeviceAllInOne, got)

	_, err = NormalizeDeviceType("Tablet")
	assert.ErrorIs(t, err, models.ErrInvalidValue)
}

func TestApplyDeviceType(t *testing.T) {
	t.Run("laptop drops monitor", func(t *testing.T) {
		row := models.Row{"device_type": "Laptop", "monitor_model": "P2419", "monitor_date_of_purchase": "2023-01-01"}
		require.NoError(t, ApplyDeviceType(row))
		assert.Equal(t, models.NotApplicable, row["monitor_model"])
		assert.Equal(t, models.NotApplicable, row["monitor_asset_tag"])
		assert.Nil(t, row["monitor_date_of_purchase"])
		assert.NotContains(t, row, "machine_asset_tag")
	})

	t.Run("monitor drops machine", func(t *testing.T) {
		row := models.Row{"device_type": "monitor", "monitor_asset_tag": "MN-3", "machine_date_of_purchase": "2023-01-01"}
		require.NoError(t, ApplyDeviceType(row))
		assert.Equal(t, DeviceMonitor, row["device_type"])
		assert.Equal(t, models.NotApplicable, row["machine_asset_tag"])
		assert.Equal(t, models.NotApplicable, row["serial_number"])
		assert.Equal(t, "MN-3", row["monitor_asset_tag"])
		assert.Nil(t, row["machine_date_of_purchase"])
	})

	t.Run("desktop keeps both", func(t *testing.T) {
		row := models.Row{"device_type": "Desktop", "machine_asset_tag": "MT-2", "monitor_asset_tag": "MN-2"}
		require.NoError(t, ApplyDeviceType(row))
		assert.Equal(t, "MT-2", row["machine_asset_tag"])
		assert.Equal(t, "MN-2", row["monitor_asset_tag"])
	})
}

func TestCreateAsset_Laptop(t *testing.T) {
	svc, mock := newTestService(t)

	expectColumns(mock, "systems", systemsColumns)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE "systems" IN SHARE ROW EXCLUSIVE MODE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sr_no), 0) + 1 FROM "systems"`)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "systems" ("device_type", "machine_asset_tag", "monitor_asset_no", `+
		`"monitor_asset_tag", "monitor_date_of_purchase", "monitor_model", "monitor_serial", "sr_no", "user_name", `+
		`create_date, create_time, create_user) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING *`)).
		WithArgs("Laptop", "MT-9", "N/A", "N/A", nil, "N/A", "N/A", int64(7), "ravi", "2024-06-01", "10:30:00", "admin").
		WillReturnRows(assetRows(systemsColumns, map[string]any{
			"sr_no": int64(7), "device_type": "Laptop", "user_name": "ravi",
			"machine_asset_tag": "MT-9", "monitor_asset_tag": "N/A", "create_user": "admin",
		}))
	mock.ExpectCommit()

	row, err := svc.CreateAsset(context.Background(), models.TableSystems, models.Row{
		"device_type":              "laptop",
		"user_name":                "ravi",
		"machine_asset_tag":        "MT-9",
		"monitor_model":            "P2419",
		"monitor_date_of_purchase": "2023-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), row["sr_no"])
	assert.Equal(t, "admin", row["create_user"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAsset_Duplicate(t *testing.T) {
	svc, mock := newTestService(t)

	expectColumns(mock, "servers", serversColumns)
	mock.ExpectQuery(`INSERT INTO "servers"`).
		WillReturnError(&pq.Error{Code: "23505", Detail: "Key (sr_no, asset_tag)=(1, SRV-1) already exists."})

	_, err := svc.CreateAsset(context.Background(), models.TableServers, models.Row{"sr_no": int64(1), "asset_tag": "SRV-1"})
	assert.ErrorIs(t, err, models.ErrDuplicateAsset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAsset_MissingKey(t *testing.T) {
	svc, mock := newTestService(t)

	expectColumns(mock, "servers", serversColumns)

	_, err := svc.CreateAsset(context.Background(), models.TableServers, models.Row{"sr_no": int64(2), "host_name": "db01"})
	assert.ErrorIs(t, err, models.ErrMissingRequiredKeyField)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAsset_RejectsMetadata(t *testing.T) {
	svc, mock := newTestService(t)

	expectColumns(mock, "servers", serversColumns)

	_, err := svc.CreateAsset(context.Background(), models.TableServers,
		models.Row{"asset_tag": "SRV-1", "create_user": "mallory"})
	assert.ErrorIs(t, err, models.ErrReadOnlyColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}
