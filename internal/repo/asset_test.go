package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/it-inventory/internal/models"
	"github.com/lib/pq"
)

var testStamp = Stamp{User: "alice", At: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)}

func expectServerColumns(mock sqlmock.Sqlmock, cols ...string) {
	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range cols {
		rows.AddRow(c)
	}
	mock.ExpectQuery(`SELECT column_name FROM information_schema\.columns`).
		WithArgs("servers").
		WillReturnRows(rows)
}

func TestAssetRepo_Columns_Cached(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag", "host_name")

	repo := NewAssetRepo(db)
	for i := 0; i < 2; i++ {
		cols, err := repo.Columns(context.Background(), models.TableServers)
		if err != nil {
			t.Fatalf("Columns: %v", err)
		}
		if len(cols) != 3 || cols[2] != "host_name" {
			t.Errorf("unexpected columns: %v", cols)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Columns_UnknownTable(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	_, err = NewAssetRepo(db).Columns(context.Background(), models.TableType("users"))
	if !errors.Is(err, models.ErrUnknownTableType) {
		t.Errorf("expected ErrUnknownTableType, got %v", err)
	}
}

func TestAssetRepo_CheckUpdatable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag", "host_name", "change_user")
	repo := NewAssetRepo(db)
	ctx := context.Background()

	if err := repo.CheckUpdatable(ctx, models.TableServers, []string{"host_name"}); err != nil {
		t.Errorf("host_name should be updatable: %v", err)
	}

	cases := map[string]error{
		"nope":        models.ErrUnknownColumn,
		"change_user": models.ErrReadOnlyColumn,
		"asset_tag":   models.ErrReadOnlyColumn,
	}
	for field, want := range cases {
		err := repo.CheckUpdatable(ctx, models.TableServers, []string{field})
		var fe *models.FieldError
		if !errors.As(err, &fe) || fe.Field != field || !errors.Is(err, want) {
			t.Errorf("%s: got %v, want %v", field, err, want)
		}
	}
}

func TestAssetRepo_GetRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	purchase := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "servers" WHERE sr_no = $1 AND asset_tag = $2`)).
		WithArgs(int64(1), "SV-1").
		WillReturnRows(sqlmock.NewRows([]string{"sr_no", "asset_tag", "host_name", "date_of_purchase", "remarks"}).
			AddRow(int64(1), "SV-1", []byte("db-01"), purchase, nil))

	row, err := NewAssetRepo(db).GetRow(context.Background(), models.TableServers, models.TwoColumn{SrNo: 1, AssetTag: "SV-1"})
	if err != nil {
		t.Fatalf("GetRow: %v", err)
	}
	if row["host_name"] != "db-01" {
		t.Errorf("host_name: got %#v", row["host_name"])
	}
	if row["date_of_purchase"] != "2023-04-15" {
		t.Errorf("date_of_purchase: got %#v", row["date_of_purchase"])
	}
	if v, ok := row["remarks"]; !ok || v != nil {
		t.Errorf("remarks: got %#v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_GetRow_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "systems" WHERE sr_no = $1 AND monitor_asset_tag = $2 AND machine_asset_tag = $3`)).
		WithArgs(int64(9), "MN-9", "MT-9").
		WillReturnRows(sqlmock.NewRows([]string{"sr_no"}))

	key := models.ThreeColumn{SrNo: 9, MachineAssetTag: "MT-9", MonitorAssetTag: "MN-9"}
	_, err = NewAssetRepo(db).GetRow(context.Background(), models.TableSystems, key)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAssetRepo_InsertRow_AssignsSrNo(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag", "host_name", "date_of_purchase")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE "servers" IN SHARE ROW EXCLUSIVE MODE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sr_no), 0) + 1 FROM "servers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(4)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "servers" ("asset_tag", "date_of_purchase", "host_name", "sr_no", create_date, create_time, create_user) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING *`)).
		WithArgs("SV-4", nil, "web-04", int64(4), "2024-06-01", "10:30:00", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"sr_no", "asset_tag", "host_name"}).AddRow(int64(4), "SV-4", "web-04"))
	mock.ExpectCommit()

	data := models.Row{"asset_tag": "SV-4", "host_name": "web-04", "date_of_purchase": "N/A"}
	row, err := NewAssetRepo(db).InsertRow(context.Background(), models.TableServers, data, testStamp)
	if err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	if row["sr_no"] != int64(4) {
		t.Errorf("sr_no: got %#v", row["sr_no"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_InsertRow_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag")
	mock.ExpectQuery(`INSERT INTO "servers"`).
		WillReturnError(&pq.Error{Code: "23505", Detail: "Key (sr_no, asset_tag)=(1, SV-1) already exists."})

	_, err = NewAssetRepo(db).InsertRow(context.Background(), models.TableServers,
		models.Row{"sr_no": int64(1), "asset_tag": "SV-1"}, testStamp)
	if !errors.Is(err, models.ErrDuplicateAsset) {
		t.Errorf("expected ErrDuplicateAsset, got %v", err)
	}
}

func TestAssetRepo_InsertRow_SrNoTakenByOtherTag(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "servers" ("asset_tag", "sr_no", create_date, create_time, create_user) VALUES ($1, $2, $3, $4, $5) RETURNING *`)).
		WithArgs("SV-B", int64(1), "2024-06-01", "10:30:00", "alice").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "servers_sr_no_key", Detail: "Key (sr_no)=(1) already exists."})

	_, err = NewAssetRepo(db).InsertRow(context.Background(), models.TableServers,
		models.Row{"sr_no": int64(1), "asset_tag": "SV-B"}, testStamp)
	if !errors.Is(err, models.ErrDuplicateAsset) {
		t.Errorf("expected ErrDuplicateAsset, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_InsertRow_AssignFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag")
	mock.ExpectBegin()
	mock.ExpectExec(`LOCK TABLE "servers"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(sr_no\), 0\) \+ 1 FROM "servers"`).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(2)))
	mock.ExpectQuery(`INSERT INTO "servers"`).
		WillReturnError(&pq.Error{Code: "23505", Detail: "Key (sr_no, asset_tag)=(2, SV-2) already exists."})
	mock.ExpectRollback()

	_, err = NewAssetRepo(db).InsertRow(context.Background(), models.TableServers,
		models.Row{"asset_tag": "SV-2"}, testStamp)
	if !errors.Is(err, models.ErrDuplicateAsset) {
		t.Errorf("expected ErrDuplicateAsset, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_InsertRow_MetadataRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag", "create_user")
	_, err = NewAssetRepo(db).InsertRow(context.Background(), models.TableServers,
		models.Row{"sr_no": int64(1), "asset_tag": "SV-1", "create_user": "mallory"}, testStamp)
	if !errors.Is(err, models.ErrReadOnlyColumn) {
		t.Errorf("expected ErrReadOnlyColumn, got %v", err)
	}
}

func TestAssetRepo_UpdateRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "servers" SET "host_name" = $1, "location" = $2, change_date = $3, change_time = $4, change_user = $5 WHERE sr_no = $6 AND asset_tag = $7`)).
		WithArgs("db-02", "DC-2", "2024-06-01", "10:30:00", "alice", int64(1), "SV-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewAssetRepo(db).UpdateRow(context.Background(), models.TableServers,
		models.TwoColumn{SrNo: 1, AssetTag: "SV-1"},
		models.Row{"location": "DC-2", "host_name": "db-02"}, testStamp)
	if err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_UpdateRow_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE "servers" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewAssetRepo(db).UpdateRow(context.Background(), models.TableServers,
		models.TwoColumn{SrNo: 1, AssetTag: "SV-1"}, models.Row{"remarks": "x"}, testStamp)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAssetRepo_List_Filters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag", "location", "make")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "servers" WHERE "location"::text = $1 AND "make"::text = $2 ORDER BY sr_no LIMIT $3 OFFSET $4`)).
		WithArgs("DC-1", "Dell", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"sr_no", "asset_tag", "location", "make"}).
			AddRow(int64(21), "SV-21", "DC-1", "Dell"))

	rows, err := NewAssetRepo(db).List(context.Background(), models.TableServers,
		map[string]string{"make": "Dell", "location": "DC-1"}, 10, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0]["asset_tag"] != "SV-21" {
		t.Errorf("unexpected rows: %v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_List_UnknownFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectServerColumns(mock, "sr_no", "asset_tag")
	_, err = NewAssetRepo(db).List(context.Background(), models.TableServers,
		map[string]string{"1=1; --": "x"}, 0, 0)
	if !errors.Is(err, models.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}
