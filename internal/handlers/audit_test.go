package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var historyColumns = []string{"id", "table_type", "sr_no", "machine_asset_tag", "monitor_asset_tag", "asset_tag",
	"field_name", "old_value", "new_value", "changed_by", "change_date", "change_time"}

func TestHistoryHandler_Systems(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM asset_history\s+WHERE table_type = \$1 AND sr_no = \$2 AND monitor_asset_tag = \$3 AND machine_asset_tag = \$4`).
		WithArgs("systems", int64(1), "MN-1", "MT-1").
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow(int64(7), "systems", int64(1), "MT-1", "MN-1", nil, "department", "IT", "HR", "alice",
				time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(0, 1, 1, 10, 30, 0, 0, time.UTC)))

	h := &HistoryHandler{Service: newTestService(db)}
	rr := httptest.NewRecorder()
	h.History(rr, jsonRequest(t, "POST", "/assetHistory", map[string]any{
		"tableType":         "systems",
		"sr_no":             1,
		"machine_asset_tag": "MT-1",
		"monitor_asset_tag": "MN-1",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body)
	}
	var out struct {
		History []struct {
			FieldName  string `json:"field_name"`
			OldValue   string `json:"old_value"`
			NewValue   string `json:"new_value"`
			ChangedBy  string `json:"changed_by"`
			ChangeDate string `json:"change_date"`
			ChangeTime string `json:"change_time"`
		} `json:"history"`
	}
	decodeBody(t, rr, &out)
	if len(out.History) != 1 {
		t.Fatalf("history: got %d entries, want 1", len(out.History))
	}
	e := out.History[0]
	if e.FieldName != "department" || e.OldValue != "IT" || e.NewValue != "HR" || e.ChangedBy != "alice" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.ChangeDate != "2024-06-01" || e.ChangeTime != "10:30:00" {
		t.Errorf("unexpected timestamp: %s %s", e.ChangeDate, e.ChangeTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestHistoryHandler_MissingAssetTag(t *testing.T) {
	db, mock := newMockDB(t)

	h := &HistoryHandler{Service: newTestService(db)}
	rr := httptest.NewRecorder()
	h.History(rr, jsonRequest(t, "POST", "/assetHistory", map[string]any{"tableType": "servers", "sr_no": 4}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rr, &out)
	if _, ok := out.Fields["asset_tag"]; !ok {
		t.Errorf("expected asset_tag field error, got %v", out.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestHistoryHandler_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM asset_history`).WillReturnRows(sqlmock.NewRows(historyColumns))

	h := &HistoryHandler{Service: newTestService(db)}
	rr := httptest.NewRecorder()
	h.History(rr, jsonRequest(t, "POST", "/assetHistory", map[string]any{"tableType": "switch", "sr_no": 2, "asset_tag": "SW-2"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if got := rr.Body.String(); got != "{\"history\":[]}\n" {
		t.Errorf("body: got %q", got)
	}
}
