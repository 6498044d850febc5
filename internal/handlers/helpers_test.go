package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/crucial707/it-inventory/internal/inventory"
	"github.com/crucial707/it-inventory/internal/middleware"
)

var serversColumns = []string{
	"sr_no", "description", "location", "host_name", "make", "model", "serial_number",
	"ip_address", "asset_tag", "date_of_purchase", "date_of_expiry", "invoice_number",
	"invoice_file", "remarks",
	"create_date", "create_time", "create_user", "change_date", "change_time", "change_user",
}

var fixedNow = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestService(db *sql.DB) *inventory.Service {
	svc := inventory.NewService(db, "admin")
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func expectColumns(mock sqlmock.Sqlmock, table string, cols []string) {
	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range cols {
		rows.AddRow(c)
	}
	mock.ExpectQuery(`SELECT column_name FROM information_schema\.columns`).WithArgs(table).WillReturnRows(rows)
}

func serverRows(values map[string]any) *sqlmock.Rows {
	vals := make([]driver.Value, len(serversColumns))
	for i, c := range serversColumns {
		vals[i] = values[c]
	}
	return sqlmock.NewRows(serversColumns).AddRow(vals...)
}

func quote(sql string) string { return regexp.QuoteMeta(sql) }

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, username, role string) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), middleware.Principal{UserID: 1, Username: username, Role: role}))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
