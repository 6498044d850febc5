package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash, role\)`).
		WithArgs("alice", sqlmock.AnyArg(), "viewer").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).AddRow(1, "alice", "viewer"))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "alice", "correct-horse", "viewer")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Role != "viewer" {
		t.Errorf("unexpected user: %+v", user)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")) != nil {
		t.Error("password hash does not match the password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_EmptyPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	if _, err := NewUserRepo(db).Create(context.Background(), "alice", "", "viewer"); err == nil {
		t.Fatal("expected error for empty password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query expected: %v", err)
	}
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).AddRow(1, "bob", nil, "viewer"))

	repo := NewUserRepo(db)
	user, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.ID != 1 || user.Username != "bob" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetByID(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error for missing user")
	}
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("charlie").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).AddRow(2, "charlie", nil, "viewer"))

	repo := NewUserRepo(db)
	user, err := repo.GetByUsername(context.Background(), "charlie")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.ID != 2 || user.Username != "charlie" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func userRows(id int, username, hash, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).AddRow(id, username, hash, role)
}

func TestUserRepo_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		rowErr   error
		password string
		wantErr  error
	}{
		{name: "valid", rows: userRows(1, "alice", string(hash), "admin"), password: "s3cret-pass"},
		{name: "wrong password", rows: userRows(1, "alice", string(hash), "admin"), password: "nope", wantErr: ErrInvalidCredentials},
		{name: "no password set", rows: userRows(1, "alice", "", "admin"), password: "", wantErr: ErrInvalidCredentials},
		{name: "unknown user", rowErr: sql.ErrNoRows, password: "x", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			q := mock.ExpectQuery(`SELECT id, username, password_hash, role`).WithArgs("alice")
			if tt.rowErr != nil {
				q.WillReturnError(tt.rowErr)
			} else {
				q.WillReturnRows(tt.rows)
			}

			user, err := NewUserRepo(db).Authenticate(context.Background(), "alice", tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || user.Username != "alice" {
				t.Errorf("Authenticate: %+v, %v", user, err)
			}
		})
	}
}

func TestUserRepo_EnsureUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// existing account is left alone
	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("admin").
		WillReturnRows(userRows(1, "admin", "hash", "admin"))
	// missing account is created
	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("ops").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ops", sqlmock.AnyArg(), "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).AddRow(2, "ops", "admin"))

	repo := NewUserRepo(db)
	created, err := repo.EnsureUser(context.Background(), "admin", "pw-admin-1", "admin")
	if err != nil || created {
		t.Errorf("existing user: created=%v err=%v", created, err)
	}
	created, err = repo.EnsureUser(context.Background(), "ops", "pw-ops-123", "admin")
	if err != nil || !created {
		t.Errorf("new user: created=%v err=%v", created, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, role FROM users ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).
			AddRow(1, "alice", "admin").
			AddRow(2, "bob", "viewer"))

	users, err := NewUserRepo(db).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[1].Username != "bob" || users[1].PasswordHash != "" {
		t.Errorf("unexpected users: %+v", users)
	}
}
