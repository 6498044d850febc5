package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/it-inventory/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User (password stored as bcrypt hash)
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	if password == "" {
		return nil, errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, username, role
	`

	user := &models.User{PasswordHash: string(hash)}
	err = r.DB.QueryRowContext(ctx, query, username, string(hash), role).
		Scan(&user.ID, &user.Username, &user.Role)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Ensure User (startup seeding)
// ==========================

// EnsureUser creates the account when no user with that name exists. It never changes an
// existing account. Returns true when a user was created.
func (r *UserRepo) EnsureUser(ctx context.Context, username, password, role string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if _, err := r.Create(ctx, username, password, role); err != nil {
		return false, err
	}
	return true, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role
		FROM users
		WHERE username = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username))
}

func (r *UserRepo) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var hash sql.NullString
	if err := row.Scan(&user.ID, &user.Username, &hash, &user.Role); err != nil {
		return nil, err
	}
	user.PasswordHash = hash.String
	return user, nil
}

// ==========================
// Check Password
// ==========================

// ErrInvalidCredentials covers unknown users, accounts without a password and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticate returns the user when password matches the stored hash.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ==========================
// List Users
// ==========================
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, username, role FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
