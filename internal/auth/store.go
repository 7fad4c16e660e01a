package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines the persistence contract the auth service depends on.
// Implementations must enforce case-sensitive email uniqueness.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRefreshTokenHash(ctx context.Context, id, hash string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Count(ctx context.Context) (int, error)
}

// HashToken computes the SHA-256 hash of a raw token string for storage.
// Raw refresh tokens are never stored, only their hashes.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// SQLiteUserStore implements UserStore using SQLite.
type SQLiteUserStore struct {
	db *sql.DB
}

// NewUserStore creates a new SQLite-backed user store.
func NewUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

// Create inserts a new credential record. The ID is generated if empty.
// Returns ErrEmailExists when the email is already registered.
func (s *SQLiteUserStore) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	user.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	user.UpdatedAt = user.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, refresh_token_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash,
		string(user.Role), user.RefreshTokenHash, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by exact (case-sensitive) email match.
func (s *SQLiteUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, selectUser+" WHERE email = ?", email)
}

// FindByID retrieves a user by their unique ID.
func (s *SQLiteUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, selectUser+" WHERE id = ?", id)
}

// List returns all users ordered by creation date.
func (s *SQLiteUserStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, selectUser+" ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// UpdateRefreshTokenHash overwrites the stored refresh-token hash for a user.
// An empty hash clears the field, revoking the active session.
func (s *SQLiteUserStore) UpdateRefreshTokenHash(ctx context.Context, id, hash string) error {
	return s.updateField(ctx,
		"UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ?",
		hash, id)
}

// UpdatePasswordHash changes a user's password hash.
func (s *SQLiteUserStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.updateField(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		hash, id)
}

// Count returns the total number of credential records.
func (s *SQLiteUserStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// selectUser is the shared column list for user queries.
const selectUser = "SELECT id, name, email, password_hash, role, refresh_token_hash, created_at, updated_at FROM users"

// updateField runs a single-column update and maps zero affected rows to
// ErrUserNotFound.
func (s *SQLiteUserStore) updateField(ctx context.Context, query string, value any, id string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx, query, value, now, id)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// getUser executes a query and scans a single user result.
func (s *SQLiteUserStore) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, query, args...))
}

// scanner is satisfied by both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser scans a user row from any scanner.
func scanUser(sc scanner) (*User, error) {
	var u User
	var role string
	var createdAt, updatedAt string

	err := sc.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&role, &u.RefreshTokenHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &u, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
