package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, email, password_hash, first_name, last_name, gender, role, provider, uid, created_at, updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u                    domain.User
		email                sql.NullString
		gender, role         string
		createdAt, updatedAt string
	)
	err := scanner.Scan(
		&u.ID,
		&email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&gender,
		&role,
		&u.Provider,
		&u.UID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Email = email.String
	u.Gender = domain.Gender(gender)
	if u.Role, err = domain.ParseRole(role); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. Returns store.ErrAlreadyExists on duplicate email.
func (q *queries) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		nullString(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		string(u.Gender),
		string(u.EffectiveRole()),
		u.Provider,
		u.UID,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (q *queries) getUserWhere(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return u, err
}

// GetUser retrieves a user by ID.
func (q *queries) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return q.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return q.getUserWhere(ctx, "email = ?", email)
}

// UpdateUser overwrites the mutable columns of an existing user.
func (q *queries) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE users SET
			email = ?, password_hash = ?, first_name = ?, last_name = ?,
			gender = ?, role = ?, provider = ?, uid = ?, updated_at = ?
		WHERE id = ?`,
		nullString(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		string(u.Gender),
		string(u.EffectiveRole()),
		u.Provider,
		u.UID,
		formatTime(u.UpdatedAt),
		u.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOneRow(res)
}

// DeleteUser removes a user. Articles keep their user_id.
func (q *queries) DeleteUser(ctx context.Context, id string) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOneRow(res)
}

// ListUsers returns all users ordered by creation time.
func (q *queries) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of accounts.
func (q *queries) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// nullString stores "" as NULL so externally authenticated users without
// an email do not collide on the unique index.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
