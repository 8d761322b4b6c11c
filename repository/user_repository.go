package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/models"
)

const userColumns = `id, fullname, email, role, is_active, password_hash, created_at, updated_at`

// UserRepository handles database operations for console users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn *sql.DB) *UserRepository {
	return &UserRepository{db: conn}
}

// Ensure UserRepository implements UserRepositoryInterface
var _ UserRepositoryInterface = (*UserRepository)(nil)

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.Role, &u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. The password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, fullname, email, passwordHash, role string) (*models.User, error) {
	email = normalizeEmail(email)
	zap.S().Infof("📦 CreateUser: email=%s, role=%s", email, role)

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (fullname, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		strings.TrimSpace(fullname), email, passwordHash, role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	zap.S().Infof("✅ CreateUser: Successfully created user id=%d", u.ID)
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			zap.S().Errorf("❌ ListUsers: Error scanning user: %v", err)
			continue
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) getBy(ctx context.Context, column string, value interface{}) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %v: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", normalizeEmail(email))
}

// UpdateProfile changes name, email and password. Nil or empty values keep the stored ones.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, fullname, email *string, passwordHash string) (*models.User, error) {
	zap.S().Infof("🔄 UpdateProfile: id=%d", id)

	var name, mail sql.NullString
	if fullname != nil && strings.TrimSpace(*fullname) != "" {
		name = sql.NullString{String: strings.TrimSpace(*fullname), Valid: true}
	}
	if email != nil && strings.TrimSpace(*email) != "" {
		mail = sql.NullString{String: normalizeEmail(*email), Valid: true}
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET
			fullname = COALESCE($1, fullname),
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns,
		name, mail, nullString(passwordHash), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	zap.S().Infof("🔄 SetUserActive: id=%d, active=%t", id, active)

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns, active, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("user %d", id))
}
