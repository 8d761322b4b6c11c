package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/models"
)

const memberColumns = `id, name, description, is_active, created_at, updated_at`

// MemberRepository handles database operations for members
type MemberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(conn *sql.DB) *MemberRepository {
	return &MemberRepository{db: conn}
}

// Ensure MemberRepository implements MemberRepositoryInterface
var _ MemberRepositoryInterface = (*MemberRepository)(nil)

func scanMember(row rowScanner) (*models.Member, error) {
	var m models.Member
	var description sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &description, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Description = description.String
	return &m, nil
}

func (r *MemberRepository) Create(ctx context.Context, req *models.MemberRequest) (*models.Member, error) {
	var name, description string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	zap.S().Infof("📦 CreateMember: name=%s", name)

	m, err := scanMember(r.db.QueryRowContext(ctx, `
		INSERT INTO members (name, description, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+memberColumns,
		name, nullString(description), isActive))
	if err != nil {
		return nil, fmt.Errorf("failed to insert member: %w", err)
	}

	zap.S().Infof("✅ CreateMember: Successfully created member id=%d", m.ID)
	return m, nil
}

func (r *MemberRepository) List(ctx context.Context, active *bool) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members`
	var args []interface{}
	if active != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *active)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			zap.S().Errorf("❌ ListMembers: Error scanning member: %v", err)
			continue
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	return m, nil
}

// Update keeps the stored value of every field the request leaves nil.
func (r *MemberRepository) Update(ctx context.Context, id int64, req *models.MemberRequest) (*models.Member, error) {
	var name, description sql.NullString
	var isActive sql.NullBool
	if req.Name != nil {
		name = sql.NullString{String: strings.TrimSpace(*req.Name), Valid: true}
	}
	if req.Description != nil {
		description = sql.NullString{String: strings.TrimSpace(*req.Description), Valid: true}
	}
	if req.IsActive != nil {
		isActive = sql.NullBool{Bool: *req.IsActive, Valid: true}
	}

	m, err := scanMember(r.db.QueryRowContext(ctx, `
		UPDATE members SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			is_active = COALESCE($3, is_active),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+memberColumns,
		name, description, isActive, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	zap.S().Infof("✅ UpdateMember: Successfully updated member id=%d", id)
	return m, nil
}

// Delete removes the member and drops its key from every department holding in the same
// transaction, so no holding points at a missing member.
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if err := expectOneRow(res, fmt.Sprintf("member %d", id)); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE departments SET holding = holding - $1::text, updated_at = NOW()
		WHERE holding ? $1::text`,
		strconv.FormatInt(id, 10))
	if err != nil {
		return fmt.Errorf("failed to drop member from holdings: %w", err)
	}
	stripped, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.S().Infof("✅ DeleteMember: Deleted member id=%d (removed from %d holdings)", id, stripped)
	return nil
}
