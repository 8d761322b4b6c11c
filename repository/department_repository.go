package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/billing"
	"print-shop-mis/models"
)

const departmentColumns = `id, name, holding, is_active, created_at, updated_at`

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *sql.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(conn *sql.DB) *DepartmentRepository {
	return &DepartmentRepository{db: conn}
}

// Ensure DepartmentRepository implements DepartmentRepositoryInterface
var _ DepartmentRepositoryInterface = (*DepartmentRepository)(nil)

func scanDepartment(row rowScanner) (*models.Department, error) {
	var d models.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Holding, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if d.Holding == nil {
		d.Holding = models.Holding{}
	}
	return &d, nil
}

// checkMembers verifies every holder of a holding is a registered member.
func checkMembers(ctx context.Context, q dbtx, holding models.Holding) error {
	ids := billing.MemberIDs(holding)
	if len(ids) == 0 {
		return nil
	}

	rows, err := q.QueryContext(ctx, `SELECT id FROM members WHERE id = ANY($1::bigint[])`, int64Array(ids))
	if err != nil {
		return fmt.Errorf("failed to check holding members: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan member id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate member ids: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return models.NewValidationError("Holding references unknown members: " + strings.Join(missing, ", "))
	}
	return nil
}

// Create inserts a department after validating its holding.
func (r *DepartmentRepository) Create(ctx context.Context, name string, isActive bool, holding models.Holding) (*models.Department, error) {
	zap.S().Infof("📦 CreateDepartment: name=%s, holders=%d", name, len(holding))

	if err := billing.ValidateHolding(holding); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkMembers(ctx, tx, holding); err != nil {
		return nil, err
	}

	d, err := scanDepartment(tx.QueryRowContext(ctx, `
		INSERT INTO departments (name, holding, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+departmentColumns,
		name, holding, isActive))
	if err != nil {
		return nil, fmt.Errorf("failed to insert department: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit department: %w", err)
	}

	zap.S().Infof("✅ CreateDepartment: Successfully created department id=%d", d.ID)
	return d, nil
}

// List returns departments, newest first, optionally filtered by active flag and paged.
// The count is the number of matching rows regardless of paging.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentListFilter) ([]models.Department, int64, error) {
	var conditions []string
	var args []interface{}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	where := whereClause(conditions)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count departments: %w", err)
	}

	query := `SELECT ` + departmentColumns + ` FROM departments` + where + ` ORDER BY created_at DESC`
	if filter.Page != nil {
		args = append(args, filter.Page.Limit, filter.Page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch departments: %w", err)
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			zap.S().Errorf("❌ ListDepartments: Error scanning department: %v", err)
			continue
		}
		departments = append(departments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate departments: %w", err)
	}
	return departments, total, nil
}

// GetByID returns a department or ErrNotFound.
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("department %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch department: %w", err)
	}
	return d, nil
}

// Update changes the non-nil fields of a department. A new holding is validated before it is stored.
func (r *DepartmentRepository) Update(ctx context.Context, id int64, upd *models.DepartmentUpdate) (*models.Department, error) {
	zap.S().Infof("📦 UpdateDepartment: id=%d", id)

	if upd.Holding != nil {
		if err := billing.ValidateHolding(upd.Holding); err != nil {
			return nil, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanDepartment(tx.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("department %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch department: %w", err)
	}

	name, isActive, holding := current.Name, current.IsActive, current.Holding
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
	}
	if upd.IsActive != nil {
		isActive = *upd.IsActive
	}
	if upd.Holding != nil {
		if err := checkMembers(ctx, tx, upd.Holding); err != nil {
			return nil, err
		}
		holding = upd.Holding
	}

	d, err := scanDepartment(tx.QueryRowContext(ctx, `
		UPDATE departments SET name = $1, holding = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+departmentColumns,
		name, holding, isActive, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit department: %w", err)
	}

	zap.S().Infof("✅ UpdateDepartment: Successfully updated department id=%d", id)
	return d, nil
}

// Delete removes a department or returns ErrNotFound.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("department %d", id))
}
