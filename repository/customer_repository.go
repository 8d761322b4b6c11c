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

const customerColumns = `id, fullname, phone_number, address, department, is_active, created_at, updated_at`

// CustomerRepository handles database operations for customers
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(conn *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: conn}
}

// Ensure CustomerRepository implements CustomerRepositoryInterface
var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	var phone, address, department sql.NullString
	if err := row.Scan(&c.ID, &c.Fullname, &phone, &address, &department, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.PhoneNumber = phone.String
	c.Address = address.String
	c.Department = department.String
	return &c, nil
}

func (r *CustomerRepository) queryCustomers(ctx context.Context, query string, args ...interface{}) ([]models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			zap.S().Errorf("❌ Customers: Error scanning customer: %v", err)
			continue
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

// Create inserts a customer. A taken phone number yields ErrDuplicatePhone.
func (r *CustomerRepository) Create(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error) {
	zap.S().Infof("📦 CreateCustomer: fullname=%s, department=%s", req.Fullname, req.Department)

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO customers (fullname, phone_number, address, department, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + customerColumns

	c, err := scanCustomer(tx.QueryRowContext(ctx, query,
		strings.TrimSpace(req.Fullname),
		nullString(strings.TrimSpace(req.PhoneNumber)),
		nullString(strings.TrimSpace(req.Address)),
		nullString(strings.TrimSpace(req.Department)),
		isActive,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit customer: %w", err)
	}

	zap.S().Infof("✅ CreateCustomer: Successfully created customer id=%d", c.ID)
	return c, nil
}

// List returns one page of customers, newest id first, and the total count.
func (r *CustomerRepository) List(ctx context.Context, page models.PageRequest) ([]models.Customer, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	customers, err := r.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// ListActive returns every active customer, newest first.
func (r *CustomerRepository) ListActive(ctx context.Context) ([]models.Customer, error) {
	return r.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE is_active = TRUE ORDER BY created_at DESC`)
}

// GetByID returns a customer or ErrNotFound.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}
	return c, nil
}

// Update replaces every field of a customer.
func (r *CustomerRepository) Update(ctx context.Context, id int64, req *models.CustomerRequest) (*models.Customer, error) {
	patch := &models.CustomerPatch{
		Fullname:    &req.Fullname,
		PhoneNumber: &req.PhoneNumber,
		Address:     &req.Address,
		Department:  &req.Department,
		IsActive:    req.IsActive,
	}
	return r.Patch(ctx, id, patch)
}

// Patch updates the non-nil fields of a customer.
func (r *CustomerRepository) Patch(ctx context.Context, id int64, patch *models.CustomerPatch) (*models.Customer, error) {
	zap.S().Infof("📦 PatchCustomer: id=%d", id)

	var sets []string
	var args []interface{}
	argIndex := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}
	if patch.Fullname != nil {
		add("fullname", strings.TrimSpace(*patch.Fullname))
	}
	if patch.PhoneNumber != nil {
		add("phone_number", nullString(strings.TrimSpace(*patch.PhoneNumber)))
	}
	if patch.Address != nil {
		add("address", nullString(strings.TrimSpace(*patch.Address)))
	}
	if patch.Department != nil {
		add("department", nullString(strings.TrimSpace(*patch.Department)))
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE customers SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argIndex, customerColumns)
	args = append(args, id)

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	zap.S().Infof("✅ PatchCustomer: Successfully updated customer id=%d", id)
	return c, nil
}

// Delete removes a customer or returns ErrNotFound.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("customer %d", id))
}

// Search matches the term case-insensitively against name, phone, address and department.
func (r *CustomerRepository) Search(ctx context.Context, term string) ([]models.Customer, error) {
	zap.S().Infof("📦 SearchCustomers: term=%q", term)
	return r.queryCustomers(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE fullname ILIKE $1 OR phone_number ILIKE $1 OR address ILIKE $1 OR department ILIKE $1
		ORDER BY created_at DESC`,
		"%"+escapeLike(term)+"%")
}

// ListByDepartment returns the customers of a department ordered by name.
func (r *CustomerRepository) ListByDepartment(ctx context.Context, department string) ([]models.Customer, error) {
	return r.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE department = $1 ORDER BY fullname ASC`,
		department)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
