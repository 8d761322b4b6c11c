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

const expenseColumns = `id, purpose, spent_by, amount, description, created_at, updated_at`

// ExpenseRepository handles database operations for expenses and their ledger mirror
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(conn *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: conn}
}

// Ensure ExpenseRepository implements ExpenseRepositoryInterface
var _ ExpenseRepositoryInterface = (*ExpenseRepository)(nil)

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	var description sql.NullString
	if err := row.Scan(&e.ID, &e.Purpose, &e.By, &e.Amount, &description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Description = description.String
	return &e, nil
}

func validateExpense(req *models.ExpenseRequest) error {
	req.Purpose = strings.TrimSpace(req.Purpose)
	req.By = strings.TrimSpace(req.By)
	req.Description = strings.TrimSpace(req.Description)
	req.Amount = req.Amount.Round(2)
	switch {
	case req.Purpose == "":
		return models.NewValidationError("Purpose is required")
	case req.By == "":
		return models.NewValidationError("By is required")
	case !req.Amount.IsPositive():
		return models.NewValidationError("Amount must be greater than 0")
	}
	return nil
}

func expenseLedgerEntry(e *models.Expense) ledgerEntry {
	return ledgerEntry{
		Type:       models.TransactionExpense,
		Source:     models.SourceExpense,
		SourceID:   e.ID,
		OccurredAt: e.CreatedAt,
		Amount:     e.Amount,
		Category:   e.Purpose,
		Notes:      "Spent by " + e.By,
	}
}

// Create stores an expense and its ledger row in one transaction.
func (r *ExpenseRepository) Create(ctx context.Context, req *models.ExpenseRequest) (*models.Expense, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}

	zap.S().Infof("💰 CreateExpense: purpose=%s, by=%s, amount=%s", req.Purpose, req.By, req.Amount)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := scanExpense(tx.QueryRowContext(ctx, `
		INSERT INTO expenses (purpose, spent_by, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+expenseColumns,
		req.Purpose, req.By, req.Amount, nullString(req.Description)))
	if err != nil {
		zap.S().Errorf("❌ CreateExpense: Error inserting expense: %v", err)
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := recordTransaction(ctx, tx, expenseLedgerEntry(e)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	zap.S().Infof("✅ CreateExpense: Successfully created expense id=%d", e.ID)
	return e, nil
}

func (r *ExpenseRepository) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			zap.S().Errorf("❌ Expenses: Error scanning expense: %v", err)
			continue
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// List returns one page of expenses, newest first, and the total count.
func (r *ExpenseRepository) List(ctx context.Context, page models.PageRequest) ([]models.Expense, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	expenses, err := r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListRange returns every expense created inside the range, oldest first.
func (r *ExpenseRepository) ListRange(ctx context.Context, rng models.DateRange) ([]models.Expense, error) {
	conditions, args := appendDateRange(nil, nil, "created_at", rng)
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses`+whereClause(conditions)+` ORDER BY created_at ASC, id ASC`,
		args...)
}

// Summary counts and sums the expenses inside the range.
func (r *ExpenseRepository) Summary(ctx context.Context, rng models.DateRange) (*models.ExpenseSummary, error) {
	conditions, args := appendDateRange(nil, nil, "created_at", rng)

	var s models.ExpenseSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM expenses`+whereClause(conditions), args...).
		Scan(&s.Count, &s.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}
	return &s, nil
}

// GetByID returns an expense or ErrNotFound.
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expense: %w", err)
	}
	return e, nil
}

// Update replaces an expense and rewrites its ledger row.
func (r *ExpenseRepository) Update(ctx context.Context, id int64, req *models.ExpenseRequest) (*models.Expense, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}

	zap.S().Infof("🔄 UpdateExpense: id=%d, amount=%s", id, req.Amount)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := scanExpense(tx.QueryRowContext(ctx, `
		UPDATE expenses SET purpose = $1, spent_by = $2, amount = $3, description = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+expenseColumns,
		req.Purpose, req.By, req.Amount, nullString(req.Description), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	entry := expenseLedgerEntry(e)
	res, err := tx.ExecContext(ctx, `
		UPDATE finance_transactions SET amount = $1, category = $2, notes = $3
		WHERE source = $4 AND source_id = $5`,
		entry.Amount, nullString(entry.Category), nullString(entry.Notes), models.SourceExpense, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		zap.S().Warnf("⚠️ UpdateExpense: no ledger row for expense id=%d, recreating", id)
		if err := recordTransaction(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	zap.S().Infof("✅ UpdateExpense: Successfully updated expense id=%d", id)
	return e, nil
}

// Delete removes an expense together with its ledger row.
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM finance_transactions WHERE source = $1 AND source_id = $2`, models.SourceExpense, id); err != nil {
		return fmt.Errorf("failed to delete expense transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if err := expectOneRow(res, fmt.Sprintf("expense %d", id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense delete: %w", err)
	}

	zap.S().Infof("✅ DeleteExpense: Successfully deleted expense id=%d", id)
	return nil
}
