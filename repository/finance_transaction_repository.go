package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-shop-mis/models"
)

const financeTransactionColumns = `id, type, source, source_id, occurred_at, amount, category, notes, created_at`

// FinanceTransactionRepository handles database operations for finance transactions
type FinanceTransactionRepository struct {
	db *sql.DB
}

// NewFinanceTransactionRepository creates a new FinanceTransactionRepository
func NewFinanceTransactionRepository(conn *sql.DB) *FinanceTransactionRepository {
	return &FinanceTransactionRepository{db: conn}
}

// Ensure FinanceTransactionRepository implements FinanceTransactionRepositoryInterface
var _ FinanceTransactionRepositoryInterface = (*FinanceTransactionRepository)(nil)

func scanFinanceTransaction(row rowScanner) (*models.FinanceTransaction, error) {
	var t models.FinanceTransaction
	var category, notes sql.NullString
	if err := row.Scan(&t.ID, &t.Type, &t.Source, &t.SourceID, &t.OccurredAt, &t.Amount, &category, &notes, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Category = category.String
	t.Notes = notes.String
	return &t, nil
}

// ledgerEntry is a row written to finance_transactions by the order and expense flows.
type ledgerEntry struct {
	Type       string
	Source     string
	SourceID   int64
	OccurredAt time.Time
	Amount     decimal.Decimal
	Category   string
	Notes      string
}

// recordTransaction appends a ledger row inside the caller's transaction.
// Non-positive amounts are skipped.
func recordTransaction(ctx context.Context, q dbtx, e ledgerEntry) error {
	if !e.Amount.IsPositive() {
		return nil
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	zap.S().Infof("💰 RecordTransaction: type=%s, source=%s, source_id=%d, amount=%s", e.Type, e.Source, e.SourceID, e.Amount)

	_, err := q.ExecContext(ctx, `
		INSERT INTO finance_transactions (type, source, source_id, occurred_at, amount, category, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.Type, e.Source, e.SourceID, e.OccurredAt, e.Amount, nullString(e.Category), nullString(e.Notes))
	if err != nil {
		return fmt.Errorf("failed to record finance transaction: %w", err)
	}
	return nil
}

// Create creates a new finance transaction
func (r *FinanceTransactionRepository) Create(ctx context.Context, req *models.CreateFinanceTransactionRequest) (*models.FinanceTransaction, error) {
	zap.S().Infof("💰 CreateFinanceTransaction: type=%s, source=%s, amount=%s", req.Type, req.Source, req.Amount)

	if req.Type != models.TransactionIncome && req.Type != models.TransactionExpense {
		zap.S().Errorf("❌ CreateFinanceTransaction: Invalid type: %s", req.Type)
		return nil, models.NewValidationError("type must be 'income' or 'expense'")
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		zap.S().Errorf("❌ CreateFinanceTransaction: Invalid amount: %s", req.Amount)
		return nil, models.NewValidationError("amount must be greater than 0")
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return nil, models.NewValidationError("source is required")
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			zap.S().Errorf("❌ CreateFinanceTransaction: Invalid occurredAt format: %s", req.OccurredAt)
			return nil, models.NewValidationError("invalid occurredAt format, use RFC3339 (e.g., 2006-01-02T15:04:05Z07:00)")
		}
		occurredAt = parsed
	}

	t, err := scanFinanceTransaction(r.db.QueryRowContext(ctx, `
		INSERT INTO finance_transactions (type, source, source_id, occurred_at, amount, category, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+financeTransactionColumns,
		req.Type,
		source,
		req.SourceID,
		occurredAt,
		amount,
		nullString(req.Category),
		nullString(req.Notes),
	))
	if err != nil {
		zap.S().Errorf("❌ CreateFinanceTransaction: Error inserting transaction: %v", err)
		return nil, fmt.Errorf("failed to insert finance transaction: %w", err)
	}

	zap.S().Infof("✅ CreateFinanceTransaction: Successfully created transaction id=%d", t.ID)
	return t, nil
}

// List returns ledger rows by occurrence time, newest first.
func (r *FinanceTransactionRepository) List(ctx context.Context, filter models.FinanceTransactionFilter) ([]models.FinanceTransaction, error) {
	var conditions []string
	var args []interface{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	conditions, args = appendDateRange(conditions, args, "occurred_at", filter.Range)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+financeTransactionColumns+` FROM finance_transactions`+whereClause(conditions)+` ORDER BY occurred_at DESC, id DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch finance transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.FinanceTransaction{}
	for rows.Next() {
		t, err := scanFinanceTransaction(rows)
		if err != nil {
			zap.S().Errorf("❌ ListFinanceTransactions: Error scanning transaction: %v", err)
			continue
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finance transactions: %w", err)
	}
	return transactions, nil
}
