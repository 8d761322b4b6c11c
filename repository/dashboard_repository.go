package repository

import (
	"context"
	"database/sql"
	"fmt"

	"print-shop-mis/models"
)

// DashboardRepository aggregates orders, expenses and the ledger
type DashboardRepository struct {
	db *sql.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(conn *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: conn}
}

// Ensure DashboardRepository implements DashboardRepositoryInterface
var _ DashboardRepositoryInterface = (*DashboardRepository)(nil)

// Summary totals activity inside the range. Orders and expenses are bounded by created_at,
// ledger rows by occurred_at.
func (r *DashboardRepository) Summary(ctx context.Context, rng models.DateRange) (*models.DashboardSummary, error) {
	var s models.DashboardSummary

	conditions, args := appendDateRange(nil, nil, "created_at", rng)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_delivered),
			COALESCE(SUM(total), 0),
			COALESCE(SUM(recip), 0),
			COALESCE(SUM(remained), 0)
		FROM orders`+whereClause(conditions), args...).
		Scan(&s.Orders, &s.Delivered, &s.Billed, &s.Received, &s.Outstanding)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses`+whereClause(conditions), args...).
		Scan(&s.Expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}

	ledgerConditions, ledgerArgs := appendDateRange(nil, nil, "occurred_at", rng)
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM finance_transactions`+whereClause(ledgerConditions), ledgerArgs...).
		Scan(&s.LedgerIncome, &s.LedgerExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ledger: %w", err)
	}

	s.Net = s.LedgerIncome.Sub(s.LedgerExpense)
	return &s, nil
}
