package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction sources
const (
	SourceOrder           = "order"
	SourceOrderAdjustment = "order_adjustment"
	SourceExpense         = "expense"
	SourceManual          = "manual"
)

// FinanceTransaction represents a ledger entry
type FinanceTransaction struct {
	ID         int64           `json:"id"`
	Type       string          `json:"type"` // 'income' or 'expense'
	Source     string          `json:"source"`
	SourceID   int64           `json:"sourceId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CreateFinanceTransactionRequest represents the request body for creating a finance transaction
// Example: {
//   "type": "expense",
//   "source": "manual",
//   "sourceId": 0,
//   "occurredAt": "2026-01-04T10:30:00Z",
//   "amount": 5000,
//   "category": "rent",
//   "notes": "Shop rent for January"
// }
type CreateFinanceTransactionRequest struct {
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	SourceID   int64           `json:"sourceId"`
	OccurredAt string          `json:"occurredAt,omitempty"` // RFC3339, defaults to now
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// FinanceTransactionFilter narrows GET /finance/transactions
type FinanceTransactionFilter struct {
	Type  string
	Range DateRange
}

// DashboardSummary is the body of GET /dashboard/summary
type DashboardSummary struct {
	Orders        int64           `json:"orders"`
	Delivered     int64           `json:"delivered"`
	Billed        decimal.Decimal `json:"billed"`
	Received      decimal.Decimal `json:"received"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Expenses      decimal.Decimal `json:"expenses"`
	LedgerIncome  decimal.Decimal `json:"ledgerIncome"`
	LedgerExpense decimal.Decimal `json:"ledgerExpense"`
	Net           decimal.Decimal `json:"net"`
}
