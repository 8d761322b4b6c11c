package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a shop expense
type Expense struct {
	ID          int64           `json:"id"`
	Purpose     string          `json:"purpose"`
	By          string          `json:"by"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ExpenseRequest is the body of POST /expense and PUT /expense/{id}
// Example: {"purpose": "Paper", "by": "Karim", "amount": 2500, "description": "A3 glossy, 5 packs"}
type ExpenseRequest struct {
	Purpose     string          `json:"purpose"`
	By          string          `json:"by"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ExpenseListResponse is the body of GET /expense
type ExpenseListResponse struct {
	Expenses   []Expense  `json:"expenses"`
	Pagination Pagination `json:"pagination"`
}

// ExpenseSummary is the body of GET /expense/summary
type ExpenseSummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DateRange bounds a query by creation time; nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}
