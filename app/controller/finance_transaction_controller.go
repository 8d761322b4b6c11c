package controller

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/utils"
)

// FinanceTransactionController handles HTTP requests for finance transactions
type FinanceTransactionController struct {
	repository repository.FinanceTransactionRepositoryInterface
}

// NewFinanceTransactionController creates a new FinanceTransactionController
func NewFinanceTransactionController(repo repository.FinanceTransactionRepositoryInterface) *FinanceTransactionController {
	return &FinanceTransactionController{
		repository: repo,
	}
}

// Create handles POST /finance/transactions
// Example request:
// POST /finance/transactions
//
//	{
//	  "type": "expense",
//	  "source": "manual",
//	  "occurredAt": "2026-01-04T10:30:00Z",
//	  "amount": 5000,
//	  "category": "rent",
//	  "notes": "Shop rent for January"
//	}
//
// Example response:
//
//	{
//	  "id": 1,
//	  "type": "expense",
//	  "source": "manual",
//	  "sourceId": 0,
//	  "occurredAt": "2026-01-04T10:30:00Z",
//	  "amount": 5000,
//	  "category": "rent",
//	  "notes": "Shop rent for January",
//	  "createdAt": "2026-01-04T10:31:12Z"
//	}
func (c *FinanceTransactionController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateFinanceTransaction: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CreateFinanceTransactionRequest
	if !decodeJSON(w, r, "CreateFinanceTransaction", &req) {
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		utils.WriteError(w, http.StatusBadRequest, "source is required", nil)
		return
	}

	transaction, err := c.repository.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateFinanceTransaction", "Transaction not found", err)
		return
	}

	zap.S().Infof("✅ CreateFinanceTransaction: Successfully created transaction id=%d", transaction.ID)
	utils.WriteJSON(w, http.StatusCreated, transaction)
}

// List handles GET /finance/transactions?type=income&from=2026-03-01&to=2026-03-31
func (c *FinanceTransactionController) List(w http.ResponseWriter, r *http.Request) {
	txType := strings.TrimSpace(r.URL.Query().Get("type"))
	if txType != "" && txType != models.TransactionIncome && txType != models.TransactionExpense {
		utils.WriteError(w, http.StatusBadRequest, "type must be 'income' or 'expense'", nil)
		return
	}
	rng, err := utils.ParseDateRange(r)
	if err != nil {
		writeError(w, "ListFinanceTransactions", "Transaction not found", err)
		return
	}

	transactions, err := c.repository.List(r.Context(), models.FinanceTransactionFilter{Type: txType, Range: rng})
	if err != nil {
		writeError(w, "ListFinanceTransactions", "Transaction not found", err)
		return
	}
	if transactions == nil {
		transactions = []models.FinanceTransaction{}
	}
	utils.WriteJSON(w, http.StatusOK, transactions)
}
