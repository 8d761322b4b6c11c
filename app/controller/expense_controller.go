package controller

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"print-shop-mis/metrics"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/utils"
)

const expenseNotFound = "Expense not found"

// ExpenseController handles HTTP requests for expenses
type ExpenseController struct {
	repository repository.ExpenseRepositoryInterface
}

// NewExpenseController creates a new ExpenseController
func NewExpenseController(repo repository.ExpenseRepositoryInterface) *ExpenseController {
	return &ExpenseController{repository: repo}
}

// Create handles POST /expense
// Example request:
// {"purpose": "Paper", "by": "Karim", "amount": 2500, "description": "A3 glossy, 5 packs"}
func (c *ExpenseController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateExpense: Received %s request to %s", r.Method, r.URL.Path)

	var req models.ExpenseRequest
	if !decodeJSON(w, r, "CreateExpense", &req) {
		return
	}

	e, err := c.repository.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateExpense", expenseNotFound, err)
		return
	}
	metrics.ExpenseRecorded()
	utils.WriteJSON(w, http.StatusCreated, models.DataResponse{Message: "Expense created successfully", Data: e})
}

// List handles GET /expense?page=1&limit=10
func (c *ExpenseController) List(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r, 10, 100)

	expenses, total, err := c.repository.List(r.Context(), page)
	if err != nil {
		writeError(w, "ListExpenses", expenseNotFound, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	utils.WriteJSON(w, http.StatusOK, models.ExpenseListResponse{
		Expenses:   expenses,
		Pagination: models.NewPagination(total, page),
	})
}

// Get handles GET /expense/{id}
func (c *ExpenseController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetExpense")
	if !ok {
		return
	}
	e, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, "GetExpense", expenseNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

// Update handles PUT /expense/{id} (admin only)
func (c *ExpenseController) Update(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 UpdateExpense: Received %s request to %s", r.Method, r.URL.Path)

	id, ok := pathID(w, r, "UpdateExpense")
	if !ok {
		return
	}
	var req models.ExpenseRequest
	if !decodeJSON(w, r, "UpdateExpense", &req) {
		return
	}

	e, err := c.repository.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, "UpdateExpense", expenseNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.DataResponse{Message: "Expense updated successfully", Data: e})
}

// Delete handles DELETE /expense/{id} (admin only)
func (c *ExpenseController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteExpense")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteExpense", expenseNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Expense deleted successfully"})
}

// Summary handles GET /expense/summary?from=2026-03-01&to=2026-03-31
func (c *ExpenseController) Summary(w http.ResponseWriter, r *http.Request) {
	rng, err := utils.ParseDateRange(r)
	if err != nil {
		writeError(w, "ExpenseSummary", expenseNotFound, err)
		return
	}
	summary, err := c.repository.Summary(r.Context(), rng)
	if err != nil {
		writeError(w, "ExpenseSummary", expenseNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

var expenseReportHeader = []string{"id", "purpose", "by", "amount", "description", "created_at"}

// Report handles GET /expense/report?from=2026-03-01&to=2026-03-31 and streams a CSV file.
// to is inclusive up to the end of that day.
func (c *ExpenseController) Report(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 ExpenseReport: Received %s request to %s", r.Method, r.URL.Path)

	rng, err := utils.ParseDateRange(r)
	if err != nil {
		writeError(w, "ExpenseReport", expenseNotFound, err)
		return
	}
	expenses, err := c.repository.ListRange(r.Context(), rng)
	if err != nil {
		writeError(w, "ExpenseReport", expenseNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFileName(rng)))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(expenseReportHeader)
	for _, e := range expenses {
		_ = cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Purpose,
			e.By,
			e.Amount.StringFixed(2),
			e.Description,
			e.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		zap.S().Errorf("❌ ExpenseReport: Error writing CSV: %v", err)
		return
	}
	zap.S().Infof("✅ ExpenseReport: %d rows written", len(expenses))
}

func reportFileName(rng models.DateRange) string {
	from, to := "start", "now"
	if rng.From != nil {
		from = rng.From.Format("20060102")
	}
	if rng.To != nil {
		to = rng.To.Format("20060102")
	}
	return fmt.Sprintf("expenses-%s-%s.csv", from, to)
}
