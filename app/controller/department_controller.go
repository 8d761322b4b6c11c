package controller

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-shop-mis/billing"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/utils"
)

const departmentNotFound = "Department not found"

// DepartmentController handles HTTP requests for departments and their holdings
type DepartmentController struct {
	repository repository.DepartmentRepositoryInterface
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(repo repository.DepartmentRepositoryInterface) *DepartmentController {
	return &DepartmentController{repository: repo}
}

// Create handles POST /department
// Example request:
// {"name": "Offset", "isActive": true, "holding": {"1": 60, "2": 40}}
// Example response (201):
// {"message": "Department created successfully", "data": {"id": 3, "name": "Offset", "holding": {"1": 60, "2": 40}, ...}}
func (c *DepartmentController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateDepartment: Received %s request to %s", r.Method, r.URL.Path)

	var req models.DepartmentRequest
	if !decodeJSON(w, r, "CreateDepartment", &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	holding, err := billing.ParseHolding(req.Holding)
	if err != nil {
		writeError(w, "CreateDepartment", departmentNotFound, err)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	d, err := c.repository.Create(r.Context(), strings.TrimSpace(*req.Name), isActive, holding)
	if err != nil {
		writeError(w, "CreateDepartment", departmentNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, models.DataResponse{Message: "Department created successfully", Data: d})
}

// List handles GET /department?active=true&page=1&limit=10
// Paging applies only when page is given.
func (c *DepartmentController) List(w http.ResponseWriter, r *http.Request) {
	active, err := utils.ParseBool(r, "active")
	if err != nil {
		writeError(w, "ListDepartments", departmentNotFound, err)
		return
	}
	filter := models.DepartmentListFilter{Active: active}
	if r.URL.Query().Has("page") {
		page := utils.ParsePage(r, 10, 100)
		filter.Page = &page
	}

	departments, total, err := c.repository.List(r.Context(), filter)
	if err != nil {
		writeError(w, "ListDepartments", departmentNotFound, err)
		return
	}
	if departments == nil {
		departments = []models.Department{}
	}

	resp := models.DepartmentListResponse{
		Message: "Departments retrieved successfully",
		Count:   len(departments),
		Data:    departments,
	}
	if filter.Page != nil {
		p := models.NewPagination(total, *filter.Page)
		resp.CurrentPage, resp.TotalPages, resp.TotalItems = p.CurrentPage, p.TotalPages, p.TotalItems
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /department/{id}
func (c *DepartmentController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetDepartment")
	if !ok {
		return
	}
	d, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, "GetDepartment", departmentNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.DataResponse{Message: "Department retrieved successfully", Data: d})
}

// Update handles PUT /department/{id}. Absent fields keep their stored value.
func (c *DepartmentController) Update(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 UpdateDepartment: Received %s request to %s", r.Method, r.URL.Path)

	id, ok := pathID(w, r, "UpdateDepartment")
	if !ok {
		return
	}
	var req models.DepartmentRequest
	if !decodeJSON(w, r, "UpdateDepartment", &req) {
		return
	}

	upd := &models.DepartmentUpdate{Name: req.Name, IsActive: req.IsActive}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name cannot be empty", nil)
		return
	}
	if len(req.Holding) > 0 {
		holding, err := billing.ParseHolding(req.Holding)
		if err != nil {
			writeError(w, "UpdateDepartment", departmentNotFound, err)
			return
		}
		upd.Holding = holding
	}

	d, err := c.repository.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, "UpdateDepartment", departmentNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.DataResponse{Message: "Department updated successfully", Data: d})
}

// Delete handles DELETE /department/{id}
func (c *DepartmentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteDepartment")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteDepartment", departmentNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Department deleted successfully"})
}

// Distribution handles GET /department/{id}/distribution?amount=1000
// Example response:
// {"departmentId": 3, "amount": 1000, "shares": [{"memberId": 1, "percentage": 60, "amount": 600}], "allocated": 600, "unallocated": 400}
func (c *DepartmentController) Distribution(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DepartmentDistribution")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.URL.Query().Get("amount")))
	if err != nil || !amount.IsPositive() {
		utils.WriteError(w, http.StatusBadRequest, "Amount must be a positive number", nil)
		return
	}

	d, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, "DepartmentDistribution", departmentNotFound, err)
		return
	}

	shares, allocated, unallocated := billing.Distribute(d.Holding, amount)
	utils.WriteJSON(w, http.StatusOK, models.Distribution{
		DepartmentID: d.ID,
		Amount:       amount,
		Shares:       shares,
		Allocated:    allocated,
		Unallocated:  unallocated,
	})
}
