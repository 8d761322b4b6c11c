package controller

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/utils"
)

const customerNotFound = "Customer not found"

// CustomerController handles HTTP requests for customers
type CustomerController struct {
	repository repository.CustomerRepositoryInterface
}

// NewCustomerController creates a new CustomerController
func NewCustomerController(repo repository.CustomerRepositoryInterface) *CustomerController {
	return &CustomerController{repository: repo}
}

// Create handles POST /customer
// Example request:
// {"fullname": "Ahmad Rahimi", "phoneNumber": "0700123456", "address": "Kabul", "department": "Printing", "isActive": true}
// Example response (201):
// {"success": true, "message": "Customer created successfully", "data": {"id": 1, "fullname": "Ahmad Rahimi", ...}}
func (c *CustomerController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateCustomer: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CustomerRequest
	if !decodeJSON(w, r, "CreateCustomer", &req) {
		return
	}
	if strings.TrimSpace(req.Fullname) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Full name is required", nil)
		return
	}

	customer, err := c.repository.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateCustomer", customerNotFound, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.CustomerCreatedResponse{
		Success: true,
		Message: "Customer created successfully",
		Data:    customer,
	})
}

// List handles GET /customer?page=1&limit=10
func (c *CustomerController) List(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r, 10, 100)

	customers, total, err := c.repository.List(r.Context(), page)
	if err != nil {
		writeError(w, "ListCustomers", customerNotFound, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}

	utils.WriteJSON(w, http.StatusOK, models.CustomerListResponse{
		Customers:  customers,
		Pagination: models.NewPagination(total, page),
	})
}

// ListActive handles GET /customer/active
func (c *CustomerController) ListActive(w http.ResponseWriter, r *http.Request) {
	customers, err := c.repository.ListActive(r.Context())
	if err != nil {
		writeError(w, "ListActiveCustomers", customerNotFound, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	utils.WriteJSON(w, http.StatusOK, models.ActiveCustomersResponse{Customers: customers, Total: len(customers)})
}

// Get handles GET /customer/{id}
func (c *CustomerController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetCustomer")
	if !ok {
		return
	}
	customer, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, "GetCustomer", customerNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, customer)
}

// Update handles PUT /customer/{id}; every field is replaced.
func (c *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 UpdateCustomer: Received %s request to %s", r.Method, r.URL.Path)

	id, ok := pathID(w, r, "UpdateCustomer")
	if !ok {
		return
	}
	var req models.CustomerRequest
	if !decodeJSON(w, r, "UpdateCustomer", &req) {
		return
	}
	if strings.TrimSpace(req.Fullname) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Full name is required", nil)
		return
	}

	customer, err := c.repository.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, "UpdateCustomer", customerNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, customer)
}

// Patch handles PATCH /customer/{id}; only the fields present are changed.
func (c *CustomerController) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "PatchCustomer")
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if !decodeJSON(w, r, "PatchCustomer", &patch) {
		return
	}
	if patch.Fullname != nil && strings.TrimSpace(*patch.Fullname) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Full name cannot be empty", nil)
		return
	}

	customer, err := c.repository.Patch(r.Context(), id, &patch)
	if err != nil {
		writeError(w, "PatchCustomer", customerNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, customer)
}

// UpdateAddress handles PATCH /customer/{id}/address
func (c *CustomerController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "UpdateCustomerAddress")
	if !ok {
		return
	}
	var req models.CustomerAddressRequest
	if !decodeJSON(w, r, "UpdateCustomerAddress", &req) {
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		utils.WriteError(w, http.StatusBadRequest, "Address is required", nil)
		return
	}

	customer, err := c.repository.Patch(r.Context(), id, &models.CustomerPatch{Address: &address})
	if err != nil {
		writeError(w, "UpdateCustomerAddress", customerNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.CustomerUpdatedResponse{
		Success:  true,
		Message:  "Address updated successfully",
		Customer: customer,
	})
}

// UpdateDepartment handles PATCH /customer/{id}/department
func (c *CustomerController) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "UpdateCustomerDepartment")
	if !ok {
		return
	}
	var req models.CustomerDepartmentRequest
	if !decodeJSON(w, r, "UpdateCustomerDepartment", &req) {
		return
	}
	department := strings.TrimSpace(req.Department)

	customer, err := c.repository.Patch(r.Context(), id, &models.CustomerPatch{Department: &department})
	if err != nil {
		writeError(w, "UpdateCustomerDepartment", customerNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.CustomerUpdatedResponse{
		Success:  true,
		Message:  "Department updated successfully",
		Customer: customer,
	})
}

// Delete handles DELETE /customer/{id}
func (c *CustomerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteCustomer")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteCustomer", customerNotFound, err)
		return
	}
	zap.S().Infof("✅ DeleteCustomer: Successfully deleted customer id=%d", id)
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Customer deleted successfully"})
}

// Search handles GET /customer/search?q=term
func (c *CustomerController) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		utils.WriteError(w, http.StatusBadRequest, "Search term is required", nil)
		return
	}

	customers, err := c.repository.Search(r.Context(), term)
	if err != nil {
		writeError(w, "SearchCustomers", customerNotFound, err)
		return
	}
	if len(customers) == 0 {
		utils.WriteError(w, http.StatusNotFound, "No results found", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, customers)
}

// ListByDepartment handles GET /customer/department/{department}
func (c *CustomerController) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	department := strings.TrimSpace(r.PathValue("department"))
	if department == "" {
		utils.WriteError(w, http.StatusBadRequest, "Department is required", nil)
		return
	}

	customers, err := c.repository.ListByDepartment(r.Context(), department)
	if err != nil {
		writeError(w, "ListCustomersByDepartment", customerNotFound, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	utils.WriteJSON(w, http.StatusOK, models.DepartmentCustomersResponse{
		Customers:  customers,
		Total:      len(customers),
		Department: department,
	})
}
