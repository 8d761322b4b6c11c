package controller

import (
	"net/http"

	"print-shop-mis/repository"
	"print-shop-mis/utils"
)

// DashboardController serves aggregate figures for the console home page
type DashboardController struct {
	repository repository.DashboardRepositoryInterface
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(repo repository.DashboardRepositoryInterface) *DashboardController {
	return &DashboardController{repository: repo}
}

// Summary handles GET /dashboard/summary?from=2026-03-01&to=2026-03-31
func (c *DashboardController) Summary(w http.ResponseWriter, r *http.Request) {
	rng, err := utils.ParseDateRange(r)
	if err != nil {
		writeError(w, "DashboardSummary", "Not found", err)
		return
	}
	summary, err := c.repository.Summary(r.Context(), rng)
	if err != nil {
		writeError(w, "DashboardSummary", "Not found", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}
