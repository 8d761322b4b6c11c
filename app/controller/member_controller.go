package controller

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/utils"
)

const memberNotFound = "Member not found"

// MemberController handles HTTP requests for the member registry
type MemberController struct {
	repository repository.MemberRepositoryInterface
}

// NewMemberController creates a new MemberController
func NewMemberController(repo repository.MemberRepositoryInterface) *MemberController {
	return &MemberController{repository: repo}
}

// Create handles POST /member
// Example request: {"name": "Karim", "description": "Co-owner", "isActive": true}
func (c *MemberController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateMember: Received %s request to %s", r.Method, r.URL.Path)

	var req models.MemberRequest
	if !decodeJSON(w, r, "CreateMember", &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	m, err := c.repository.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateMember", memberNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, models.DataResponse{Message: "Member created successfully", Data: m})
}

// List handles GET /member?active=true
func (c *MemberController) List(w http.ResponseWriter, r *http.Request) {
	active, err := utils.ParseBool(r, "active")
	if err != nil {
		writeError(w, "ListMembers", memberNotFound, err)
		return
	}

	members, err := c.repository.List(r.Context(), active)
	if err != nil {
		writeError(w, "ListMembers", memberNotFound, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	utils.WriteJSON(w, http.StatusOK, models.MemberListResponse{
		Message: "Members retrieved successfully",
		Count:   len(members),
		Data:    members,
	})
}

// Get handles GET /member/{id}
func (c *MemberController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetMember")
	if !ok {
		return
	}
	m, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, "GetMember", memberNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.DataResponse{Message: "Member retrieved successfully", Data: m})
}

// Update handles PUT /member/{id}; absent fields are kept.
func (c *MemberController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "UpdateMember")
	if !ok {
		return
	}
	var req models.MemberRequest
	if !decodeJSON(w, r, "UpdateMember", &req) {
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name cannot be empty", nil)
		return
	}

	m, err := c.repository.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, "UpdateMember", memberNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.DataResponse{Message: "Member updated successfully", Data: m})
}

// Delete handles DELETE /member/{id}
func (c *MemberController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteMember")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteMember", memberNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Member deleted successfully"})
}
