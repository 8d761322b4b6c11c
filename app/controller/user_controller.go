package controller

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"print-shop-mis/app/middleware"
	"print-shop-mis/config"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/service"
	"print-shop-mis/utils"
)

const userNotFound = "User not found"

// AuthController handles signin, signout and the current user
type AuthController struct {
	auth    service.AuthServiceInterface
	session config.SessionConfig
}

// NewAuthController creates a new AuthController
func NewAuthController(auth service.AuthServiceInterface, session config.SessionConfig) *AuthController {
	return &AuthController{auth: auth, session: session}
}

// Signin handles POST /auth/signin
// Example request: {"email": "sara@example.com", "password": "secret1"}
// Example response: {"token": "6f1c...", "user": {"id": 1, "fullname": "Sara", "role": "admin", ...}}
func (c *AuthController) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.SigninRequest
	if !decodeJSON(w, r, "Signin", &req) {
		return
	}

	resp, session, err := c.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "Signin", userNotFound, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.session.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   c.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Signout handles POST /auth/signout
func (c *AuthController) Signout(w http.ResponseWriter, r *http.Request) {
	if err := c.auth.Signout(r.Context(), middleware.TokenFrom(r, c.session.CookieName)); err != nil {
		writeError(w, "Signout", userNotFound, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Signed out"})
}

// Me handles GET /auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

// UserController handles HTTP requests for console accounts
type UserController struct {
	auth       service.AuthServiceInterface
	repository repository.UserRepositoryInterface
}

// NewUserController creates a new UserController
func NewUserController(auth service.AuthServiceInterface, repo repository.UserRepositoryInterface) *UserController {
	return &UserController{auth: auth, repository: repo}
}

// List handles GET /users
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.repository.List(r.Context())
	if err != nil {
		writeError(w, "ListUsers", userNotFound, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

// Create handles POST /users (admin only)
// Example request: {"fullname": "Sara", "email": "sara@example.com", "password": "secret1", "role": "reception"}
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateUser: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CreateUserRequest
	if !decodeJSON(w, r, "CreateUser", &req) {
		return
	}
	u, err := c.auth.CreateUser(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateUser", userNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, u)
}

// Get handles GET /users/{id}
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetUser")
	if !ok {
		return
	}
	u, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, "GetUser", userNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PATCH /users/{id}
// Example request: {"fullname": "Sara K.", "currentPassword": "secret1", "newPassword": "secret2"}
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "UpdateUser")
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, "UpdateUser", &req) {
		return
	}

	u, err := c.auth.UpdateProfile(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, "UpdateUser", userNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

// SetStatus handles PATCH /users/{id}/status (admin only)
// Example request: {"isActive": false}
func (c *UserController) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "SetUserStatus")
	if !ok {
		return
	}
	var req models.UserStatusRequest
	if !decodeJSON(w, r, "SetUserStatus", &req) {
		return
	}
	if req.IsActive == nil {
		utils.WriteError(w, http.StatusBadRequest, "isActive is required", nil)
		return
	}
	if actor.ID == id && !*req.IsActive {
		utils.WriteError(w, http.StatusBadRequest, "You cannot deactivate your own account", nil)
		return
	}

	u, err := c.repository.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeError(w, "SetUserStatus", userNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /users/{id} (admin only)
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "DeleteUser")
	if !ok {
		return
	}
	if err := c.auth.Delete(r.Context(), actor, id); err != nil {
		writeError(w, "DeleteUser", userNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
}
