package models

import "time"

// User roles
const (
	RoleAdmin     = "admin"
	RoleReception = "reception"
)

// User is a console account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CreateUserRequest is the body of POST /users
// Example: {"fullname": "Sara", "email": "sara@example.com", "password": "secret1", "role": "reception"}
type CreateUserRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateProfileRequest is the body of PATCH /users/{id}
// Example: {"fullname": "Sara K.", "email": "sara@example.com", "currentPassword": "secret1", "newPassword": "secret2"}
type UpdateProfileRequest struct {
	Fullname        *string `json:"fullname"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// UserStatusRequest is the body of PATCH /users/{id}/status
type UserStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// SigninRequest is the body of POST /auth/signin
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse is the body returned after a successful signin
type SigninResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Session is the server-side state behind a session token
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
