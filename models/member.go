package models

import "time"

// Member represents an entry of the member registry
type Member struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MemberRequest is the body of POST /member and PUT /member/{id}
// Example: {"name": "Karim", "description": "Co-owner", "isActive": true}
type MemberRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// MemberListResponse is the body of GET /member
type MemberListResponse struct {
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Data    []Member `json:"data"`
}
