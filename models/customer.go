package models

import "time"

// Customer represents a customer record
type Customer struct {
	ID          int64     `json:"id"`
	Fullname    string    `json:"fullname"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	Department  string    `json:"department,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CustomerRequest is the body of POST /customer and PUT /customer/{id}
// Example: {"fullname": "Ahmad Rahimi", "phoneNumber": "0700123456", "address": "Kabul, Shar-e-Naw", "department": "Printing", "isActive": true}
type CustomerRequest struct {
	Fullname    string `json:"fullname"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Department  string `json:"department"`
	IsActive    *bool  `json:"isActive"`
}

// CustomerPatch is the body of PATCH /customer/{id}; nil fields are left unchanged.
type CustomerPatch struct {
	Fullname    *string `json:"fullname"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	Department  *string `json:"department"`
	IsActive    *bool   `json:"isActive"`
}

// CustomerAddressRequest is the body of PATCH /customer/{id}/address
type CustomerAddressRequest struct {
	Address string `json:"address"`
}

// CustomerDepartmentRequest is the body of PATCH /customer/{id}/department
type CustomerDepartmentRequest struct {
	Department string `json:"department"`
}

// CustomerListResponse is the body of GET /customer
type CustomerListResponse struct {
	Customers  []Customer `json:"customers"`
	Pagination Pagination `json:"pagination"`
}

// CustomerCreatedResponse is the body of POST /customer
type CustomerCreatedResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *Customer `json:"data"`
}

// CustomerUpdatedResponse is the body of the address and department endpoints
type CustomerUpdatedResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Customer *Customer `json:"customer"`
}

// ActiveCustomersResponse is the body of GET /customer/active
type ActiveCustomersResponse struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}

// DepartmentCustomersResponse is the body of GET /customer/department/{department}
type DepartmentCustomersResponse struct {
	Customers  []Customer `json:"customers"`
	Total      int        `json:"total"`
	Department string     `json:"department"`
}
