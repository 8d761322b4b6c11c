package models

import (
	"math"

	"github.com/shopspring/decimal"
)

func init() {
	// The admin console reads money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Pagination is the page block returned by paginated list endpoints.
type Pagination struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
}

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// NewPagination builds the page block for total rows split into pages of p.Limit.
func NewPagination(total int64, p PageRequest) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Pagination{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: p.Page,
		PerPage:     p.Limit,
	}
}

// MessageResponse is the body of delete and other acknowledgement endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ValidationError reports input that breaks a business rule. Handlers answer it with 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
