package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Holding maps a member id to that member's percentage share of a department's revenue.
// It is stored as a JSONB object: {"1": 20, "2": 80}.
type Holding map[int64]decimal.Decimal

// Value implements driver.Valuer.
func (h Holding) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[int64]decimal.Decimal(h))
	if err != nil {
		return nil, fmt.Errorf("failed to encode holding: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (h *Holding) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*h = Holding{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Holding", src)
	}
	out := Holding{}
	if err := json.Unmarshal(raw, (*map[int64]decimal.Decimal)(&out)); err != nil {
		return fmt.Errorf("failed to decode holding: %w", err)
	}
	*h = out
	return nil
}

// Total returns the sum of all shares.
func (h Holding) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, pct := range h {
		sum = sum.Add(pct)
	}
	return sum
}

// Department represents an organizational department
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Holding   Holding   `json:"holding"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DepartmentRequest is the body of POST /department and PUT /department/{id}.
// Holding is kept raw so the object shape can be checked before decoding.
// Example: {"name": "Offset", "isActive": true, "holding": {"1": 60, "2": 40}}
type DepartmentRequest struct {
	Name     *string         `json:"name"`
	IsActive *bool           `json:"isActive"`
	Holding  json.RawMessage `json:"holding"`
}

// DepartmentUpdate is the validated form of a department update; nil fields are left unchanged.
type DepartmentUpdate struct {
	Name     *string
	IsActive *bool
	Holding  Holding
}

// DepartmentListFilter narrows GET /department
type DepartmentListFilter struct {
	Active *bool
	Page   *PageRequest
}

// DepartmentListResponse is the body of GET /department.
// Paging fields are present only when a page was requested.
type DepartmentListResponse struct {
	Message     string       `json:"message"`
	Count       int          `json:"count"`
	Data        []Department `json:"data"`
	CurrentPage int          `json:"currentPage,omitempty"`
	TotalPages  int          `json:"totalPages,omitempty"`
	TotalItems  int64        `json:"totalItems,omitempty"`
}

// DataResponse wraps a single resource with a message.
type DataResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Share is one member's part of a distributed amount.
type Share struct {
	MemberID   int64           `json:"memberId"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// Distribution is the body of GET /department/{id}/distribution
type Distribution struct {
	DepartmentID int64           `json:"departmentId"`
	Amount       decimal.Decimal `json:"amount"`
	Shares       []Share         `json:"shares"`
	Allocated    decimal.Decimal `json:"allocated"`
	Unallocated  decimal.Decimal `json:"unallocated"`
}
