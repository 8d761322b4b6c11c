package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item kinds as stored in order_items.kind
const (
	ItemKindDigital = "digital"
	ItemKindOffset  = "offset"
)

// OrderCustomer is the walk-in customer printed on the bill
type OrderCustomer struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// DigitalItem is a digital print line. Weight is the print width.
type DigitalItem struct {
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Height       decimal.Decimal `json:"height"`
	Weight       decimal.Decimal `json:"weight"`
	Area         decimal.Decimal `json:"area"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Money        decimal.Decimal `json:"money"`
}

// OffsetItem is an offset print line
type OffsetItem struct {
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Money        decimal.Decimal `json:"money"`
}

// DigitalID is the console's digital job number. It arrives as a JSON number, a string or null.
type DigitalID string

// UnmarshalJSON implements json.Unmarshaler.
func (d *DigitalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DigitalID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n.String() == "0" {
		*d = ""
		return nil
	}
	*d = DigitalID(n.String())
	return nil
}

// Order is a customer bill with its digital and offset lines
type Order struct {
	ID                int64           `json:"id"`
	Customer          OrderCustomer   `json:"customer"`
	DigitalID         DigitalID       `json:"digitalId"`
	Digital           []DigitalItem   `json:"digital"`
	Offset            []OffsetItem    `json:"offset"`
	TotalMoneyDigital decimal.Decimal `json:"total_money_digital"`
	TotalMoneyOffset  decimal.Decimal `json:"total_money_offset"`
	Total             decimal.Decimal `json:"total"`
	Recip             decimal.Decimal `json:"recip"`
	Remained          decimal.Decimal `json:"remained"`
	IsDelivered       bool            `json:"isDelivered"`
	ArchiveURL        string          `json:"archiveUrl,omitempty"`
	CreatedBy         int64           `json:"createdBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// OrderRequest is the body of POST /order and PUT /order/{id}.
// Totals sent by the console are ignored and recomputed.
// Example:
// {
//   "customer": {"name": "Ahmad", "phone_number": "0700123456"},
//   "digitalId": 1042,
//   "digital": [{"name": "Banner", "quantity": 2, "height": 1.5, "weight": 2, "price_per_unit": 350}],
//   "offset": [{"name": "Business cards", "quantity": 1000, "price_per_unit": 2.5}],
//   "recip": 1000
// }
type OrderRequest struct {
	Customer  OrderCustomer   `json:"customer"`
	DigitalID DigitalID       `json:"digitalId"`
	Digital   []DigitalItem   `json:"digital"`
	Offset    []OffsetItem    `json:"offset"`
	Recip     decimal.Decimal `json:"recip"`
}

// OrderListResponse is the body of GET /order
type OrderListResponse struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalItems  int64   `json:"totalItems"`
}

// DeliverRequest is the body of PATCH /order/{id}/deliver
type DeliverRequest struct {
	IsDelivered *bool `json:"isDelivered"`
}

// PaymentRequest is the body of POST /order/{id}/payment
// Example: {"amount": 500}
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ArchiveStats reports a batch bill archive run
type ArchiveStats struct {
	Archived int      `json:"archived"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}
