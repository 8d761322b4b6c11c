package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"print-shop-mis/models"
)

const moneyPlaces = 2

// IsDigitalItemFilled reports whether any field of a digital line was entered.
func IsDigitalItemFilled(item models.DigitalItem) bool {
	return strings.TrimSpace(item.Name) != "" ||
		item.Quantity.IsPositive() ||
		item.Height.IsPositive() ||
		item.Weight.IsPositive() ||
		item.PricePerUnit.IsPositive() ||
		item.Money.IsPositive()
}

// IsOffsetItemFilled reports whether any field of an offset line was entered.
func IsOffsetItemFilled(item models.OffsetItem) bool {
	return strings.TrimSpace(item.Name) != "" ||
		item.Quantity.IsPositive() ||
		item.PricePerUnit.IsPositive() ||
		item.Money.IsPositive()
}

// FilterDigital drops the empty digital lines of a form.
func FilterDigital(items []models.DigitalItem) []models.DigitalItem {
	out := make([]models.DigitalItem, 0, len(items))
	for _, it := range items {
		if IsDigitalItemFilled(it) {
			out = append(out, it)
		}
	}
	return out
}

// FilterOffset drops the empty offset lines of a form.
func FilterOffset(items []models.OffsetItem) []models.OffsetItem {
	out := make([]models.OffsetItem, 0, len(items))
	for _, it := range items {
		if IsOffsetItemFilled(it) {
			out = append(out, it)
		}
	}
	return out
}

// PriceDigital fills in area and money for a digital line.
// With a unit price the line money is area × price × quantity (quantity at least 1);
// without one the entered money is kept.
func PriceDigital(item models.DigitalItem) models.DigitalItem {
	item.Name = strings.TrimSpace(item.Name)
	if item.Area.IsZero() && item.Height.IsPositive() && item.Weight.IsPositive() {
		item.Area = item.Height.Mul(item.Weight)
	}
	item.Area = item.Area.Round(moneyPlaces)
	if item.PricePerUnit.IsPositive() {
		qty := item.Quantity
		if !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}
		item.Money = item.Area.Mul(item.PricePerUnit).Mul(qty)
	}
	item.Money = item.Money.Round(moneyPlaces)
	return item
}

// PriceOffset fills in money for an offset line: quantity × price when a unit price is set.
func PriceOffset(item models.OffsetItem) models.OffsetItem {
	item.Name = strings.TrimSpace(item.Name)
	if item.PricePerUnit.IsPositive() {
		item.Money = item.Quantity.Mul(item.PricePerUnit)
	}
	item.Money = item.Money.Round(moneyPlaces)
	return item
}

// ApplyTotals recomputes the section totals, the grand total and the remainder of an order.
func ApplyTotals(o *models.Order) {
	digital := decimal.Zero
	for _, it := range o.Digital {
		digital = digital.Add(it.Money)
	}
	offset := decimal.Zero
	for _, it := range o.Offset {
		offset = offset.Add(it.Money)
	}
	o.TotalMoneyDigital = digital.Round(moneyPlaces)
	o.TotalMoneyOffset = offset.Round(moneyPlaces)
	o.Total = o.TotalMoneyDigital.Add(o.TotalMoneyOffset)
	o.Recip = o.Recip.Round(moneyPlaces)
	o.Remained = o.Total.Sub(o.Recip)
}

// Prepare turns a submitted form into a priced order: empty lines are dropped,
// the remaining lines are validated and priced, and the totals are computed.
func (e *Engine) Prepare(req *models.OrderRequest) (*models.Order, error) {
	digital := FilterDigital(req.Digital)
	offset := FilterOffset(req.Offset)

	if len(digital) == 0 && len(offset) == 0 {
		return nil, models.NewValidationError("Please fill in at least one digital or offset item")
	}
	name := strings.TrimSpace(req.Customer.Name)
	if name == "" {
		return nil, models.NewValidationError("Customer name is required")
	}
	if len(digital) > e.config.MaxDigitalItems {
		return nil, models.NewValidationError(fmt.Sprintf("At most %d digital items are allowed", e.config.MaxDigitalItems))
	}
	if len(offset) > e.config.MaxOffsetItems {
		return nil, models.NewValidationError(fmt.Sprintf("At most %d offset items are allowed", e.config.MaxOffsetItems))
	}
	if req.Recip.IsNegative() {
		return nil, models.NewValidationError("Received amount cannot be negative")
	}

	order := &models.Order{
		Customer: models.OrderCustomer{
			Name:        name,
			PhoneNumber: strings.TrimSpace(req.Customer.PhoneNumber),
		},
		DigitalID: req.DigitalID,
		Digital:   make([]models.DigitalItem, 0, len(digital)),
		Offset:    make([]models.OffsetItem, 0, len(offset)),
		Recip:     req.Recip,
	}

	for i, it := range digital {
		if it.Quantity.IsNegative() || it.Height.IsNegative() || it.Weight.IsNegative() ||
			it.Area.IsNegative() || it.PricePerUnit.IsNegative() || it.Money.IsNegative() {
			return nil, models.NewValidationError(fmt.Sprintf("Digital item %d has a negative value", i+1))
		}
		order.Digital = append(order.Digital, PriceDigital(it))
	}
	for i, it := range offset {
		if it.Quantity.IsNegative() || it.PricePerUnit.IsNegative() || it.Money.IsNegative() {
			return nil, models.NewValidationError(fmt.Sprintf("Offset item %d has a negative value", i+1))
		}
		order.Offset = append(order.Offset, PriceOffset(it))
	}

	ApplyTotals(order)
	if order.Remained.IsNegative() {
		return nil, models.NewValidationError("Received amount cannot exceed the order total")
	}
	return order, nil
}

// Fingerprint hashes the billable content of an order. Two submissions of the same
// form produce the same fingerprint.
func Fingerprint(o *models.Order) string {
	payload := struct {
		Customer  models.OrderCustomer `json:"customer"`
		DigitalID models.DigitalID     `json:"digitalId"`
		Digital   []models.DigitalItem `json:"digital"`
		Offset    []models.OffsetItem  `json:"offset"`
		Recip     string               `json:"recip"`
	}{o.Customer, o.DigitalID, o.Digital, o.Offset, o.Recip.StringFixed(moneyPlaces)}

	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
