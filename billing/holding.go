package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"print-shop-mis/models"
)

var hundred = decimal.NewFromInt(100)

const holdingShapeMessage = "Holding must be an object, e.g., { 1: 20, 2: 80 }"

// ParseHolding decodes a raw holding object. A missing or null value gives an empty holding.
func ParseHolding(raw json.RawMessage) (models.Holding, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Holding{}, nil
	}
	if raw[0] != '{' {
		return nil, models.NewValidationError(holdingShapeMessage)
	}

	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, models.NewValidationError(holdingShapeMessage)
	}

	h := make(models.Holding, len(byKey))
	for key, val := range byKey {
		id, err := strconv.ParseInt(key, 10, 64)
		// "01" and "+1" would alias member 1.
		if err != nil || strconv.FormatInt(id, 10) != key {
			return nil, models.NewValidationError(fmt.Sprintf("Holding key %q is not a member id", key))
		}
		var pct decimal.Decimal
		if err := pct.UnmarshalJSON(val); err != nil {
			return nil, models.NewValidationError(fmt.Sprintf("Holding percentage for member %d is not a number", id))
		}
		h[id] = pct
	}
	return h, nil
}

// ValidateHolding checks member ids are positive, each share is in (0, 100] and the shares sum to at most 100.
func ValidateHolding(h models.Holding) error {
	for _, id := range sortedMemberIDs(h) {
		pct := h[id]
		if id <= 0 {
			return models.NewValidationError(fmt.Sprintf("Holding member id %d is invalid", id))
		}
		if !pct.IsPositive() || pct.GreaterThan(hundred) {
			return models.NewValidationError(fmt.Sprintf("Holding percentage for member %d must be between 0 and 100", id))
		}
	}
	if h.Total().GreaterThan(hundred) {
		return models.NewValidationError("Total percentage cannot exceed 100%")
	}
	return nil
}

// MemberIDs returns the member ids of a holding in ascending order.
func MemberIDs(h models.Holding) []int64 {
	return sortedMemberIDs(h)
}

// Distribute splits amount among the holders of a department by their percentage.
// Each share is rounded to 2 places; whatever is not allocated is reported separately.
func Distribute(h models.Holding, amount decimal.Decimal) ([]models.Share, decimal.Decimal, decimal.Decimal) {
	shares := make([]models.Share, 0, len(h))
	allocated := decimal.Zero
	for _, id := range sortedMemberIDs(h) {
		pct := h[id]
		part := amount.Mul(pct).Div(hundred).Round(moneyPlaces)
		shares = append(shares, models.Share{MemberID: id, Percentage: pct, Amount: part})
		allocated = allocated.Add(part)
	}
	return shares, allocated, amount.Sub(allocated)
}

func sortedMemberIDs(h models.Holding) []int64 {
	ids := make([]int64, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
