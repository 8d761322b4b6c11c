package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-shop-mis/models"
)

func TestParseHolding(t *testing.T) {
	h, err := ParseHolding(json.RawMessage(`{"1": 60, "2": "40"}`))
	require.NoError(t, err)
	assert.True(t, h[1].Equal(d("60")))
	assert.True(t, h[2].Equal(d("40")))

	h, err = ParseHolding(nil)
	require.NoError(t, err)
	assert.Empty(t, h)

	h, err = ParseHolding(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, h)

	for _, bad := range []string{`[1,2]`, `"20"`, `{"user1": 20}`, `{"1": "lots"}`} {
		_, err := ParseHolding(json.RawMessage(bad))
		assert.Error(t, err, bad)
	}

	for _, aliased := range []string{`{"01": 20}`, `{"+1": 20}`, `{"1": 30, "01": 90, "+1": 50}`, `{" 1": 20}`} {
		_, err := ParseHolding(json.RawMessage(aliased))
		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr, aliased)
		assert.Contains(t, vErr.Message, "is not a member id")
	}
}

func TestValidateHolding(t *testing.T) {
	tests := []struct {
		name    string
		holding models.Holding
		wantErr string
	}{
		{"empty", models.Holding{}, ""},
		{"exactly hundred", models.Holding{1: d("60"), 2: d("40")}, ""},
		{"fractional under hundred", models.Holding{1: d("33.33"), 2: d("33.33"), 3: d("33.33")}, ""},
		{"over hundred", models.Holding{1: d("60"), 2: d("40.01")}, "cannot exceed 100%"},
		{"zero share", models.Holding{1: d("0")}, "between 0 and 100"},
		{"share over hundred", models.Holding{1: d("101")}, "between 0 and 100"},
		{"bad member id", models.Holding{-4: d("10")}, "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHolding(tt.holding)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDistribute(t *testing.T) {
	h := models.Holding{2: d("33.33"), 1: d("50")}
	shares, allocated, unallocated := Distribute(h, d("1000"))

	require.Len(t, shares, 2)
	assert.Equal(t, int64(1), shares[0].MemberID)
	assert.True(t, shares[0].Amount.Equal(d("500")))
	assert.True(t, shares[1].Amount.Equal(d("333.3")))
	assert.True(t, allocated.Equal(d("833.3")))
	assert.True(t, unallocated.Equal(d("166.7")))
	assert.True(t, allocated.Add(unallocated).Equal(d("1000")))
}
