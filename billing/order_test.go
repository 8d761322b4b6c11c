package billing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-shop-mis/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsItemFilled(t *testing.T) {
	assert.False(t, IsDigitalItemFilled(models.DigitalItem{Name: "   "}))
	assert.True(t, IsDigitalItemFilled(models.DigitalItem{Name: "Banner"}))
	assert.True(t, IsDigitalItemFilled(models.DigitalItem{Weight: d("1")}))
	assert.False(t, IsDigitalItemFilled(models.DigitalItem{Area: d("4")}), "area alone does not count")

	assert.False(t, IsOffsetItemFilled(models.OffsetItem{}))
	assert.True(t, IsOffsetItemFilled(models.OffsetItem{Money: d("10")}))
	assert.False(t, IsOffsetItemFilled(models.OffsetItem{Quantity: d("-1")}))
}

func TestPriceDigital(t *testing.T) {
	tests := []struct {
		name      string
		item      models.DigitalItem
		wantArea  string
		wantMoney string
	}{
		{"area from size", models.DigitalItem{Height: d("1.5"), Weight: d("2"), Quantity: d("2"), PricePerUnit: d("350")}, "3", "2100"},
		{"given area wins", models.DigitalItem{Height: d("1"), Weight: d("1"), Area: d("2.5"), PricePerUnit: d("100")}, "2.5", "250"},
		{"quantity defaults to one", models.DigitalItem{Height: d("2"), Weight: d("2"), PricePerUnit: d("10")}, "4", "40"},
		{"manual money kept", models.DigitalItem{Name: "Design fee", Money: d("499.999")}, "0", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceDigital(tt.item)
			assert.True(t, got.Area.Equal(d(tt.wantArea)), "area %s", got.Area)
			assert.True(t, got.Money.Equal(d(tt.wantMoney)), "money %s", got.Money)
		})
	}
}

func TestPriceOffset(t *testing.T) {
	got := PriceOffset(models.OffsetItem{Name: " Cards ", Quantity: d("1000"), PricePerUnit: d("2.5")})
	assert.Equal(t, "Cards", got.Name)
	assert.True(t, got.Money.Equal(d("2500")))

	got = PriceOffset(models.OffsetItem{Quantity: d("3"), Money: d("90")})
	assert.True(t, got.Money.Equal(d("90")))
}

func TestPrepare_ComputesTotals(t *testing.T) {
	engine := GetEngine()
	req := &models.OrderRequest{
		Customer: models.OrderCustomer{Name: "  Ahmad ", PhoneNumber: "0700"},
		Digital: []models.DigitalItem{
			{Name: "Banner", Height: d("1.5"), Weight: d("2"), Quantity: d("2"), PricePerUnit: d("350")},
			{},
			{Name: ""},
		},
		Offset: []models.OffsetItem{
			{Name: "Cards", Quantity: d("1000"), PricePerUnit: d("2.5")},
			{},
		},
		Recip: d("1000"),
	}

	order, err := engine.Prepare(req)
	require.NoError(t, err)

	assert.Equal(t, "Ahmad", order.Customer.Name)
	assert.Len(t, order.Digital, 1)
	assert.Len(t, order.Offset, 1)
	assert.True(t, order.TotalMoneyDigital.Equal(d("2100")))
	assert.True(t, order.TotalMoneyOffset.Equal(d("2500")))
	assert.True(t, order.Total.Equal(d("4600")))
	assert.True(t, order.Remained.Equal(d("3600")))
	assert.True(t, order.Total.Equal(order.TotalMoneyDigital.Add(order.TotalMoneyOffset)))
}

func TestPrepare_Validation(t *testing.T) {
	engine := GetEngine()
	banner := models.DigitalItem{Name: "Banner", Money: d("100")}

	tests := []struct {
		name string
		req  models.OrderRequest
		msg  string
	}{
		{"no filled items", models.OrderRequest{Customer: models.OrderCustomer{Name: "A"}, Digital: []models.DigitalItem{{}}}, "at least one"},
		{"no customer", models.OrderRequest{Digital: []models.DigitalItem{banner}}, "Customer name"},
		{"too many digital", models.OrderRequest{Customer: models.OrderCustomer{Name: "A"}, Digital: []models.DigitalItem{banner, banner, banner, banner, banner, banner}}, "At most 5 digital"},
		{"negative price", models.OrderRequest{Customer: models.OrderCustomer{Name: "A"}, Offset: []models.OffsetItem{{Name: "x", PricePerUnit: d("-1")}}}, "negative"},
		{"negative recip", models.OrderRequest{Customer: models.OrderCustomer{Name: "A"}, Digital: []models.DigitalItem{banner}, Recip: d("-5")}, "cannot be negative"},
		{"overpaid", models.OrderRequest{Customer: models.OrderCustomer{Name: "A"}, Digital: []models.DigitalItem{banner}, Recip: d("101")}, "cannot exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Prepare(&tt.req)
			require.Error(t, err)
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Message, tt.msg)
		})
	}
}

func TestFingerprint(t *testing.T) {
	engine := GetEngine()
	req := &models.OrderRequest{
		Customer: models.OrderCustomer{Name: "Ahmad"},
		Offset:   []models.OffsetItem{{Name: "Cards", Quantity: d("100"), PricePerUnit: d("2")}},
	}
	a, err := engine.Prepare(req)
	require.NoError(t, err)

	// Empty lines and whitespace do not change the fingerprint.
	req.Customer.Name = " Ahmad "
	req.Offset = append(req.Offset, models.OffsetItem{})
	b, err := engine.Prepare(req)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	req.Offset[0].Quantity = d("101")
	c, err := engine.Prepare(req)
	require.NoError(t, err)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}

func TestNewEngine_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
currency: USD
maxOffsetItems: 2
sizes:
  - {id: 1, label: "A4", width: 210, height: 297}
`), 0o644))

	engine, err := NewEngine(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", engine.Currency())
	assert.Equal(t, []Size{{ID: 1, Label: "A4", Width: 210, Height: 297}}, engine.Sizes())

	item := models.OffsetItem{Name: "x", Money: d("1")}
	_, err = engine.Prepare(&models.OrderRequest{
		Customer: models.OrderCustomer{Name: "A"},
		Offset:   []models.OffsetItem{item, item, item},
	})
	assert.Error(t, err)
}

func TestNewEngine_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sizes:\n  - {id: 1, label: bad, width: 0, height: 10}\n"), 0o644))
	_, err := NewEngine(path)
	assert.Error(t, err)

	_, err = NewEngine(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultEngine_Sizes(t *testing.T) {
	sizes := GetEngine().Sizes()
	require.Len(t, sizes, 8)
	assert.Equal(t, "1030 x 820", sizes[0].Label)
	assert.Equal(t, "B", sizes[7].Variant)
}
