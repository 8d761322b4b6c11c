package controller

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-shop-mis/billing"
	"print-shop-mis/models"
	"print-shop-mis/service"
)

const orderBody = `{
	"customer": {"name": "Ahmad", "phone_number": "0700123456"},
	"digitalId": 1042,
	"digital": [
		{"name": "Banner", "quantity": 2, "height": 1.5, "weight": 2, "price_per_unit": 350},
		{"name": "", "quantity": 0, "height": 0, "weight": 0, "price_per_unit": 0}
	],
	"offset": [{"name": "Cards", "quantity": 500, "price_per_unit": 2}],
	"recip": 1000
}`

var reception = &models.User{ID: 4, Fullname: "Karim", Role: models.RoleReception, IsActive: true}

type orderFixture struct {
	repo     *fakeOrderRepo
	renderer *fakeRenderer
	ctrl     *OrderController
}

func newOrderFixture(t *testing.T, guardCfg service.GuardConfig, previews *service.PreviewCache) *orderFixture {
	t.Helper()
	engine, err := billing.NewEngine("")
	require.NoError(t, err)

	f := &orderFixture{repo: newFakeOrderRepo(), renderer: &fakeRenderer{}}
	f.ctrl = NewOrderController(f.repo, engine, service.NewMemorySubmissionGuard(guardCfg), f.renderer, previews, fakeArchive{})
	return f
}

func (f *orderFixture) create(t *testing.T, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, http.MethodPost, "/order", body, reception)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.ctrl.Create(rec, req)
	return rec
}

func TestOrderController_Create(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{}, nil)

	rec := f.create(t, orderBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(1), order.ID)
	assert.Len(t, order.Digital, 1, "empty lines are dropped")
	assert.True(t, order.TotalMoneyDigital.Equal(decimal.NewFromInt(2100)), order.TotalMoneyDigital.String())
	assert.True(t, order.TotalMoneyOffset.Equal(decimal.NewFromInt(1000)), order.TotalMoneyOffset.String())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(3100)))
	assert.True(t, order.Remained.Equal(decimal.NewFromInt(2100)))
	assert.Equal(t, reception.ID, f.repo.orders[1].CreatedBy)
}

func TestOrderController_CreateRejectsInvalidOrders(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"no items", `{"customer": {"name": "Ahmad"}, "digital": [], "offset": []}`, "Please fill in at least one digital or offset item"},
		{"no customer", `{"customer": {"name": " "}, "offset": [{"name": "Cards", "quantity": 1, "price_per_unit": 2}]}`, "Customer name is required"},
		{"overpaid", `{"customer": {"name": "Ahmad"}, "offset": [{"name": "Cards", "quantity": 1, "price_per_unit": 2}], "recip": 5}`, "Received amount cannot exceed the order total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, service.GuardConfig{}, nil)
			rec := f.create(t, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rec).Message)
			assert.Empty(t, f.repo.orders)
		})
	}
}

func TestOrderController_CreateDuplicate(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{DuplicateWindow: time.Hour}, nil)

	require.Equal(t, http.StatusCreated, f.create(t, orderBody, nil).Code)

	rec := f.create(t, orderBody, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This order was already submitted", decodeError(t, rec).Message)
	assert.Len(t, f.repo.orders, 1)

	rec = f.create(t, orderBody, map[string]string{ConfirmDuplicateHeader: "true"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, f.repo.orders, 2)
}

func TestOrderController_ConfirmRightAfterConflict(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{Cooldown: 50 * time.Millisecond, DuplicateWindow: time.Hour}, nil)

	require.Equal(t, http.StatusCreated, f.create(t, orderBody, nil).Code)
	time.Sleep(60 * time.Millisecond)

	require.Equal(t, http.StatusConflict, f.create(t, orderBody, nil).Code)

	rec := f.create(t, orderBody, map[string]string{ConfirmDuplicateHeader: "true"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, f.repo.orders, 2)
}

func TestOrderController_FailedConfirmKeepsConflict(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{Cooldown: 50 * time.Millisecond, DuplicateWindow: time.Hour}, nil)

	require.Equal(t, http.StatusCreated, f.create(t, orderBody, nil).Code)
	time.Sleep(60 * time.Millisecond)

	f.repo.failNew = true
	require.Equal(t, http.StatusInternalServerError, f.create(t, orderBody, map[string]string{ConfirmDuplicateHeader: "true"}).Code)
	f.repo.failNew = false

	rec := f.create(t, orderBody, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, f.repo.orders, 1)
}

func TestOrderController_CreateCooldown(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{Cooldown: time.Minute}, nil)

	require.Equal(t, http.StatusCreated, f.create(t, orderBody, nil).Code)

	other := `{"customer": {"name": "Mina"}, "offset": [{"name": "Flyers", "quantity": 100, "price_per_unit": 3}]}`
	rec := f.create(t, other, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Len(t, f.repo.orders, 1)
}

func TestOrderController_CreateReleasesGuardOnFailure(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{Cooldown: time.Minute, DuplicateWindow: time.Hour}, nil)

	f.repo.failNew = true
	rec := f.create(t, orderBody, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create order", decodeError(t, rec).Message)

	f.repo.failNew = false
	rec = f.create(t, orderBody, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestOrderController_Sizes(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{}, nil)

	rec := httptest.NewRecorder()
	f.ctrl.Sizes(rec, newRequest(t, http.MethodGet, "/order/sizes", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Currency string            `json:"currency"`
		Sizes    []json.RawMessage `json:"sizes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AFN", resp.Currency)
	assert.NotEmpty(t, resp.Sizes)
}

func TestOrderController_Payment(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{}, nil)
	require.Equal(t, http.StatusCreated, f.create(t, orderBody, nil).Code)

	rec := httptest.NewRecorder()
	f.ctrl.Payment(rec, newRequest(t, http.MethodPost, "/order/1/payment", `{"amount": 600}`, reception, "id", "1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.repo.orders[1].Remained.Equal(decimal.NewFromInt(1500)))

	rec = httptest.NewRecorder()
	f.ctrl.Payment(rec, newRequest(t, http.MethodPost, "/order/1/payment", `{"amount": 5000}`, reception, "id", "1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment exceeds the remaining amount", decodeError(t, rec).Message)

	rec = httptest.NewRecorder()
	f.ctrl.Payment(rec, newRequest(t, http.MethodPost, "/order/9/payment", `{"amount": 1}`, reception, "id", "9"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderController_BillPNG(t *testing.T) {
	previews, err := service.NewPreviewCache(t.TempDir())
	require.NoError(t, err)
	f := newOrderFixture(t, service.GuardConfig{}, previews)
	require.Equal(t, http.StatusCreated, f.create(t, orderBody, nil).Code)

	img := image.NewRGBA(image.Rect(0, 0, 1200, 600))
	for x := 0; x < 1200; x++ {
		img.Set(x, 300, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	f.renderer.png = buf.Bytes()

	rec := httptest.NewRecorder()
	f.ctrl.BillPNG(rec, newRequest(t, http.MethodGet, "/order/1/bill.png?size=huge", "", reception, "id", "1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.renderer.calls)

	rec = httptest.NewRecorder()
	f.ctrl.BillPNG(rec, newRequest(t, http.MethodGet, "/order/1/bill.png", "", reception, "id", "1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		f.ctrl.BillPNG(rec, newRequest(t, http.MethodGet, "/order/1/bill.png?size=thumb", "", reception, "id", "1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	}
	assert.Equal(t, 2, f.renderer.calls, "second thumb is served from the cache")
}

func TestOrderController_ArchiveDisabled(t *testing.T) {
	f := newOrderFixture(t, service.GuardConfig{}, nil)

	rec := httptest.NewRecorder()
	f.ctrl.Archive(rec, newRequest(t, http.MethodPost, "/order/1/archive", "", reception, "id", "1"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Bill archive is not configured", decodeError(t, rec).Message)
}
