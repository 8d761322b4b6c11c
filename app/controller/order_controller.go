package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/app/middleware"
	"print-shop-mis/billing"
	"print-shop-mis/metrics"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/service"
	"print-shop-mis/utils"
)

const (
	orderNotFound = "Order not found"

	// ConfirmDuplicateHeader lets a client resubmit an order it already sent.
	ConfirmDuplicateHeader = "X-Confirm-Duplicate"
)

// OrderController handles HTTP requests for orders and their bills
type OrderController struct {
	repository repository.OrderRepositoryInterface
	engine     *billing.Engine
	guard      service.SubmissionGuard
	renderer   service.BillRendererInterface
	previews   *service.PreviewCache
	archive    service.ArchiveServiceInterface
}

// NewOrderController creates a new OrderController. previews may be nil to disable the image cache.
func NewOrderController(
	repo repository.OrderRepositoryInterface,
	engine *billing.Engine,
	guard service.SubmissionGuard,
	renderer service.BillRendererInterface,
	previews *service.PreviewCache,
	archive service.ArchiveServiceInterface,
) *OrderController {
	return &OrderController{
		repository: repo,
		engine:     engine,
		guard:      guard,
		renderer:   renderer,
		previews:   previews,
		archive:    archive,
	}
}

// clientKey identifies the submitter for the submission guard.
func clientKey(r *http.Request) string {
	if u := middleware.UserFrom(r.Context()); u != nil {
		return "user:" + strconv.FormatInt(u.ID, 10)
	}
	if k := middleware.ClientKeyFrom(r.Context()); k != "" {
		return "client:" + k
	}
	return "anonymous"
}

// Sizes handles GET /order/sizes
func (c *OrderController) Sizes(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currency": c.engine.Currency(),
		"sizes":    c.engine.Sizes(),
	})
}

// Create handles POST /order
// Example request:
//
//	{
//	  "customer": {"name": "Ahmad", "phone_number": "0700123456"},
//	  "digitalId": 1042,
//	  "digital": [{"name": "Banner", "quantity": 2, "height": 1.5, "weight": 2, "price_per_unit": 350}],
//	  "offset": [{"name": "", "quantity": 0, "price_per_unit": 0, "money": 0}],
//	  "recip": 1000
//	}
//
// Empty lines are dropped and totals are computed by the server. A second submission within the
// cooldown answers 429; the same order again answers 409 unless X-Confirm-Duplicate: true is sent.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 CreateOrder: Received %s request to %s", r.Method, r.URL.Path)

	var req models.OrderRequest
	if !decodeJSON(w, r, "CreateOrder", &req) {
		return
	}
	order, err := c.engine.Prepare(&req)
	if err != nil {
		writeError(w, "CreateOrder", orderNotFound, err)
		return
	}

	allowDuplicate, _ := strconv.ParseBool(r.Header.Get(ConfirmDuplicateHeader))
	release, err := c.guard.Acquire(r.Context(), clientKey(r), billing.Fingerprint(order), allowDuplicate)
	if err != nil {
		var cooldown *service.CooldownError
		switch {
		case errors.Is(err, service.ErrDuplicateSubmission):
			metrics.GuardRejected(metrics.ReasonDuplicate)
		case errors.As(err, &cooldown):
			metrics.GuardRejected(metrics.ReasonCooldown)
		}
		writeError(w, "CreateOrder", orderNotFound, err)
		return
	}

	if u := middleware.UserFrom(r.Context()); u != nil {
		order.CreatedBy = u.ID
	}

	created, err := c.repository.Create(r.Context(), order)
	if err != nil {
		release()
		writeError(w, "CreateOrder", orderNotFound, err)
		return
	}

	metrics.OrderCreated()
	zap.S().Infof("💰 CreateOrder: order id=%d total=%s recip=%s", created.ID, created.Total, created.Recip)
	utils.WriteJSON(w, http.StatusCreated, created)
}

// List handles GET /order?page=1&limit=20
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r, 20, 100)

	orders, total, err := c.repository.List(r.Context(), page)
	if err != nil {
		writeError(w, "ListOrders", orderNotFound, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	p := models.NewPagination(total, page)
	utils.WriteJSON(w, http.StatusOK, models.OrderListResponse{
		Orders:      orders,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalItems:  p.TotalItems,
	})
}

// Get handles GET /order/{id}
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := c.load(w, r, "GetOrder")
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (c *OrderController) load(w http.ResponseWriter, r *http.Request, op string) (*models.Order, bool) {
	id, ok := pathID(w, r, op)
	if !ok {
		return nil, false
	}
	order, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, op, orderNotFound, err)
		return nil, false
	}
	return order, true
}

// Update handles PUT /order/{id}. Items are replaced and totals recomputed.
func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 UpdateOrder: Received %s request to %s", r.Method, r.URL.Path)

	id, ok := pathID(w, r, "UpdateOrder")
	if !ok {
		return
	}
	var req models.OrderRequest
	if !decodeJSON(w, r, "UpdateOrder", &req) {
		return
	}
	order, err := c.engine.Prepare(&req)
	if err != nil {
		writeError(w, "UpdateOrder", orderNotFound, err)
		return
	}

	updated, err := c.repository.Update(r.Context(), id, order)
	if err != nil {
		writeError(w, "UpdateOrder", orderNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /order/{id}
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteOrder")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteOrder", orderNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Order deleted successfully"})
}

// Deliver handles PATCH /order/{id}/deliver
// Example request: {"isDelivered": true}
func (c *OrderController) Deliver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeliverOrder")
	if !ok {
		return
	}
	var req models.DeliverRequest
	if !decodeJSON(w, r, "DeliverOrder", &req) {
		return
	}
	if req.IsDelivered == nil {
		utils.WriteError(w, http.StatusBadRequest, "isDelivered is required", nil)
		return
	}

	order, err := c.repository.SetDelivered(r.Context(), id, *req.IsDelivered)
	if err != nil {
		writeError(w, "DeliverOrder", orderNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// Payment handles POST /order/{id}/payment
// Example request: {"amount": 500}
func (c *OrderController) Payment(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 OrderPayment: Received %s request to %s", r.Method, r.URL.Path)

	id, ok := pathID(w, r, "OrderPayment")
	if !ok {
		return
	}
	var req models.PaymentRequest
	if !decodeJSON(w, r, "OrderPayment", &req) {
		return
	}

	order, err := c.repository.AddPayment(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, "OrderPayment", orderNotFound, err)
		return
	}
	metrics.PaymentPosted()
	utils.WriteJSON(w, http.StatusOK, order)
}

// BillHTML handles GET /order/{id}/bill
func (c *OrderController) BillHTML(w http.ResponseWriter, r *http.Request) {
	order, ok := c.load(w, r, "BillHTML")
	if !ok {
		return
	}
	html, err := c.renderer.RenderHTML(order)
	if err != nil {
		writeError(w, "BillHTML", orderNotFound, err)
		return
	}
	metrics.BillRendered("html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

// BillPDF handles GET /order/{id}/bill.pdf
func (c *OrderController) BillPDF(w http.ResponseWriter, r *http.Request) {
	order, ok := c.load(w, r, "BillPDF")
	if !ok {
		return
	}
	pdf, err := c.renderer.PDF(r.Context(), order)
	if err != nil {
		writeError(w, "BillPDF", orderNotFound, err)
		return
	}
	metrics.BillRendered("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="bill-%d.pdf"`, order.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// BillPNG handles GET /order/{id}/bill.png?size=thumb|medium|full
// thumb and medium are JPEG previews served from the disk cache when present.
func (c *OrderController) BillPNG(w http.ResponseWriter, r *http.Request) {
	size := strings.TrimSpace(r.URL.Query().Get("size"))
	if size == "" {
		size = service.SizeFull
	}
	if !service.ValidPreviewSize(size) {
		utils.WriteError(w, http.StatusBadRequest, "Size must be thumb, medium or full", nil)
		return
	}

	order, ok := c.load(w, r, "BillPNG")
	if !ok {
		return
	}

	var cachePath string
	if size != service.SizeFull && c.previews != nil {
		cachePath = c.previews.Path(order.ID, order.UpdatedAt, size)
		if data, hit := c.previews.Read(cachePath); hit {
			writeImage(w, "image/jpeg", data)
			return
		}
	}

	png, err := c.renderer.PNG(r.Context(), order)
	if err != nil {
		writeError(w, "BillPNG", orderNotFound, err)
		return
	}
	metrics.BillRendered("png")
	if size == service.SizeFull {
		writeImage(w, "image/png", png)
		return
	}

	jpeg, err := service.OptimizeImage(png, size)
	if err != nil {
		writeError(w, "BillPNG", orderNotFound, err)
		return
	}
	if cachePath != "" {
		if err := c.previews.Write(cachePath, jpeg); err != nil {
			zap.S().Warnf("⚠️ BillPNG: %v", err)
		}
	}
	writeImage(w, "image/jpeg", jpeg)
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Archive handles POST /order/{id}/archive
func (c *OrderController) Archive(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 ArchiveOrder: Received %s request to %s", r.Method, r.URL.Path)

	id, ok := pathID(w, r, "ArchiveOrder")
	if !ok {
		return
	}
	order, err := c.archive.ArchiveOrder(r.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrArchiveDisabled) && !errors.Is(err, repository.ErrNotFound) {
			metrics.ArchiveResult("failed", 1)
		}
		writeError(w, "ArchiveOrder", orderNotFound, err)
		return
	}
	metrics.ArchiveResult("archived", 1)
	utils.WriteJSON(w, http.StatusOK, order)
}

// ArchiveRange handles POST /order/archive?from=2026-03-01&to=2026-03-31
// Example response: {"archived": 12, "skipped": 0, "failed": 1, "total": 13, "errors": ["order 7: ..."]}
func (c *OrderController) ArchiveRange(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 ArchiveOrders: Received %s request to %s", r.Method, r.URL.Path)

	rng, err := utils.ParseDateRange(r)
	if err != nil {
		writeError(w, "ArchiveOrders", orderNotFound, err)
		return
	}

	stats, err := c.archive.ArchiveRange(r.Context(), rng)
	if stats != nil {
		metrics.ArchiveResult("archived", stats.Archived)
		metrics.ArchiveResult("skipped", stats.Skipped)
		metrics.ArchiveResult("failed", stats.Failed)
	}
	if err != nil {
		writeError(w, "ArchiveOrders", orderNotFound, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
