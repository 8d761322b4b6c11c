package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-shop-mis/billing"
	"print-shop-mis/config"
	"print-shop-mis/models"
	"print-shop-mis/utils"
)

//go:embed templates/bill.html
var templateFS embed.FS

// BillRendererInterface renders an order as a printable bill.
type BillRendererInterface interface {
	RenderHTML(order *models.Order) ([]byte, error)
	PDF(ctx context.Context, order *models.Order) ([]byte, error)
	PNG(ctx context.Context, order *models.Order) ([]byte, error)
}

// BillRenderer renders bills from an HTML template and prints them with headless Chrome.
type BillRenderer struct {
	shop       config.ShopConfig
	chromePath string
	timeout    time.Duration
	tmpl       *template.Template
}

var _ BillRendererInterface = (*BillRenderer)(nil)

// NewBillRenderer parses the bill template. An empty chromePath is auto-detected.
func NewBillRenderer(shop config.ShopConfig, cfg config.BillConfig) (*BillRenderer, error) {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return utils.FormatAmount(d, billing.GetEngine().Currency())
		},
		"inc": func(i int) int { return i + 1 },
	}
	tmpl, err := template.New("bill.html").Funcs(funcs).ParseFS(templateFS, "templates/bill.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	timeout := cfg.RenderTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BillRenderer{
		shop:       shop,
		chromePath: detectChromePath(cfg.ChromePath),
		timeout:    timeout,
		tmpl:       tmpl,
	}, nil
}

// detectChromePath returns the configured Chrome binary when it exists, else the first
// common installation path found. An empty result lets chromedp search on its own.
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
		zap.S().Warnf("⚠️ CHROME_PATH %s not found, falling back to auto-detection", configured)
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RenderHTML executes the bill template for an order.
func (r *BillRenderer) RenderHTML(order *models.Order) ([]byte, error) {
	data := struct {
		Shop      config.ShopConfig
		Order     *models.Order
		PrintedAt time.Time
	}{
		Shop:      r.shop,
		Order:     order,
		PrintedAt: time.Now(),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// browser starts a headless Chrome bounded by the render timeout.
func (r *BillRenderer) browser(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("enable-print-preview", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return browserCtx, func() {
		browserCancel()
		allocCancel()
		cancel()
	}
}

// loadDocument replaces the blank page's content with the bill HTML.
func loadDocument(html []byte) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.fonts.ready`, nil),
	}
}

// PDF prints the bill on A5 paper.
func (r *BillRenderer) PDF(ctx context.Context, order *models.Order) ([]byte, error) {
	html, err := r.RenderHTML(order)
	if err != nil {
		return nil, err
	}

	browserCtx, cancel := r.browser(ctx)
	defer cancel()

	started := time.Now()
	var pdfBuf []byte
	err = chromedp.Run(browserCtx,
		loadDocument(html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A5 = 148mm x 210mm = 5.83" x 8.27"
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(5.83).
				WithPaperHeight(8.27).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	zap.S().Infof("✅ Bill PDF rendered: order id=%d, %d bytes in %s", order.ID, len(pdfBuf), time.Since(started))
	return pdfBuf, nil
}

// PNG captures the full bill page as an image.
func (r *BillRenderer) PNG(ctx context.Context, order *models.Order) ([]byte, error) {
	html, err := r.RenderHTML(order)
	if err != nil {
		return nil, err
	}

	browserCtx, cancel := r.browser(ctx)
	defer cancel()

	var buf []byte
	// 148mm = 559px at 96 DPI
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(559, 794),
		loadDocument(html),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	zap.S().Infof("✅ Bill PNG rendered: order id=%d, %d bytes", order.ID, len(buf))
	return buf, nil
}
