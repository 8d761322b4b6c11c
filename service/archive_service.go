package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"print-shop-mis/models"
	"print-shop-mis/repository"
)

// ErrArchiveDisabled is returned when no archive backend is configured.
var ErrArchiveDisabled = errors.New("bill archive is not configured")

// Archiver stores a rendered file somewhere durable and returns a link to it.
type Archiver interface {
	Name() string
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ArchiveServiceInterface defines the contract for bill archiving
type ArchiveServiceInterface interface {
	Enabled() bool
	ArchiveOrder(ctx context.Context, id int64) (*models.Order, error)
	// ArchiveRange archives every order in the range that has no archive URL yet.
	ArchiveRange(ctx context.Context, rng models.DateRange) (*models.ArchiveStats, error)
}

// ArchiveService renders bill PDFs and uploads them through an Archiver
type ArchiveService struct {
	archiver Archiver
	renderer BillRendererInterface
	orders   repository.OrderRepositoryInterface
}

// NewArchiveService creates an ArchiveService. A nil archiver disables archiving.
func NewArchiveService(archiver Archiver, renderer BillRendererInterface, orders repository.OrderRepositoryInterface) *ArchiveService {
	return &ArchiveService{archiver: archiver, renderer: renderer, orders: orders}
}

var _ ArchiveServiceInterface = (*ArchiveService)(nil)

func (s *ArchiveService) Enabled() bool {
	return s.archiver != nil
}

func billFileName(o *models.Order) string {
	return fmt.Sprintf("bill-%d-%s.pdf", o.ID, o.CreatedAt.Format("20060102"))
}

func (s *ArchiveService) upload(ctx context.Context, o *models.Order) (string, error) {
	pdf, err := s.renderer.PDF(ctx, o)
	if err != nil {
		return "", err
	}
	url, err := s.archiver.Upload(ctx, billFileName(o), "application/pdf", pdf)
	if err != nil {
		return "", err
	}
	if err := s.orders.SetArchiveURL(ctx, o.ID, url); err != nil {
		return "", err
	}
	return url, nil
}

// ArchiveOrder uploads the bill of one order, replacing any earlier archive link.
func (s *ArchiveService) ArchiveOrder(ctx context.Context, id int64) (*models.Order, error) {
	if !s.Enabled() {
		return nil, ErrArchiveDisabled
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, o)
	if err != nil {
		zap.S().Errorf("❌ ArchiveOrder: order id=%d: %v", id, err)
		return nil, err
	}
	o.ArchiveURL = url

	zap.S().Infof("✅ ArchiveOrder: order id=%d archived to %s", id, s.archiver.Name())
	return o, nil
}

func (s *ArchiveService) ArchiveRange(ctx context.Context, rng models.DateRange) (*models.ArchiveStats, error) {
	if !s.Enabled() {
		return nil, ErrArchiveDisabled
	}

	zap.S().Infof("🔄 Starting bill archive run (backend: %s)", s.archiver.Name())

	orders, err := s.orders.ListCreatedIn(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders to archive: %w", err)
	}

	stats := &models.ArchiveStats{Total: len(orders)}
	zap.S().Infof("📦 Processing %d orders", len(orders))

	for i := range orders {
		o := &orders[i]
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if o.ArchiveURL != "" {
			stats.Skipped++
			continue
		}
		if _, err := s.upload(ctx, o); err != nil {
			zap.S().Errorf("❌ Error archiving order id=%d: %v", o.ID, err)
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("order %d: %v", o.ID, err))
			continue
		}
		stats.Archived++
	}

	zap.S().Infof("🎉 Archive run completed: %d archived, %d skipped, %d failed, %d total",
		stats.Archived, stats.Skipped, stats.Failed, stats.Total)
	return stats, nil
}
