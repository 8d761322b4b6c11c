package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"print-shop-mis/app/controller"
	"print-shop-mis/app/middleware"
	"print-shop-mis/app/router"
	"print-shop-mis/billing"
	"print-shop-mis/config"
	"print-shop-mis/db"
	"print-shop-mis/repository"
	"print-shop-mis/service"
)

// App is the wired HTTP application.
type App struct {
	Handler http.Handler
	closers []func()
}

// Close releases what Initialize opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Initialize initializes the application. Background workers stop when ctx is done.
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	// Initialize database connection
	if err := db.InitDB(ctx, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.CloseDB() })

	engine, err := billing.Init(cfg.Order.BillingConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load billing config: %w", err)
	}

	// Redis backs the submission guard and sessions when configured; otherwise both stay in memory
	guardCfg := service.GuardConfig{Cooldown: cfg.Order.SubmissionCooldown, DuplicateWindow: cfg.Order.DuplicateWindow}
	var (
		guard    service.SubmissionGuard
		sessions service.SessionStore
	)
	if cfg.Redis.Enabled() {
		rdb, closeRedis, err := service.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeRedis)
		guard = service.NewRedisSubmissionGuard(rdb, guardCfg)
		sessions = service.NewRedisSessionStore(rdb)
	} else {
		zap.S().Warnf("⚠️ REDIS_ADDR not set, using in-memory submission guard and sessions")
		guard = service.NewMemorySubmissionGuard(guardCfg)
		sessions = service.NewMemorySessionStore()
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db.DB)
	departmentRepo := repository.NewDepartmentRepository(db.DB)
	memberRepo := repository.NewMemberRepository(db.DB)
	orderRepo := repository.NewOrderRepository(db.DB)
	expenseRepo := repository.NewExpenseRepository(db.DB)
	financeRepo := repository.NewFinanceTransactionRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	dashboardRepo := repository.NewDashboardRepository(db.DB)

	// Bill rendering and archiving
	renderer, err := service.NewBillRenderer(cfg.Shop, cfg.Bill)
	if err != nil {
		return nil, err
	}
	previews, err := service.NewPreviewCache(cfg.Bill.CacheDir)
	if err != nil {
		zap.S().Warnf("⚠️ Bill preview cache disabled: %v", err)
		previews = nil
	}
	archiver, err := NewArchiver(ctx, cfg.Archive)
	if err != nil {
		return nil, err
	}
	archiveService := service.NewArchiveService(archiver, renderer, orderRepo)

	authService := service.NewAuthService(userRepo, sessions, cfg.Session.TTL)

	// Create controllers
	controllers := &router.Controllers{
		Auth:       controller.NewAuthController(authService, cfg.Session),
		User:       controller.NewUserController(authService, userRepo),
		Customer:   controller.NewCustomerController(customerRepo),
		Department: controller.NewDepartmentController(departmentRepo),
		Member:     controller.NewMemberController(memberRepo),
		Order:      controller.NewOrderController(orderRepo, engine, guard, renderer, previews, archiveService),
		Expense:    controller.NewExpenseController(expenseRepo),
		Finance:    controller.NewFinanceTransactionController(financeRepo),
		Dashboard:  controller.NewDashboardController(dashboardRepo),
	}

	limiter := middleware.NewLimiterStore(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	limiter.StartJanitor(ctx)

	a.Handler = router.SetupRoutes(controllers, router.Options{
		Auth:        authService,
		CookieName:  cfg.Session.CookieName,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Limiter:     limiter,
		TrustXFF:    cfg.HTTP.TrustXForwardedFor,
	})

	ok = true
	return a, nil
}

// NewArchiver builds the configured bill archive backend. An empty backend returns nil, nil.
func NewArchiver(ctx context.Context, cfg config.ArchiveConfig) (service.Archiver, error) {
	switch cfg.Backend {
	case "":
		zap.S().Infof("ℹ️ ARCHIVE_BACKEND not set, bill archiving disabled")
		return nil, nil
	case "drive":
		return service.NewDriveArchiver(ctx, cfg.CredentialsPath, cfg.DriveFolderID)
	case "s3":
		return service.NewS3Archiver(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown ARCHIVE_BACKEND %q (use drive or s3)", cfg.Backend)
	}
}
