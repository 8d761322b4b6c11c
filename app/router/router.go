package router

import (
	"net/http"

	"print-shop-mis/app/controller"
	"print-shop-mis/app/middleware"
	"print-shop-mis/metrics"
	"print-shop-mis/models"
	"print-shop-mis/utils"
)

// Controllers holds one handler set per resource.
type Controllers struct {
	Auth       *controller.AuthController
	User       *controller.UserController
	Customer   *controller.CustomerController
	Department *controller.DepartmentController
	Member     *controller.MemberController
	Order      *controller.OrderController
	Expense    *controller.ExpenseController
	Finance    *controller.FinanceTransactionController
	Dashboard  *controller.DashboardController
}

// Options configures the middleware chain around the routes.
type Options struct {
	Auth        middleware.Authenticator
	CookieName  string
	CORSOrigins []string
	Limiter     *middleware.LimiterStore
	TrustXFF    bool
}

// PublicPaths are served without a session.
var PublicPaths = []string{"/ping", "/metrics", "/auth/signin"}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetupRoutes registers every route on a new mux and wraps it in the middleware chain.
func SetupRoutes(c *Controllers, opts Options) http.Handler {
	mux := http.NewServeMux()
	admin := middleware.RequireRole(models.RoleAdmin)

	mux.HandleFunc("GET /ping", pingHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth
	mux.HandleFunc("POST /auth/signin", c.Auth.Signin)
	mux.HandleFunc("POST /auth/signout", c.Auth.Signout)
	mux.HandleFunc("GET /auth/me", c.Auth.Me)

	// Users
	mux.HandleFunc("GET /users", c.User.List)
	mux.Handle("POST /users", admin(http.HandlerFunc(c.User.Create)))
	mux.HandleFunc("GET /users/{id}", c.User.Get)
	mux.HandleFunc("PATCH /users/{id}", c.User.UpdateProfile)
	mux.Handle("PATCH /users/{id}/status", admin(http.HandlerFunc(c.User.SetStatus)))
	mux.Handle("DELETE /users/{id}", admin(http.HandlerFunc(c.User.Delete)))

	// Customers
	mux.HandleFunc("POST /customer", c.Customer.Create)
	mux.HandleFunc("GET /customer", c.Customer.List)
	mux.HandleFunc("GET /customer/active", c.Customer.ListActive)
	mux.HandleFunc("GET /customer/search", c.Customer.Search)
	mux.HandleFunc("GET /customer/department/{department}", c.Customer.ListByDepartment)
	mux.HandleFunc("GET /customer/{id}", c.Customer.Get)
	mux.HandleFunc("PUT /customer/{id}", c.Customer.Update)
	mux.HandleFunc("PATCH /customer/{id}", c.Customer.Patch)
	mux.HandleFunc("PATCH /customer/{id}/address", c.Customer.UpdateAddress)
	mux.HandleFunc("PATCH /customer/{id}/department", c.Customer.UpdateDepartment)
	mux.HandleFunc("DELETE /customer/{id}", c.Customer.Delete)

	// Departments
	mux.HandleFunc("POST /department", c.Department.Create)
	mux.HandleFunc("GET /department", c.Department.List)
	mux.HandleFunc("GET /department/{id}", c.Department.Get)
	mux.HandleFunc("PUT /department/{id}", c.Department.Update)
	mux.HandleFunc("DELETE /department/{id}", c.Department.Delete)
	mux.HandleFunc("GET /department/{id}/distribution", c.Department.Distribution)

	// Members
	mux.HandleFunc("POST /member", c.Member.Create)
	mux.HandleFunc("GET /member", c.Member.List)
	mux.HandleFunc("GET /member/{id}", c.Member.Get)
	mux.HandleFunc("PUT /member/{id}", c.Member.Update)
	mux.HandleFunc("DELETE /member/{id}", c.Member.Delete)

	// Orders
	mux.HandleFunc("GET /order/sizes", c.Order.Sizes)
	mux.HandleFunc("POST /order", c.Order.Create)
	mux.HandleFunc("GET /order", c.Order.List)
	mux.HandleFunc("POST /order/archive", c.Order.ArchiveRange)
	mux.HandleFunc("GET /order/{id}", c.Order.Get)
	mux.HandleFunc("PUT /order/{id}", c.Order.Update)
	mux.HandleFunc("DELETE /order/{id}", c.Order.Delete)
	mux.HandleFunc("PATCH /order/{id}/deliver", c.Order.Deliver)
	mux.HandleFunc("POST /order/{id}/payment", c.Order.Payment)
	mux.HandleFunc("GET /order/{id}/bill", c.Order.BillHTML)
	mux.HandleFunc("GET /order/{id}/bill.pdf", c.Order.BillPDF)
	mux.HandleFunc("GET /order/{id}/bill.png", c.Order.BillPNG)
	mux.HandleFunc("POST /order/{id}/archive", c.Order.Archive)

	// Expenses
	mux.HandleFunc("POST /expense", c.Expense.Create)
	mux.HandleFunc("GET /expense", c.Expense.List)
	mux.HandleFunc("GET /expense/summary", c.Expense.Summary)
	mux.HandleFunc("GET /expense/report", c.Expense.Report)
	mux.HandleFunc("GET /expense/{id}", c.Expense.Get)
	mux.Handle("PUT /expense/{id}", admin(http.HandlerFunc(c.Expense.Update)))
	mux.Handle("DELETE /expense/{id}", admin(http.HandlerFunc(c.Expense.Delete)))

	// Finance ledger
	mux.HandleFunc("POST /finance/transactions", c.Finance.Create)
	mux.HandleFunc("GET /finance/transactions", c.Finance.List)

	// Dashboard
	mux.HandleFunc("GET /dashboard/summary", c.Dashboard.Summary)

	route := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	return middleware.Chain(mux,
		middleware.Recover,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.Metrics(route),
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimit(middleware.RateLimitOptions{
			Store: opts.Limiter,
			KeyFn: middleware.DefaultKeyFunc(opts.TrustXFF),
		}),
		middleware.Auth(middleware.AuthOptions{
			Auth:       opts.Auth,
			CookieName: opts.CookieName,
			Public:     PublicPaths,
		}),
	)
}
