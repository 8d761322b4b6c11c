package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"print-shop-mis/models"
)

// CustomerRepositoryInterface defines the contract for customer repository operations
type CustomerRepositoryInterface interface {
	Create(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Customer, int64, error)
	ListActive(ctx context.Context) ([]models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	Update(ctx context.Context, id int64, req *models.CustomerRequest) (*models.Customer, error)
	Patch(ctx context.Context, id int64, patch *models.CustomerPatch) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, term string) ([]models.Customer, error)
	ListByDepartment(ctx context.Context, department string) ([]models.Customer, error)
}

// DepartmentRepositoryInterface defines the contract for department repository operations
type DepartmentRepositoryInterface interface {
	Create(ctx context.Context, name string, isActive bool, holding models.Holding) (*models.Department, error)
	List(ctx context.Context, filter models.DepartmentListFilter) ([]models.Department, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	Update(ctx context.Context, id int64, upd *models.DepartmentUpdate) (*models.Department, error)
	Delete(ctx context.Context, id int64) error
}

// MemberRepositoryInterface defines the contract for member repository operations
type MemberRepositoryInterface interface {
	Create(ctx context.Context, req *models.MemberRequest) (*models.Member, error)
	List(ctx context.Context, active *bool) ([]models.Member, error)
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	Update(ctx context.Context, id int64, req *models.MemberRequest) (*models.Member, error)
	Delete(ctx context.Context, id int64) error
}

// OrderRepositoryInterface defines the contract for order repository operations
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Order, int64, error)
	ListCreatedIn(ctx context.Context, rng models.DateRange) ([]models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Update(ctx context.Context, id int64, order *models.Order) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
	SetDelivered(ctx context.Context, id int64, delivered bool) (*models.Order, error)
	AddPayment(ctx context.Context, id int64, amount decimal.Decimal) (*models.Order, error)
	SetArchiveURL(ctx context.Context, id int64, url string) error
}

// ExpenseRepositoryInterface defines the contract for expense repository operations
type ExpenseRepositoryInterface interface {
	Create(ctx context.Context, req *models.ExpenseRequest) (*models.Expense, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Expense, int64, error)
	ListRange(ctx context.Context, rng models.DateRange) ([]models.Expense, error)
	Summary(ctx context.Context, rng models.DateRange) (*models.ExpenseSummary, error)
	GetByID(ctx context.Context, id int64) (*models.Expense, error)
	Update(ctx context.Context, id int64, req *models.ExpenseRequest) (*models.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// FinanceTransactionRepositoryInterface defines the contract for ledger operations
type FinanceTransactionRepositoryInterface interface {
	Create(ctx context.Context, req *models.CreateFinanceTransactionRequest) (*models.FinanceTransaction, error)
	List(ctx context.Context, filter models.FinanceTransactionFilter) ([]models.FinanceTransaction, error)
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, fullname, email, passwordHash, role string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, fullname, email *string, passwordHash string) (*models.User, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// DashboardRepositoryInterface defines the contract for aggregate reporting
type DashboardRepositoryInterface interface {
	Summary(ctx context.Context, rng models.DateRange) (*models.DashboardSummary, error)
}
