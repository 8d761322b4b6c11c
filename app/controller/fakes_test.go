package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"print-shop-mis/app/middleware"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/service"
)

var errStore = errors.New("connection reset")

// fakeCustomerRepo embeds the interface so only the methods a test needs are implemented.
type fakeCustomerRepo struct {
	repository.CustomerRepositoryInterface
	customers map[int64]*models.Customer
	created   []*models.CustomerRequest
	search    []models.Customer
	err       error
}

func (f *fakeCustomerRepo) Create(_ context.Context, req *models.CustomerRequest) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &models.Customer{ID: int64(len(f.created)), Fullname: req.Fullname, PhoneNumber: req.PhoneNumber}, nil
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeCustomerRepo) Search(_ context.Context, _ string) ([]models.Customer, error) {
	return f.search, f.err
}

type fakeDepartmentRepo struct {
	repository.DepartmentRepositoryInterface
	created []models.Holding
}

func (f *fakeDepartmentRepo) Create(_ context.Context, name string, isActive bool, holding models.Holding) (*models.Department, error) {
	f.created = append(f.created, holding)
	return &models.Department{ID: 3, Name: name, IsActive: isActive, Holding: holding}, nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*models.Department, error) {
	if id != 3 {
		return nil, repository.ErrNotFound
	}
	return &models.Department{ID: 3, Name: "Offset", IsActive: true, Holding: models.Holding{1: decimal.NewFromInt(60), 2: decimal.NewFromInt(40)}}, nil
}

type fakeOrderRepo struct {
	repository.OrderRepositoryInterface
	mu      sync.Mutex
	orders  map[int64]*models.Order
	nextID  int64
	failNew bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order), nextID: 1}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNew {
		return nil, errStore
	}
	cp := *o
	cp.ID = f.nextID
	cp.CreatedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	cp.UpdatedAt = cp.CreatedAt
	f.nextID++
	f.orders[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) AddPayment(_ context.Context, id int64, amount decimal.Decimal) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if amount.GreaterThan(o.Remained) {
		return nil, repository.ErrOverpayment
	}
	o.Recip = o.Recip.Add(amount)
	o.Remained = o.Total.Sub(o.Recip)
	return o, nil
}

type fakeRenderer struct {
	png   []byte
	calls int
}

func (f *fakeRenderer) RenderHTML(o *models.Order) ([]byte, error) {
	return []byte("<h1>Bill #" + o.Customer.Name + "</h1>"), nil
}

func (f *fakeRenderer) PDF(context.Context, *models.Order) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func (f *fakeRenderer) PNG(context.Context, *models.Order) ([]byte, error) {
	f.calls++
	return f.png, nil
}

type fakeArchive struct{}

func (fakeArchive) Enabled() bool { return false }

func (fakeArchive) ArchiveOrder(context.Context, int64) (*models.Order, error) {
	return nil, service.ErrArchiveDisabled
}

func (fakeArchive) ArchiveRange(context.Context, models.DateRange) (*models.ArchiveStats, error) {
	return nil, service.ErrArchiveDisabled
}

type fakeExpenseRepo struct {
	repository.ExpenseRepositoryInterface
	expenses []models.Expense
	rng      models.DateRange
}

func (f *fakeExpenseRepo) ListRange(_ context.Context, rng models.DateRange) ([]models.Expense, error) {
	f.rng = rng
	return f.expenses, nil
}

type fakeAuth struct {
	service.AuthServiceInterface
	signedOut []string
}

func (f *fakeAuth) Signin(_ context.Context, email, password string) (*models.SigninResponse, *models.Session, error) {
	if email != "sara@example.com" || password != "secret1" {
		return nil, nil, service.ErrInvalidCredentials
	}
	u := &models.User{ID: 1, Fullname: "Sara", Email: email, Role: models.RoleAdmin, IsActive: true}
	s := &models.Session{Token: "tok-1", UserID: 1, Role: u.Role, ExpiresAt: time.Now().Add(time.Hour)}
	return &models.SigninResponse{Token: s.Token, User: u}, s, nil
}

func (f *fakeAuth) Signout(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

type fakeUserRepo struct {
	repository.UserRepositoryInterface
	active map[int64]bool
}

func (f *fakeUserRepo) SetActive(_ context.Context, id int64, active bool) (*models.User, error) {
	if _, ok := f.active[id]; !ok {
		return nil, repository.ErrNotFound
	}
	f.active[id] = active
	return &models.User{ID: id, IsActive: active}, nil
}

// newRequest builds a request with an optional JSON body, signed-in user and path values.
func newRequest(t *testing.T, method, target, body string, user *models.User, pathValues ...string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}
