package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"print-shop-mis/models"
	"print-shop-mis/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*models.User
	next  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}, next: 1}
}

var _ repository.UserRepositoryInterface = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(_ context.Context, fullname, email, hash, role string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	u := &models.User{ID: f.next, Fullname: fullname, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	f.users[u.ID] = u
	f.next++
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id int64, fullname, email *string, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if fullname != nil && *fullname != "" {
		u.Fullname = *fullname
	}
	if email != nil && *email != "" {
		u.Email = *email
	}
	if hash != "" {
		u.PasswordHash = hash
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) SetActive(_ context.Context, id int64, active bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsActive = active
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeOrderRepo struct {
	orders      map[int64]*models.Order
	inRange     []models.Order
	archiveURLs map[int64]string
}

var _ repository.OrderRepositoryInterface = (*fakeOrderRepo)(nil)

func (f *fakeOrderRepo) Create(context.Context, *models.Order) (*models.Order, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeOrderRepo) List(context.Context, models.PageRequest) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeOrderRepo) ListCreatedIn(context.Context, models.DateRange) ([]models.Order, error) {
	return f.inRange, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) Update(context.Context, int64, *models.Order) (*models.Order, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeOrderRepo) Delete(context.Context, int64) error { return nil }

func (f *fakeOrderRepo) SetDelivered(context.Context, int64, bool) (*models.Order, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeOrderRepo) AddPayment(context.Context, int64, decimal.Decimal) (*models.Order, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeOrderRepo) SetArchiveURL(_ context.Context, id int64, url string) error {
	if f.archiveURLs == nil {
		f.archiveURLs = map[int64]string{}
	}
	f.archiveURLs[id] = url
	return nil
}

type fakeRenderer struct {
	failFor map[int64]bool
}

func (f *fakeRenderer) RenderHTML(o *models.Order) ([]byte, error) {
	return []byte(fmt.Sprintf("<html>%d</html>", o.ID)), nil
}

func (f *fakeRenderer) PDF(_ context.Context, o *models.Order) ([]byte, error) {
	if f.failFor[o.ID] {
		return nil, fmt.Errorf("chrome crashed")
	}
	return []byte("%PDF-1.4"), nil
}

func (f *fakeRenderer) PNG(context.Context, *models.Order) ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeArchiver struct {
	uploads []string
}

func (f *fakeArchiver) Name() string { return "fake" }

func (f *fakeArchiver) Upload(_ context.Context, name, contentType string, data []byte) (string, error) {
	f.uploads = append(f.uploads, name)
	return "https://archive.example/" + name, nil
}
