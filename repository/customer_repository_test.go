package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-shop-mis/models"
)

var customerCols = []string{"id", "fullname", "phone_number", "address", "department", "is_active", "created_at", "updated_at"}

func TestCustomerRepository_Create(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Ahmad Karimi", "0700123456", sqlmock.AnyArg(), "Digital", true).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(7, "Ahmad Karimi", "0700123456", nil, "Digital", true, fixedTime, fixedTime))
	mock.ExpectCommit()

	c, err := repo.Create(context.Background(), &models.CustomerRequest{
		Fullname:    "  Ahmad Karimi ",
		PhoneNumber: "0700123456",
		Department:  "Digital",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "Ahmad Karimi", c.Fullname)
	assert.Equal(t, "", c.Address)
	assert.True(t, c.IsActive)
}

func TestCustomerRepository_CreateDuplicatePhone(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &models.CustomerRequest{Fullname: "A", PhoneNumber: "0700"})
	assert.ErrorIs(t, err, ErrDuplicatePhone)
}

func TestCustomerRepository_List(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("FROM customers ORDER BY id DESC LIMIT").WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(2, "B", nil, nil, nil, true, fixedTime, fixedTime).
			AddRow(1, "A", "0700", "Kabul", "Offset", false, fixedTime, fixedTime))

	customers, total, err := repo.List(context.Background(), models.PageRequest{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, customers, 2)
	assert.Equal(t, "Kabul", customers[1].Address)
	assert.False(t, customers[1].IsActive)
}

func TestCustomerRepository_GetByIDNotFound(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(customerCols))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_PatchOnlyGivenFields(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	address := " Herat "
	mock.ExpectQuery(`UPDATE customers SET address = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("Herat", int64(3)).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(3, "C", nil, "Herat", nil, true, fixedTime, fixedTime))

	c, err := repo.Patch(context.Background(), 3, &models.CustomerPatch{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "Herat", c.Address)
}

func TestCustomerRepository_PatchNothingReturnsCurrent(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(3, "C", nil, nil, nil, true, fixedTime, fixedTime))

	c, err := repo.Patch(context.Background(), 3, &models.CustomerPatch{})
	require.NoError(t, err)
	assert.Equal(t, "C", c.Fullname)
}

func TestCustomerRepository_Delete(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectExec("DELETE FROM customers").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM customers").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)
}

func TestCustomerRepository_SearchEscapesPattern(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectQuery("ILIKE").WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows(customerCols))

	customers, err := repo.Search(context.Background(), "50%")
	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.NotNil(t, customers)
}

func TestCustomerRepository_ListByDepartment(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewCustomerRepository(conn)

	mock.ExpectQuery("WHERE department = \\$1 ORDER BY fullname ASC").WithArgs("Offset").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(1, "Ali", nil, nil, "Offset", true, fixedTime, fixedTime))

	customers, err := repo.ListByDepartment(context.Background(), "Offset")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Offset", customers[0].Department)
}
