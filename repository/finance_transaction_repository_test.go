package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-shop-mis/models"
)

var financeCols = []string{"id", "type", "source", "source_id", "occurred_at", "amount", "category", "notes", "created_at"}

func TestFinanceTransactionRepository_Create(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewFinanceTransactionRepository(conn)

	mock.ExpectQuery("INSERT INTO finance_transactions").
		WithArgs("expense", "manual", int64(0), sqlmock.AnyArg(), "5000", "rent", nil).
		WillReturnRows(sqlmock.NewRows(financeCols).
			AddRow(1, "expense", "manual", 0, fixedTime, "5000", "rent", nil, fixedTime))

	tx, err := repo.Create(context.Background(), &models.CreateFinanceTransactionRequest{
		Type:       "expense",
		Source:     "manual",
		OccurredAt: fixedTime.Format("2006-01-02T15:04:05Z07:00"),
		Amount:     dec("5000"),
		Category:   "rent",
	})
	require.NoError(t, err)
	assert.Equal(t, "rent", tx.Category)
	assert.Equal(t, "", tx.Notes)
}

func TestFinanceTransactionRepository_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateFinanceTransactionRequest
		want string
	}{
		{name: "type", req: models.CreateFinanceTransactionRequest{Type: "transfer", Amount: dec("1")}, want: "type must be 'income' or 'expense'"},
		{name: "amount", req: models.CreateFinanceTransactionRequest{Type: "income", Source: "manual", Amount: decimal.Zero}, want: "amount must be greater than 0"},
		{name: "amount rounds to zero", req: models.CreateFinanceTransactionRequest{Type: "income", Source: "manual", Amount: dec("0.004")}, want: "amount must be greater than 0"},
		{name: "source", req: models.CreateFinanceTransactionRequest{Type: "income", Source: "  ", Amount: dec("1")}, want: "source is required"},
		{name: "occurredAt", req: models.CreateFinanceTransactionRequest{Type: "income", Source: "manual", Amount: dec("1"), OccurredAt: "yesterday"}, want: "invalid occurredAt format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, _ := newMock(t)
			repo := NewFinanceTransactionRepository(conn)

			_, err := repo.Create(context.Background(), &tt.req)
			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Message, tt.want)
		})
	}
}

func TestFinanceTransactionRepository_ListFilters(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewFinanceTransactionRepository(conn)

	from := fixedTime
	mock.ExpectQuery("WHERE type = \\$1 AND occurred_at >= \\$2 ORDER BY occurred_at DESC").
		WithArgs("income", from).
		WillReturnRows(sqlmock.NewRows(financeCols).
			AddRow(3, "income", "order", 11, fixedTime, "500", nil, "Payment", fixedTime))

	list, err := repo.List(context.Background(), models.FinanceTransactionFilter{
		Type:  "income",
		Range: models.DateRange{From: &from},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(11), list[0].SourceID)
}

func TestRecordTransaction_SkipsNonPositive(t *testing.T) {
	conn, _ := newMock(t)
	require.NoError(t, recordTransaction(context.Background(), conn, ledgerEntry{Type: "income", Amount: decimal.Zero}))
}
