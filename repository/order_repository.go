package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-shop-mis/models"
)

const orderColumns = `id, customer_name, customer_phone, digital_id, total_money_digital, total_money_offset,
	total, recip, remained, is_delivered, archive_url, created_by, created_at, updated_at`

// OrderRepository handles database operations for orders and their items
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(conn *sql.DB) *OrderRepository {
	return &OrderRepository{db: conn}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var phone, digitalID, archiveURL sql.NullString
	var createdBy sql.NullInt64
	err := row.Scan(
		&o.ID,
		&o.Customer.Name,
		&phone,
		&digitalID,
		&o.TotalMoneyDigital,
		&o.TotalMoneyOffset,
		&o.Total,
		&o.Recip,
		&o.Remained,
		&o.IsDelivered,
		&archiveURL,
		&createdBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Customer.PhoneNumber = phone.String
	o.DigitalID = models.DigitalID(digitalID.String)
	o.ArchiveURL = archiveURL.String
	o.CreatedBy = createdBy.Int64
	o.Digital = []models.DigitalItem{}
	o.Offset = []models.OffsetItem{}
	return &o, nil
}

func nullUserID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

// insertItems writes the order lines in their submitted order.
func insertItems(ctx context.Context, q dbtx, orderID int64, o *models.Order) error {
	const query = `
		INSERT INTO order_items (order_id, kind, position, name, quantity, height, width, area, price_per_unit, money)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for i, item := range o.Digital {
		if _, err := q.ExecContext(ctx, query, orderID, models.ItemKindDigital, i, item.Name,
			item.Quantity, item.Height, item.Weight, item.Area, item.PricePerUnit, item.Money); err != nil {
			return fmt.Errorf("failed to insert digital item %d: %w", i+1, err)
		}
	}
	for i, item := range o.Offset {
		if _, err := q.ExecContext(ctx, query, orderID, models.ItemKindOffset, i, item.Name,
			item.Quantity, decimal.Zero, decimal.Zero, decimal.Zero, item.PricePerUnit, item.Money); err != nil {
			return fmt.Errorf("failed to insert offset item %d: %w", i+1, err)
		}
	}
	return nil
}

// loadItems attaches the stored lines to each order.
func loadItems(ctx context.Context, q dbtx, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT order_id, kind, name, quantity, height, width, area, price_per_unit, money
		FROM order_items
		WHERE order_id = ANY($1::bigint[])
		ORDER BY order_id, kind, position`, int64Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var kind, name string
		var quantity, height, width, area, price, money decimal.Decimal
		if err := rows.Scan(&orderID, &kind, &name, &quantity, &height, &width, &area, &price, &money); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o, ok := byID[orderID]
		if !ok {
			continue
		}
		switch kind {
		case models.ItemKindDigital:
			o.Digital = append(o.Digital, models.DigitalItem{
				Name: name, Quantity: quantity, Height: height, Weight: width, Area: area, PricePerUnit: price, Money: money,
			})
		case models.ItemKindOffset:
			o.Offset = append(o.Offset, models.OffsetItem{
				Name: name, Quantity: quantity, PricePerUnit: price, Money: money,
			})
		}
	}
	return rows.Err()
}

func (r *OrderRepository) getForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return o, nil
}

// Create stores a priced order with its items. Money received up front is booked as income.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	zap.S().Infof("📦 CreateOrder: customer=%s, digital=%d, offset=%d, total=%s",
		order.Customer.Name, len(order.Digital), len(order.Offset), order.Total)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stored, err := scanOrder(tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, customer_phone, digital_id, total_money_digital, total_money_offset,
			total, recip, remained, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+orderColumns,
		order.Customer.Name,
		nullString(order.Customer.PhoneNumber),
		nullString(string(order.DigitalID)),
		order.TotalMoneyDigital,
		order.TotalMoneyOffset,
		order.Total,
		order.Recip,
		order.Remained,
		nullUserID(order.CreatedBy),
	))
	if err != nil {
		zap.S().Errorf("❌ CreateOrder: Error inserting order: %v", err)
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	if err := insertItems(ctx, tx, stored.ID, order); err != nil {
		return nil, err
	}

	if err := recordTransaction(ctx, tx, ledgerEntry{
		Type:     models.TransactionIncome,
		Source:   models.SourceOrder,
		SourceID: stored.ID,
		Amount:   order.Recip,
		Notes:    "Received on order for " + order.Customer.Name,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	stored.Digital = append(stored.Digital, order.Digital...)
	stored.Offset = append(stored.Offset, order.Offset...)

	zap.S().Infof("✅ CreateOrder: Successfully created order id=%d", stored.ID)
	return stored, nil
}

// List returns one page of orders, newest id first, and the total count.
func (r *OrderRepository) List(ctx context.Context, page models.PageRequest) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders, err := r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListCreatedIn returns every order created in the range, archived or not, oldest first.
func (r *OrderRepository) ListCreatedIn(ctx context.Context, rng models.DateRange) ([]models.Order, error) {
	conditions, args := appendDateRange(nil, nil, "created_at", rng)

	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders`+whereClause(conditions)+` ORDER BY id ASC`,
		args...)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	var ptrs []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			zap.S().Errorf("❌ Orders: Error scanning order: %v", err)
			continue
		}
		ptrs = append(ptrs, o)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if err := loadItems(ctx, r.db, ptrs); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ptrs))
	for _, o := range ptrs {
		orders = append(orders, *o)
	}
	return orders, nil
}

// GetByID returns an order with its items or ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if err := loadItems(ctx, r.db, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Update replaces the items and totals of an order. A change in the received amount is booked
// as an adjustment: income when it grows, expense when it shrinks.
func (r *OrderRepository) Update(ctx context.Context, id int64, order *models.Order) (*models.Order, error) {
	zap.S().Infof("🔄 UpdateOrder: id=%d, total=%s, recip=%s", id, order.Total, order.Recip)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	stored, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders SET
			customer_name = $1, customer_phone = $2, digital_id = $3,
			total_money_digital = $4, total_money_offset = $5, total = $6, recip = $7, remained = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING `+orderColumns,
		order.Customer.Name,
		nullString(order.Customer.PhoneNumber),
		nullString(string(order.DigitalID)),
		order.TotalMoneyDigital,
		order.TotalMoneyOffset,
		order.Total,
		order.Recip,
		order.Remained,
		id,
	))
	if err != nil {
		zap.S().Errorf("❌ UpdateOrder: Error updating order: %v", err)
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear order items: %w", err)
	}
	if err := insertItems(ctx, tx, id, order); err != nil {
		return nil, err
	}

	diff := order.Recip.Sub(current.Recip)
	entry := ledgerEntry{Source: models.SourceOrderAdjustment, SourceID: id, Amount: diff.Abs()}
	switch {
	case diff.IsPositive():
		entry.Type = models.TransactionIncome
		entry.Notes = "Received amount increased on order update"
	case diff.IsNegative():
		entry.Type = models.TransactionExpense
		entry.Notes = "Received amount decreased on order update"
	}
	if entry.Type != "" {
		if err := recordTransaction(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	stored.Digital = append(stored.Digital, order.Digital...)
	stored.Offset = append(stored.Offset, order.Offset...)

	zap.S().Infof("✅ UpdateOrder: Successfully updated order id=%d", id)
	return stored, nil
}

// Delete removes an order and, through the foreign key, its items. Ledger rows are kept.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("order %d", id))
}

// SetDelivered flips the delivery flag.
func (r *OrderRepository) SetDelivered(ctx context.Context, id int64, delivered bool) (*models.Order, error) {
	zap.S().Infof("📦 SetDelivered: id=%d, delivered=%t", id, delivered)

	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders SET is_delivered = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+orderColumns, delivered, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order delivery: %w", err)
	}
	if err := loadItems(ctx, r.db, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// AddPayment records money received against the remaining balance of an order.
func (r *OrderRepository) AddPayment(ctx context.Context, id int64, amount decimal.Decimal) (*models.Order, error) {
	zap.S().Infof("💰 AddPayment: id=%d, amount=%s", id, amount)

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, models.NewValidationError("Payment amount must be greater than 0")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(current.Remained) {
		zap.S().Errorf("❌ AddPayment: amount %s exceeds remaining %s on order id=%d", amount, current.Remained, id)
		return nil, ErrOverpayment
	}

	recip := current.Recip.Add(amount)
	remained := current.Total.Sub(recip)

	o, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders SET recip = $1, remained = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+orderColumns, recip, remained, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update order payment: %w", err)
	}

	if err := recordTransaction(ctx, tx, ledgerEntry{
		Type:     models.TransactionIncome,
		Source:   models.SourceOrder,
		SourceID: id,
		Amount:   amount,
		Notes:    "Payment on order for " + current.Customer.Name,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	if err := loadItems(ctx, r.db, []*models.Order{o}); err != nil {
		return nil, err
	}

	zap.S().Infof("✅ AddPayment: order id=%d remaining=%s", id, o.Remained)
	return o, nil
}

// SetArchiveURL stores where the bill of an order was archived.
func (r *OrderRepository) SetArchiveURL(ctx context.Context, id int64, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET archive_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update archive url: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("order %d", id))
}
