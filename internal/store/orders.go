package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var orderSpec = tableSpec{
	from:    "orders o JOIN customers c ON c.id = o.customer_id",
	columns: "o.id, o.number, o.customer_id, c.email, o.status, o.total_cents, o.placed_at",
	id:      "o.id",
	fields: map[string]field{
		"number":    {expr: "o.number", kind: kindNumber},
		"customer":  {expr: "c.email", kind: kindText, searchable: true},
		"status":    {expr: "o.status", kind: kindEnum, searchable: true},
		"total":     {expr: "o.total_cents", kind: kindNumber, scale: 100},
		"placed_at": {expr: "o.placed_at", kind: kindTime},
	},
}

// OrderFields lists the fields orders can be filtered and sorted by.
func OrderFields() []string { return orderSpec.Fields() }

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.Number, &o.CustomerID, &o.CustomerEmail, &status, &o.TotalCents, &o.PlacedAt)
	o.Status = OrderStatus(status)
	return o, err
}

// ListOrders returns one page of orders matching q, each with its line items.
func (s *SQLStore) ListOrders(ctx context.Context, q GridQuery) (Page[Order], error) {
	page, err := list(ctx, s, orderSpec, q, scanOrder)
	if err != nil {
		return page, err
	}
	if err := s.loadItems(ctx, page.Items); err != nil {
		return page, err
	}
	return page, nil
}

// GetOrder returns an order by id with its line items.
func (s *SQLStore) GetOrder(ctx context.Context, id string) (Order, error) {
	if s.db == nil {
		return Order{}, ErrNotOpen
	}
	row := s.queryRow(ctx, "SELECT "+orderSpec.columns+" FROM "+orderSpec.from+" WHERE o.id = ?", id)
	o, err := getOne(row, "order", id, scanOrder)
	if err != nil {
		return o, err
	}
	orders := []Order{o}
	if err := s.loadItems(ctx, orders); err != nil {
		return o, err
	}
	return orders[0], nil
}

// loadItems fills the Items of each order with one query.
func (s *SQLStore) loadItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]int, len(orders))
	args := make([]any, len(orders))
	for i, o := range orders {
		byID[o.ID] = i
		args[i] = o.ID
		orders[i].Items = []OrderItem{}
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(orders)), ", ")

	rows, err := s.query(ctx, `
		SELECT id, order_id, product_id, sku, name, quantity, unit_cents
		FROM order_items
		WHERE order_id IN (`+marks+`)
		ORDER BY order_id, sku, id
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SKU, &it.Name, &it.Quantity, &it.UnitCents); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := byID[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

// CreateOrder inserts an order and its items in one transaction. The total is
// computed from the items; a zero Number takes the next free order number.
func (s *SQLStore) CreateOrder(ctx context.Context, o *Order) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order needs at least one item")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertOrder(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (s *SQLStore) insertOrder(ctx context.Context, tx *sql.Tx, o *Order) error {
	if o.ID == "" {
		o.ID = generateID()
	}
	if o.PlacedAt.IsZero() {
		o.PlacedAt = now()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	o.PlacedAt = storedTime(o.PlacedAt)
	if o.Number == 0 {
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(number), 1000) + 1 FROM orders").Scan(&o.Number); err != nil {
			return fmt.Errorf("failed to allocate order number: %w", err)
		}
	}

	o.TotalCents = 0
	for _, it := range o.Items {
		o.TotalCents += int64(it.Quantity) * it.UnitCents
	}

	_, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO orders (id, number, customer_id, status, total_cents, placed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), o.ID, o.Number, o.CustomerID, string(o.Status), o.TotalCents, o.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = generateID()
		}
		it.OrderID = o.ID
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO order_items (id, order_id, product_id, sku, name, quantity, unit_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), it.ID, it.OrderID, it.ProductID, it.SKU, it.Name, it.Quantity, it.UnitCents)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// UpdateOrderStatus moves an order to a new status if the lifecycle allows it.
func (s *SQLStore) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, status) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, status)
	}
	// The status guard keeps a concurrent change from being overwritten.
	res, err := s.exec(ctx, "UPDATE orders SET status = ? WHERE id = ? AND status = ?", string(status), id, string(o.Status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return expectOne(res, "order", id)
}
