package store

import (
	"context"
	"fmt"
	"strings"
)

var customerSpec = tableSpec{
	from: "customers c LEFT JOIN (SELECT customer_id, COUNT(*) AS order_count FROM orders GROUP BY customer_id) oc" +
		" ON oc.customer_id = c.id",
	columns: "c.id, c.email, c.name, c.role, c.created_at, COALESCE(oc.order_count, 0)",
	id:      "c.id",
	fields: map[string]field{
		"email":      {expr: "c.email", kind: kindText, searchable: true},
		"name":       {expr: "c.name", kind: kindText, searchable: true},
		"role":       {expr: "c.role", kind: kindEnum},
		"created_at": {expr: "c.created_at", kind: kindTime},
		"orders":     {expr: "COALESCE(oc.order_count, 0)", kind: kindNumber},
	},
}

// CustomerFields lists the fields customers can be filtered and sorted by.
func CustomerFields() []string { return customerSpec.Fields() }

func scanCustomer(row rowScanner) (Customer, error) {
	var c Customer
	var role string
	err := row.Scan(&c.ID, &c.Email, &c.Name, &role, &c.CreatedAt, &c.OrderCount)
	c.Role = Role(role)
	return c, err
}

// ListCustomers returns one page of customers matching q.
func (s *SQLStore) ListCustomers(ctx context.Context, q GridQuery) (Page[Customer], error) {
	return list(ctx, s, customerSpec, q, scanCustomer)
}

// GetCustomer returns a customer by id.
func (s *SQLStore) GetCustomer(ctx context.Context, id string) (Customer, error) {
	if s.db == nil {
		return Customer{}, ErrNotOpen
	}
	row := s.queryRow(ctx, "SELECT "+customerSpec.columns+" FROM "+customerSpec.from+" WHERE c.id = ?", id)
	return getOne(row, "customer", id, scanCustomer)
}

// CreateCustomer inserts a customer, assigning an id and creation time when unset.
func (s *SQLStore) CreateCustomer(ctx context.Context, c *Customer) error {
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("invalid email %q", c.Email)
	}
	if c.ID == "" {
		c.ID = generateID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	if c.Role == "" {
		c.Role = RoleCustomer
	}
	c.CreatedAt = storedTime(c.CreatedAt)

	_, err := s.exec(ctx, `
		INSERT INTO customers (id, email, name, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, strings.ToLower(c.Email), c.Name, string(c.Role), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// DeleteCustomer removes a customer and their orders. Admin accounts are
// protected.
func (s *SQLStore) DeleteCustomer(ctx context.Context, id string) error {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if c.Role == RoleAdmin {
		return fmt.Errorf("%w: %s is an admin", ErrProtected, c.Email)
	}
	res, err := s.exec(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return expectOne(res, "customer", id)
}
