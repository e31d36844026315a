package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

var productSpec = tableSpec{
	from:    "products",
	columns: "id, sku, name, description, category, status, price_cents, stock, created_at",
	id:      "id",
	fields: map[string]field{
		"sku":        {expr: "sku", kind: kindText, searchable: true},
		"name":       {expr: "name", kind: kindText, searchable: true},
		"category":   {expr: "category", kind: kindEnum, searchable: true},
		"status":     {expr: "status", kind: kindEnum},
		"price":      {expr: "price_cents", kind: kindNumber, scale: 100},
		"stock":      {expr: "stock", kind: kindNumber},
		"created_at": {expr: "created_at", kind: kindTime},
	},
}

// ProductFields lists the fields products can be filtered and sorted by.
func ProductFields() []string { return productSpec.Fields() }

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var status string
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &status, &p.PriceCents, &p.Stock, &p.CreatedAt)
	p.Status = ProductStatus(status)
	return p, err
}

// ListProducts returns one page of products matching q.
func (s *SQLStore) ListProducts(ctx context.Context, q GridQuery) (Page[Product], error) {
	return list(ctx, s, productSpec, q, scanProduct)
}

// GetProduct returns a product by id.
func (s *SQLStore) GetProduct(ctx context.Context, id string) (Product, error) {
	if s.db == nil {
		return Product{}, ErrNotOpen
	}
	row := s.queryRow(ctx, "SELECT "+productSpec.columns+" FROM products WHERE id = ?", id)
	return getOne(row, "product", id, scanProduct)
}

// Categories returns the distinct product categories in name order.
func (s *SQLStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, "SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateProduct inserts a product, assigning an id and creation time when unset.
func (s *SQLStore) CreateProduct(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.SKU) == "" || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product needs a sku and a name")
	}
	if p.ID == "" {
		p.ID = generateID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	if p.Status == "" {
		p.Status = ProductDraft
	}
	p.CreatedAt = storedTime(p.CreatedAt)

	_, err := s.exec(ctx, `
		INSERT INTO products (id, sku, name, description, category, status, price_cents, stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.SKU, p.Name, p.Description, p.Category, string(p.Status), p.PriceCents, p.Stock, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// SetProductStatus changes a product's publication status.
func (s *SQLStore) SetProductStatus(ctx context.Context, id string, status ProductStatus) error {
	if !slices.Contains(ProductStatuses, status) {
		return fmt.Errorf("unknown product status %q", status)
	}
	res, err := s.exec(ctx, "UPDATE products SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	return expectOne(res, "product", id)
}

// DeleteProduct removes a product. Order lines keep their copied sku and name.
func (s *SQLStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.exec(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectOne(res, "product", id)
}
