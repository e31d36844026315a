// Package store persists the back-office catalogue: products, customers, orders
// and settings. It runs on SQLite (modernc) or PostgreSQL (pgx) and answers the
// paged, filtered and sorted queries issued by the admin grids.
package store

import (
	"errors"
	"time"
)

// Errors returned by the store.
var (
	ErrNotOpen           = errors.New("database not opened")
	ErrNotFound          = errors.New("not found")
	ErrProtected         = errors.New("record is protected")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownField      = errors.New("unknown field")
	ErrUnknownDialect    = errors.New("unknown dialect")
)

// ProductStatus is the publication state of a product.
type ProductStatus string

// Product statuses.
const (
	ProductActive   ProductStatus = "active"
	ProductDraft    ProductStatus = "draft"
	ProductArchived ProductStatus = "archived"
)

// ProductStatuses lists every product status in display order.
var ProductStatuses = []ProductStatus{ProductActive, ProductDraft, ProductArchived}

// Product is a catalogue entry.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string // HTML
	Category    string
	Status      ProductStatus
	PriceCents  int64
	Stock       int
	CreatedAt   time.Time
}

// Role is a customer's account role.
type Role string

// Customer roles.
const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Customer is a storefront account.
type Customer struct {
	ID         string
	Email      string
	Name       string
	Role       Role
	CreatedAt  time.Time
	OrderCount int
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// orderTransitions maps each status to the statuses it may move to.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatus returns the forward status of an order, if it has one.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	next := orderTransitions[s]
	if len(next) == 0 || next[0] == OrderCancelled {
		return "", false
	}
	return next[0], true
}

// Order is a placed order with its line items.
type Order struct {
	ID            string
	Number        int64
	CustomerID    string
	CustomerEmail string
	Status        OrderStatus
	TotalCents    int64
	PlacedAt      time.Time
	Items         []OrderItem
}

// OrderItem is one order line.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	SKU       string
	Name      string
	Quantity  int
	UnitCents int64
}

// Setting is one stored key/value pair.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
