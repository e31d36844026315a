package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// SeedOptions sizes the demo catalogue. The same Seed always produces the
// same rows; only the generated ids differ.
type SeedOptions struct {
	Products  int
	Customers int
	Orders    int
	Seed      uint64
	// Start is the earliest creation time; defaults to 2024-01-01 UTC.
	Start time.Time
}

// DefaultSeedOptions returns a catalogue large enough to page through.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Products: 120, Customers: 60, Orders: 300, Seed: 42}
}

var (
	seedCategories = []string{"Apparel", "Books", "Garden", "Home", "Kitchen", "Outdoor", "Toys"}
	seedAdjectives = []string{"Classic", "Compact", "Deluxe", "Everyday", "Large", "Organic", "Vintage", "Wireless"}
	seedNouns      = map[string][]string{
		"Apparel": {"Hoodie", "Scarf", "T-Shirt", "Wool Socks"},
		"Books":   {"Cookbook", "Field Guide", "Notebook", "Novel"},
		"Garden":  {"Planter", "Pruner", "Seed Kit", "Watering Can"},
		"Home":    {"Candle", "Lamp", "Rug", "Throw Pillow"},
		"Kitchen": {"Chef Knife", "Kettle", "Mug", "Skillet"},
		"Outdoor": {"Backpack", "Camp Stove", "Headlamp", "Tent"},
		"Toys":    {"Kite", "Puzzle", "Robot Kit", "Yo-Yo"},
	}
	seedFirst = []string{"Ada", "Bram", "Chloe", "Dev", "Elif", "Femi", "Greta", "Hiro", "Ines", "Jonas", "Kira", "Luca"}
	seedLast  = []string{"Almeida", "Berg", "Costa", "Dahl", "Eze", "Fischer", "Grant", "Haas", "Ito", "Jensen"}
)

// Seed fills an empty database with a deterministic demo catalogue. The first
// customer is always the admin account.
func (s *SQLStore) Seed(ctx context.Context, opts SeedOptions) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	day := func(days int) time.Time {
		return opts.Start.Add(time.Duration(rng.IntN(days*24*60)) * time.Minute)
	}

	products := make([]Product, 0, opts.Products)
	for i := range opts.Products {
		cat := seedCategories[rng.IntN(len(seedCategories))]
		nouns := seedNouns[cat]
		name := seedAdjectives[rng.IntN(len(seedAdjectives))] + " " + nouns[rng.IntN(len(nouns))]
		p := Product{
			SKU:         fmt.Sprintf("%s-%04d", strings.ToUpper(cat[:3]), i+1),
			Name:        name,
			Description: fmt.Sprintf("<p>The <strong>%s</strong> from our %s range.</p><ul><li>Ships in 2 days</li><li>30 day returns</li></ul>", name, strings.ToLower(cat)),
			Category:    cat,
			Status:      ProductStatuses[weighted(rng, 6, 3, 1)],
			PriceCents:  int64(199 + rng.IntN(20000)),
			Stock:       rng.IntN(250),
			CreatedAt:   day(365),
		}
		if err := s.CreateProduct(ctx, &p); err != nil {
			return err
		}
		products = append(products, p)
	}

	customers := make([]Customer, 0, opts.Customers)
	for i := range opts.Customers {
		first := seedFirst[rng.IntN(len(seedFirst))]
		last := seedLast[rng.IntN(len(seedLast))]
		c := Customer{
			Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Name:      first + " " + last,
			CreatedAt: day(365),
		}
		if i == 0 {
			c.Email = "admin@example.com"
			c.Name = "Store Admin"
			c.Role = RoleAdmin
		}
		if err := s.CreateCustomer(ctx, &c); err != nil {
			return err
		}
		customers = append(customers, c)
	}

	if len(products) == 0 || len(customers) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range opts.Orders {
		c := customers[rng.IntN(len(customers))]
		o := Order{
			Number:     int64(1001 + i),
			CustomerID: c.ID,
			Status:     OrderStatuses[weighted(rng, 2, 3, 3, 6, 1)],
			PlacedAt:   day(365),
		}
		for range 1 + rng.IntN(4) {
			p := products[rng.IntN(len(products))]
			o.Items = append(o.Items, OrderItem{
				ProductID: p.ID,
				SKU:       p.SKU,
				Name:      p.Name,
				Quantity:  1 + rng.IntN(3),
				UnitCents: p.PriceCents,
			})
		}
		if err := s.insertOrder(ctx, tx, &o); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed orders: %w", err)
	}

	s.logger.Info("seeded catalogue",
		"products", len(products), "customers", len(customers), "orders", opts.Orders)
	return nil
}

// weighted picks an index with probability proportional to its weight.
func weighted(rng *rand.Rand, weights ...int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.IntN(total)
	for i, w := range weights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}
