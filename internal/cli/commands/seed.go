package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/admingrid/internal/cli/output"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := store.DefaultSeedOptions()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with demo data",
		Long: `Fill an empty database with a demo catalogue of products, customers and
orders. The same --seed always produces the same rows.

A database that already holds products is left untouched.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, csv`,
		Example: `  # Seed the default catalogue
  admingrid seed

  # A small catalogue, reported as JSON
  admingrid seed --products 20 --customers 5 --orders 30 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Products, "products", opts.Products, "Number of products")
	cmd.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "Number of customers")
	cmd.Flags().IntVar(&opts.Orders, "orders", opts.Orders, "Number of orders")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "Random seed")

	return cmd
}

func runSeed(cmd *cobra.Command, opts store.SeedOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer

	counts, err := countRows(ctx, cc.Store)
	if err != nil {
		return err
	}
	if counts[0].rows > 0 {
		r.Warning(fmt.Sprintf("database already holds %d products; nothing seeded", counts[0].rows))
		return renderCounts(r, counts)
	}

	var spin *output.Spinner
	if r.IsTTY() {
		spin = r.NewSpinner("Seeding demo data")
		spin.Start()
	}
	if err := cc.Store.Seed(ctx, opts); err != nil {
		if spin != nil {
			spin.Fail("Seeding failed")
		}
		return fmt.Errorf("failed to seed database: %w", err)
	}
	if spin != nil {
		spin.Success("Seeded demo data")
	}
	cc.Logger.Info("database seeded", "products", opts.Products, "customers", opts.Customers, "orders", opts.Orders)

	counts, err = countRows(ctx, cc.Store)
	if err != nil {
		return err
	}
	return renderCounts(r, counts)
}

type rowCount struct {
	resource string
	rows     int
}

func countRows(ctx context.Context, st *store.SQLStore) ([]rowCount, error) {
	one := store.GridQuery{PageSize: 1}
	products, err := st.ListProducts(ctx, one)
	if err != nil {
		return nil, err
	}
	customers, err := st.ListCustomers(ctx, one)
	if err != nil {
		return nil, err
	}
	orders, err := st.ListOrders(ctx, one)
	if err != nil {
		return nil, err
	}
	return []rowCount{
		{"products", products.Total},
		{"customers", customers.Total},
		{"orders", orders.Total},
	}, nil
}

func renderCounts(r *output.Renderer, counts []rowCount) error {
	t := output.Table{Headers: []string{"Resource", "Rows"}}
	for _, c := range counts {
		t.Rows = append(t.Rows, []string{c.resource, strconv.Itoa(c.rows)})
		t.Records = append(t.Records, map[string]any{"resource": c.resource, "rows": c.rows})
	}
	return r.RenderTable(t)
}
