package grids

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/admingrid/internal/settings"
	"github.com/leapstack-labs/admingrid/internal/starlark"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/views"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Resource names.
const (
	Products  = "products"
	Customers = "customers"
	Orders    = "orders"
	Settings  = "settings"
)

// ErrUnknownResource is returned for a resource name no grid exists for.
var ErrUnknownResource = errors.New("unknown resource")

// Names lists the resources in navigation order.
func Names() []string {
	return []string{Products, Customers, Orders, Settings}
}

// Deps are what resource grids read from and act on.
type Deps struct {
	Store    *store.SQLStore
	Settings *settings.Service
	// Views defaults to the built-in views.
	Views  *views.Set
	Env    *starlark.Env
	Logger *slog.Logger
}

// Options tune every grid a Registry opens.
type Options struct {
	Mode            Mode
	PageSize        int
	PageSizeOptions []int
	SearchDebounce  time.Duration
	MultiSort       bool
	// Currency overrides the store.currency setting.
	Currency string
	// Markdown renders HTML details as Markdown instead of plain text.
	Markdown bool
}

// Registry opens resource grids.
type Registry struct {
	mu   sync.RWMutex
	deps Deps
	opts Options
}

// NewRegistry creates a registry.
func NewRegistry(deps Deps, opts Options) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Views == nil {
		deps.Views = views.Default()
	}
	if deps.Env == nil {
		deps.Env = starlark.NewEnv()
	}
	return &Registry{deps: deps, opts: opts}
}

// SetViews swaps the view definitions used by grids opened afterwards.
func (r *Registry) SetViews(set *views.Set) {
	r.mu.Lock()
	r.deps.Views = set
	r.mu.Unlock()
}

// Views returns the current view definitions.
func (r *Registry) Views() *views.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deps.Views
}

// Title returns a resource's display title.
func (r *Registry) Title(name string) string {
	if v, err := r.Views().View(name); err == nil && v.Title != "" {
		return v.Title
	}
	return cases.Title(language.English).String(name)
}

// OpenOptions are per-open settings.
type OpenOptions struct {
	Initial datatable.State
	OnStale func()
}

// Open builds a resource grid and loads its first rows.
func (r *Registry) Open(ctx context.Context, name string, oo OpenOptions) (Resource, error) {
	v, err := r.Views().View(name)
	if err != nil {
		return nil, err
	}
	currency := r.currency(ctx)

	var res Resource
	switch name {
	case Products:
		res, err = r.products(ctx, v, currency, oo)
	case Customers:
		res, err = r.customers(v, currency, oo)
	case Orders:
		res, err = r.orders(v, currency, oo)
	case Settings:
		res, err = r.settings(v, currency, oo)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	if err != nil {
		return nil, err
	}
	if err := res.Refresh(ctx); err != nil {
		res.Close()
		return nil, err
	}
	return res, nil
}

func (r *Registry) currency(ctx context.Context) string {
	if r.opts.Currency != "" {
		return r.opts.Currency
	}
	if r.deps.Settings != nil {
		if c, err := r.deps.Settings.Get(ctx, "store.currency"); err == nil {
			return c
		}
	}
	return "USD"
}

func config[T any](r *Registry, name string, v views.View, currency string, oo OpenOptions) Config[T] {
	return Config[T]{
		Name:            name,
		View:            v,
		Mode:            r.opts.Mode,
		Initial:         oo.Initial,
		PageSize:        r.opts.PageSize,
		PageSizeOptions: r.opts.PageSizeOptions,
		SearchDebounce:  r.opts.SearchDebounce,
		MultiSort:       r.opts.MultiSort,
		Env:             r.deps.Env,
		Currency:        currency,
		Logger:          r.deps.Logger,
		OnStale:         oo.OnStale,
	}
}

func (r *Registry) needStore() error {
	if r.deps.Store == nil {
		return store.ErrNotOpen
	}
	return nil
}

func (r *Registry) products(ctx context.Context, v views.View, currency string, oo OpenOptions) (*Grid[store.Product], error) {
	if err := r.needStore(); err != nil {
		return nil, err
	}
	st := r.deps.Store
	categories, err := st.Categories(ctx)
	if err != nil {
		return nil, err
	}

	cfg := config[store.Product](r, Products, v, currency, oo)
	cfg.Schema = ProductSchema(categories)
	cfg.Source = SourceFunc[store.Product](st.ListProducts)
	cfg.RowID = func(p store.Product) string { return p.ID }
	cfg.SubRows = func(p store.Product) ([]store.Product, bool) { return nil, p.Description != "" }
	cfg.Detail = func(p store.Product) string {
		if r.opts.Markdown {
			return views.HTMLToMarkdown(p.Description)
		}
		return views.HTMLToText(p.Description)
	}
	cfg.Actions = []Action[store.Product]{
		{
			Label: "Publish",
			Show:  func(p store.Product) bool { return p.Status != store.ProductActive },
			Run: func(ctx context.Context, p store.Product) error {
				return st.SetProductStatus(ctx, p.ID, store.ProductActive)
			},
		},
		{
			Label:   "Archive",
			Variant: datatable.VariantSecondary,
			Show:    func(p store.Product) bool { return p.Status != store.ProductArchived },
			Run: func(ctx context.Context, p store.Product) error {
				return st.SetProductStatus(ctx, p.ID, store.ProductArchived)
			},
		},
		{
			Label:   "Delete",
			Variant: datatable.VariantDestructive,
			Run: func(ctx context.Context, p store.Product) error {
				return st.DeleteProduct(ctx, p.ID)
			},
		},
	}
	return New(cfg)
}

func (r *Registry) customers(v views.View, currency string, oo OpenOptions) (*Grid[store.Customer], error) {
	if err := r.needStore(); err != nil {
		return nil, err
	}
	st := r.deps.Store

	cfg := config[store.Customer](r, Customers, v, currency, oo)
	cfg.Schema = CustomerSchema()
	cfg.Source = SourceFunc[store.Customer](st.ListCustomers)
	cfg.RowID = func(c store.Customer) string { return c.ID }
	cfg.Actions = []Action[store.Customer]{
		{
			Label:   "Delete",
			Variant: datatable.VariantDestructive,
			Show:    func(c store.Customer) bool { return c.Role != store.RoleAdmin },
			Run: func(ctx context.Context, c store.Customer) error {
				return st.DeleteCustomer(ctx, c.ID)
			},
		},
	}
	return New(cfg)
}

func (r *Registry) orders(v views.View, currency string, oo OpenOptions) (*Grid[store.Order], error) {
	if err := r.needStore(); err != nil {
		return nil, err
	}
	st := r.deps.Store

	cfg := config[store.Order](r, Orders, v, currency, oo)
	cfg.Schema = OrderSchema()
	cfg.Source = SourceFunc[store.Order](st.ListOrders)
	cfg.RowID = func(o store.Order) string { return o.ID }
	cfg.SubRows = func(o store.Order) ([]store.Order, bool) { return nil, len(o.Items) > 0 }
	cfg.Detail = func(o store.Order) string { return OrderDetail(o, currency, r.opts.Markdown) }
	cfg.Actions = []Action[store.Order]{
		{
			Label: "Advance",
			Show: func(o store.Order) bool {
				_, ok := store.NextStatus(o.Status)
				return ok
			},
			Run: func(ctx context.Context, o store.Order) error {
				next, ok := store.NextStatus(o.Status)
				if !ok {
					return store.ErrInvalidTransition
				}
				return st.UpdateOrderStatus(ctx, o.ID, next)
			},
		},
		{
			Label:   "Cancel",
			Variant: datatable.VariantDestructive,
			Show:    func(o store.Order) bool { return store.CanTransition(o.Status, store.OrderCancelled) },
			Run: func(ctx context.Context, o store.Order) error {
				return st.UpdateOrderStatus(ctx, o.ID, store.OrderCancelled)
			},
		},
	}
	return New(cfg)
}

func (r *Registry) settings(v views.View, currency string, oo OpenOptions) (*Grid[settings.Value], error) {
	svc := r.deps.Settings
	if svc == nil {
		return nil, fmt.Errorf("%w: settings service not configured", ErrUnknownResource)
	}

	cfg := config[settings.Value](r, Settings, v, currency, oo)
	// A few dozen keys; the table handles them in memory.
	cfg.Mode = ModeClient
	cfg.Schema = SettingSchema(svc.Definitions())
	cfg.Source = SourceFunc[settings.Value](func(ctx context.Context, _ store.GridQuery) (store.Page[settings.Value], error) {
		values, err := svc.All(ctx)
		if err != nil {
			return store.Page[settings.Value]{}, err
		}
		return store.Page[settings.Value]{Items: values, Total: len(values)}, nil
	})
	cfg.RowID = func(s settings.Value) string { return s.Key }
	cfg.Actions = []Action[settings.Value]{
		{
			Label:   "Reset",
			Variant: datatable.VariantOutline,
			Show:    func(s settings.Value) bool { return !s.IsDefault },
			Run: func(ctx context.Context, s settings.Value) error {
				return svc.Reset(ctx, s.Key)
			},
		},
	}
	return New(cfg)
}

// OrderDetail renders an order's line items.
func OrderDetail(o store.Order, currency string, markdown bool) string {
	var sb strings.Builder
	if markdown {
		sb.WriteString("| SKU | Item | Qty | Price |\n|---|---|---:|---:|\n")
	}
	for _, it := range o.Items {
		price := starlark.FormatMoney(it.UnitCents, currency)
		if markdown {
			fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", it.SKU, it.Name, it.Quantity, price)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%d × %s (%s) @ %s", it.Quantity, it.Name, it.SKU, price)
	}
	return strings.TrimRight(sb.String(), "\n")
}
