package grids

import (
	"github.com/leapstack-labs/admingrid/internal/settings"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/views"
)

// ProductSchema exposes product fields to views.
func ProductSchema(categories []string) views.Schema[store.Product] {
	statuses := make([]string, len(store.ProductStatuses))
	for i, s := range store.ProductStatuses {
		statuses[i] = string(s)
	}
	categoryKind := views.KindEnum
	if len(categories) == 0 {
		categoryKind = views.KindText
	}
	return views.Schema[store.Product]{Fields: []views.Field[store.Product]{
		{Name: "sku", Kind: views.KindText, Get: func(p store.Product) any { return p.SKU }, Queryable: true},
		{Name: "name", Kind: views.KindText, Get: func(p store.Product) any { return p.Name }, Queryable: true},
		{Name: "category", Kind: categoryKind, Get: func(p store.Product) any { return p.Category }, Options: categories, Queryable: true},
		{Name: "status", Kind: views.KindEnum, Get: func(p store.Product) any { return string(p.Status) }, Options: statuses, Queryable: true},
		{Name: "price", Kind: views.KindMoney, Get: func(p store.Product) any { return p.PriceCents }, Queryable: true},
		{Name: "stock", Kind: views.KindNumber, Get: func(p store.Product) any { return p.Stock }, Queryable: true},
		{Name: "description", Kind: views.KindHTML, Get: func(p store.Product) any { return p.Description }},
		{Name: "created_at", Kind: views.KindTime, Get: func(p store.Product) any { return p.CreatedAt }, Queryable: true},
	}}
}

// CustomerSchema exposes customer fields to views.
func CustomerSchema() views.Schema[store.Customer] {
	return views.Schema[store.Customer]{Fields: []views.Field[store.Customer]{
		{Name: "email", Kind: views.KindText, Get: func(c store.Customer) any { return c.Email }, Queryable: true},
		{Name: "name", Kind: views.KindText, Get: func(c store.Customer) any { return c.Name }, Queryable: true},
		{Name: "role", Kind: views.KindEnum, Get: func(c store.Customer) any { return string(c.Role) },
			Options: []string{string(store.RoleCustomer), string(store.RoleAdmin)}, Queryable: true},
		{Name: "orders", Kind: views.KindNumber, Get: func(c store.Customer) any { return c.OrderCount }, Queryable: true},
		{Name: "created_at", Kind: views.KindTime, Get: func(c store.Customer) any { return c.CreatedAt }, Queryable: true},
	}}
}

// OrderSchema exposes order fields to views.
func OrderSchema() views.Schema[store.Order] {
	statuses := make([]string, len(store.OrderStatuses))
	for i, s := range store.OrderStatuses {
		statuses[i] = string(s)
	}
	return views.Schema[store.Order]{Fields: []views.Field[store.Order]{
		{Name: "number", Kind: views.KindNumber, Get: func(o store.Order) any { return o.Number }, Queryable: true},
		{Name: "customer", Kind: views.KindText, Get: func(o store.Order) any { return o.CustomerEmail }, Queryable: true},
		{Name: "status", Kind: views.KindEnum, Get: func(o store.Order) any { return string(o.Status) }, Options: statuses, Queryable: true},
		{Name: "items", Kind: views.KindNumber, Get: func(o store.Order) any { return len(o.Items) }},
		{Name: "total", Kind: views.KindMoney, Get: func(o store.Order) any { return o.TotalCents }, Queryable: true},
		{Name: "placed_at", Kind: views.KindTime, Get: func(o store.Order) any { return o.PlacedAt }, Queryable: true},
	}}
}

// SettingSchema exposes setting values to views.
func SettingSchema(defs []settings.Definition) views.Schema[settings.Value] {
	kinds := []string{
		string(settings.KindString), string(settings.KindInt), string(settings.KindBool),
		string(settings.KindMoney), string(settings.KindDuration), string(settings.KindJSON),
	}
	return views.Schema[settings.Value]{Fields: []views.Field[settings.Value]{
		{Name: "key", Kind: views.KindText, Get: func(v settings.Value) any { return v.Key }},
		{Name: "group", Kind: views.KindEnum, Get: func(v settings.Value) any { return v.Group }, Options: settings.Groups(defs)},
		{Name: "label", Kind: views.KindText, Get: func(v settings.Value) any { return v.Label }},
		{Name: "kind", Kind: views.KindEnum, Get: func(v settings.Value) any { return string(v.Kind) }, Options: kinds},
		{Name: "value", Kind: views.KindText, Get: func(v settings.Value) any { return v.Value }},
		{Name: "default", Kind: views.KindText, Get: func(v settings.Value) any { return v.Default }},
		{Name: "description", Kind: views.KindText, Get: func(v settings.Value) any { return v.Description }},
		{Name: "updated_at", Kind: views.KindTime, Get: func(v settings.Value) any { return v.UpdatedAt }},
	}}
}
