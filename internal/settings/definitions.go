// Package settings provides typed, validated back-office settings stored as
// key/value pairs.
package settings

import (
	"fmt"
	"strings"
)

// Kind is the value type of a setting.
type Kind string

// Setting kinds.
const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindBool     Kind = "bool"
	KindMoney    Kind = "money"
	KindDuration Kind = "duration"
	// KindJSON holds any JSON document, stored in compact form.
	KindJSON Kind = "json"
)

// Definition declares one setting.
type Definition struct {
	Key         string
	Group       string
	Label       string
	Description string
	Kind        Kind
	Default     string
	// Options restricts a string setting to a fixed set of values.
	Options []string
}

// Name is the key without its group prefix.
func (d Definition) Name() string {
	return strings.TrimPrefix(d.Key, d.Group+".")
}

// Definitions are the built-in settings.
var Definitions = []Definition{
	{Key: "store.name", Group: "store", Label: "Store name", Kind: KindString, Default: "Acme Outfitters"},
	{Key: "store.currency", Group: "store", Label: "Currency", Kind: KindString, Default: "USD", Options: []string{"USD", "EUR", "GBP"}},
	{Key: "store.support_email", Group: "store", Label: "Support email", Kind: KindString, Default: "support@example.com"},
	{Key: "payment.provider", Group: "payment", Label: "Payment provider", Kind: KindString, Default: "stripe", Options: []string{"stripe", "paypal", "manual"}},
	{Key: "payment.capture_on_ship", Group: "payment", Label: "Capture on shipment", Description: "Charge the card when the order ships instead of when it is placed.", Kind: KindBool, Default: "false"},
	{Key: "shipping.flat_rate", Group: "shipping", Label: "Flat rate", Kind: KindMoney, Default: "5.95"},
	{Key: "shipping.free_over", Group: "shipping", Label: "Free shipping over", Kind: KindMoney, Default: "75.00"},
	{Key: "shipping.countries", Group: "shipping", Label: "Ship-to countries", Description: "JSON list of ISO country codes.", Kind: KindJSON, Default: `["US", "CA"]`},
	{Key: "shipping.handling_days", Group: "shipping", Label: "Handling days", Kind: KindInt, Default: "2"},
	{Key: "grid.page_size", Group: "grid", Label: "Default page size", Kind: KindInt, Default: "10"},
	{Key: "grid.search_debounce", Group: "grid", Label: "Search debounce", Kind: KindDuration, Default: "300ms"},
}

// Groups returns the distinct groups of defs in declaration order.
func Groups(defs []Definition) []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range defs {
		if !seen[d.Group] {
			seen[d.Group] = true
			out = append(out, d.Group)
		}
	}
	return out
}

func validateDefinitions(defs []Definition) (map[string]Definition, error) {
	index := make(map[string]Definition, len(defs))
	for _, d := range defs {
		if d.Key == "" || d.Group == "" {
			return nil, fmt.Errorf("setting definition needs a key and a group: %+v", d)
		}
		if !strings.HasPrefix(d.Key, d.Group+".") {
			return nil, fmt.Errorf("setting %s is not in group %s", d.Key, d.Group)
		}
		if _, dup := index[d.Key]; dup {
			return nil, fmt.Errorf("duplicate setting %s", d.Key)
		}
		if _, err := normalize(d, d.Default); err != nil {
			return nil, fmt.Errorf("setting %s: bad default: %w", d.Key, err)
		}
		index[d.Key] = d
	}
	return index, nil
}
