package settings

import (
	"context"
	"testing"
	"time"

	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *store.SQLStore) {
	t.Helper()
	st := store.New(nil)
	require.NoError(t, st.Open(context.Background(), store.DialectSQLite, ":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	svc, err := NewService(st, testutil.NewTestLogger(t))
	require.NoError(t, err)
	return svc, st
}

func TestEnsureDefaults(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	require.NoError(t, st.PutSetting(ctx, "store.name", "Corner Shop"))

	added, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Definitions)-1, added)

	// Existing values survive and a second run writes nothing.
	name, err := svc.Get(ctx, "store.name")
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", name)

	added, err = svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestSetAndGet(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		key     string
		in      string
		want    string
		wantErr bool
	}{
		{"store.currency", "EUR", "EUR", false},
		{"store.currency", "DOGE", "", true},
		{"payment.capture_on_ship", "yes", "true", false},
		{"payment.capture_on_ship", "maybe", "", true},
		{"shipping.flat_rate", "7.5", "7.50", false},
		{"shipping.flat_rate", "$12", "12.00", false},
		{"shipping.flat_rate", "-1", "", true},
		{"shipping.handling_days", " 3 ", "3", false},
		{"shipping.countries", `[ "US",  "MX" ]`, `["US","MX"]`, false},
		{"shipping.countries", `{"US": true}`, `{"US":true}`, false},
		{"shipping.countries", `["US",`, "", true},
		{"shipping.handling_days", "three", "", true},
		{"grid.search_debounce", "0.5s", "500ms", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.in, func(t *testing.T) {
			err := svc.Set(ctx, tt.key, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			got, err := svc.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.ErrorIs(t, svc.Set(ctx, "store.colour", "red"), ErrUnknownSetting)
	_, err := svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}

func TestTypedGetters(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	n, err := svc.Int(ctx, "grid.page_size")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	d, err := svc.Duration(ctx, "grid.search_debounce")
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, d)

	cents, err := svc.MoneyCents(ctx, "shipping.free_over")
	require.NoError(t, err)
	assert.Equal(t, int64(7500), cents)

	on, err := svc.Bool(ctx, "payment.capture_on_ship")
	require.NoError(t, err)
	assert.False(t, on)

	_, err = svc.Int(ctx, "store.name")
	assert.Error(t, err)

	// A corrupt stored value falls back to the default.
	require.NoError(t, st.PutSetting(ctx, "grid.page_size", "lots"))
	n, err = svc.Int(ctx, "grid.page_size")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestResetAndAll(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "store.name", "Corner Shop"))
	values, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, values, len(Definitions))
	assert.Equal(t, "store.name", values[0].Key)
	assert.Equal(t, "Corner Shop", values[0].Value)
	assert.False(t, values[0].IsDefault)
	assert.False(t, values[0].UpdatedAt.IsZero())
	assert.True(t, values[1].IsDefault)

	require.NoError(t, svc.Reset(ctx, "store.name"))
	name, err := svc.Get(ctx, "store.name")
	require.NoError(t, err)
	assert.Equal(t, "Acme Outfitters", name)
	assert.ErrorIs(t, svc.Reset(ctx, "nope"), ErrUnknownSetting)
}

func TestDecode(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "shipping.handling_days", "4"))

	var shipping struct {
		FlatRate     int64    `mapstructure:"flat_rate"`
		FreeOver     int64    `mapstructure:"free_over"`
		HandlingDays int      `mapstructure:"handling_days"`
		Countries    []string `mapstructure:"countries"`
	}
	require.NoError(t, svc.Decode(ctx, "shipping", &shipping))
	assert.Equal(t, int64(595), shipping.FlatRate)
	assert.Equal(t, int64(7500), shipping.FreeOver)
	assert.Equal(t, 4, shipping.HandlingDays)
	assert.Equal(t, []string{"US", "CA"}, shipping.Countries)

	var grid struct {
		PageSize       string        `mapstructure:"page_size"`
		SearchDebounce time.Duration `mapstructure:"search_debounce"`
	}
	require.NoError(t, svc.Decode(ctx, "grid", &grid))
	assert.Equal(t, "10", grid.PageSize, "weak typing converts ints to strings")
	assert.Equal(t, 300*time.Millisecond, grid.SearchDebounce)

	assert.ErrorIs(t, svc.Decode(ctx, "missing", &grid), ErrUnknownSetting)
}

func TestNewService_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
	}{
		{"missing group", []Definition{{Key: "a.b", Kind: KindString}}},
		{"key outside group", []Definition{{Key: "a.b", Group: "c", Kind: KindString}}},
		{"duplicate", []Definition{{Key: "a.b", Group: "a"}, {Key: "a.b", Group: "a"}}},
		{"bad default", []Definition{{Key: "a.n", Group: "a", Kind: KindInt, Default: "x"}}},
		{"bad json default", []Definition{{Key: "a.j", Group: "a", Kind: KindJSON, Default: "{"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(nil, nil, tt.defs...)
			assert.Error(t, err)
		})
	}
}

func TestGroups(t *testing.T) {
	assert.Equal(t, []string{"store", "payment", "shipping", "grid"}, Groups(Definitions))
}
