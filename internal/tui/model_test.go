package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/settings"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/testutil"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

type fixture struct {
	store *store.SQLStore
	model *Model
	dir   string
}

// setup opens the products grid over n products p01..pNN, odd ones draft.
func setup(t *testing.T, n int) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	st := store.New(logger)
	require.NoError(t, st.Open(ctx, store.DialectSQLite, ":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	svc, err := settings.NewService(st, logger)
	require.NoError(t, err)
	_, err = svc.EnsureDefaults(ctx)
	require.NoError(t, err)

	for i := 1; i <= n; i++ {
		p := store.Product{
			ID:          fmt.Sprintf("p%02d", i),
			SKU:         fmt.Sprintf("SKU-%02d", i),
			Name:        fmt.Sprintf("Item %02d", i),
			Description: fmt.Sprintf("<p>Item <b>%d</b></p>", i),
			Category:    "Kitchen",
			Status:      store.ProductDraft,
			PriceCents:  int64(i * 100),
			Stock:       i,
			CreatedAt:   time.Date(2026, 1, i, 0, 0, 0, 0, time.UTC),
		}
		if i%2 == 0 {
			p.Status = store.ProductActive
		}
		require.NoError(t, st.CreateProduct(ctx, &p))
	}

	dir := t.TempDir()
	reg := grids.NewRegistry(grids.Deps{Store: st, Settings: svc, Logger: logger}, grids.Options{Mode: grids.ModeServer})
	m := New(ctx, Options{
		Registry:  reg,
		Resources: []string{grids.Products, grids.Settings},
		ExportDir: dir,
	})
	t.Cleanup(m.Close)

	f := &fixture{store: st, model: m, dir: dir}
	f.run(m.open(grids.Products))
	require.NotNil(t, m.res)
	return f
}

// run executes commands synchronously, feeding their messages back.
func (f *fixture) run(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		cmd = nil
		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			for _, c := range msg {
				f.run(c)
			}
		default:
			_, cmd = f.model.Update(msg)
		}
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys one at a time.
func (f *fixture) press(keys ...string) {
	for _, k := range keys {
		_, cmd := f.model.Update(keyMsg(k))
		f.run(cmd)
	}
}

// typeText sends each rune of s as its own key.
func (f *fixture) typeText(s string) {
	for _, r := range s {
		if r == ' ' {
			f.press(" ")
			continue
		}
		f.press(string(r))
	}
}

func (f *fixture) view() string { return f.model.View() }

// =============================================================================
// Navigation
// =============================================================================

func TestOpen_RendersFirstPage(t *testing.T) {
	f := setup(t, 25)

	out := f.view()
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "Item 01")
	assert.Contains(t, out, "Rows 1-10 of 25")
	assert.NotContains(t, out, "Item 11")
}

func TestPaging(t *testing.T) {
	f := setup(t, 25)

	f.press("l")
	assert.Contains(t, f.view(), "Rows 11-20 of 25")

	f.press("G")
	assert.Contains(t, f.view(), "Rows 21-25 of 25")
	assert.Contains(t, f.view(), "Item 25")

	f.press("g")
	assert.Contains(t, f.view(), "Rows 1-10 of 25")

	f.press("p")
	assert.Contains(t, f.view(), "Rows 1-25 of 25")
}

func TestCursorStaysOnPage(t *testing.T) {
	f := setup(t, 3)

	f.press("down", "down", "down", "down")
	assert.Equal(t, 2, f.model.cursor)

	f.press("k")
	assert.Equal(t, 1, f.model.cursor)
}

func TestSwitchGrid_KeepsState(t *testing.T) {
	f := setup(t, 25)
	f.press("l")

	f.press("tab")
	assert.Equal(t, grids.Settings, f.model.res.Name())

	f.press("shift+tab")
	assert.Equal(t, grids.Products, f.model.res.Name())
	assert.Contains(t, f.view(), "Rows 11-20 of 25")
}

// =============================================================================
// Sorting, filtering, search
// =============================================================================

func TestSort_FocusedColumn(t *testing.T) {
	f := setup(t, 5)

	// Focus moves to Name, the second data column.
	f.press("]", "s")
	assert.Equal(t, datatable.SortingState{{ColumnID: "name"}}, f.model.res.State().Sorting)

	f.press("s")
	assert.Equal(t, datatable.SortingState{{ColumnID: "name", Desc: true}}, f.model.res.State().Sorting)
	assert.Contains(t, f.view(), "▼")
}

func TestFilter_NumberRange(t *testing.T) {
	f := setup(t, 25)

	// Stock is the sixth data column.
	f.press("]", "]", "]", "]", "]", "f")
	require.Equal(t, modeFilter, f.model.mode)
	f.typeText("5..8")
	f.press("enter")

	assert.Equal(t, modeNormal, f.model.mode)
	assert.NoError(t, f.model.err)
	out := f.view()
	assert.Contains(t, out, "Rows 1-4 of 4")
	assert.Contains(t, out, "Stock=5..8")

	f.press("F")
	assert.Contains(t, f.view(), "Rows 1-10 of 25")
}

func TestFilter_InvalidShowsError(t *testing.T) {
	f := setup(t, 5)

	f.press("]", "]", "]", "]", "]", "f")
	f.typeText("9..1")
	f.press("enter")

	require.Error(t, f.model.err)
	assert.Contains(t, f.view(), "Rows 1-5 of 5")
}

func TestSearch(t *testing.T) {
	f := setup(t, 25)

	f.press("/")
	require.Equal(t, modeSearch, f.model.mode)
	f.typeText("Item 03")
	f.press("enter")

	out := f.view()
	assert.Equal(t, modeNormal, f.model.mode)
	assert.Contains(t, out, "Item 03")
	assert.NotContains(t, out, "Item 13")
	assert.Contains(t, out, `search "Item 03"`)
}

// =============================================================================
// Selection, expansion, columns
// =============================================================================

func TestSelectAndExpand(t *testing.T) {
	f := setup(t, 5)

	f.press(" ")
	assert.Contains(t, f.view(), "1 selected")

	f.press("a")
	assert.Contains(t, f.view(), "5 selected")

	f.press("x")
	assert.NotContains(t, f.view(), "5 selected")

	f.press("enter")
	assert.Contains(t, f.view(), "p01 ▾ Item 1")
}

func TestHideAndShowColumns(t *testing.T) {
	f := setup(t, 3)

	// SKU is pinned.
	f.press("c")
	assert.Error(t, f.model.err)

	f.press("]", "]", "c")
	assert.False(t, visible(f.model, "category"))

	f.press("C")
	assert.True(t, visible(f.model, "category"))
}

func visible(m *Model, columnID string) bool {
	for _, c := range m.res.View().ColumnToggles {
		if c.ColumnID == columnID {
			return c.Visible
		}
	}
	return false
}

// =============================================================================
// Actions and export
// =============================================================================

func TestAction_Runs(t *testing.T) {
	f := setup(t, 3)

	// Publish is the first action on a draft product.
	f.press("1")

	p, err := f.store.GetProduct(context.Background(), "p01")
	require.NoError(t, err)
	assert.Equal(t, store.ProductActive, p.Status)
	assert.Contains(t, f.view(), "Publish done")
}

func TestAction_DestructiveNeedsConfirmation(t *testing.T) {
	f := setup(t, 3)

	f.press("3")
	require.Equal(t, modeConfirm, f.model.mode)
	assert.Contains(t, f.view(), "Delete p01? (y/N)")

	f.press("n")
	_, err := f.store.GetProduct(context.Background(), "p01")
	require.NoError(t, err)
	assert.Contains(t, f.view(), "cancelled")

	f.press("3", "y")
	_, err = f.store.GetProduct(context.Background(), "p01")
	assert.Error(t, err)
}

func TestAction_Missing(t *testing.T) {
	f := setup(t, 3)

	f.press("9")

	assert.ErrorContains(t, f.model.err, "no action 9")
}

func TestExport_WritesCSV(t *testing.T) {
	f := setup(t, 5)

	f.press("e")

	matches, err := filepath.Glob(filepath.Join(f.dir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 6, "header plus every row")
	assert.Contains(t, f.view(), "exported 5 rows")
}

// =============================================================================
// Keys
// =============================================================================

func TestQuit(t *testing.T) {
	f := setup(t, 1)

	_, cmd := f.model.Update(keyMsg("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHelpToggle(t *testing.T) {
	f := setup(t, 1)
	short := f.view()

	f.press("?")

	assert.True(t, f.model.help.ShowAll)
	assert.Greater(t, len(f.view()), len(short))
}
