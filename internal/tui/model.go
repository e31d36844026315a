// Package tui is the terminal browser over the admin's resource grids.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Options configure the browser.
type Options struct {
	Registry *grids.Registry
	// Resources are the tabs, in order. Defaults to every resource.
	Resources []string
	// Initial is the first tab shown.
	Initial string
	// ExportDir receives CSV exports. Defaults to the working directory.
	ExportDir string
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeFilter
	modeConfirm
)

type pendingAction struct {
	rowID string
	index int
	label string
}

type (
	openedMsg struct {
		name string
		res  grids.Resource
		err  error
	}
	refreshedMsg struct{ err error }
	staleMsg     struct{}
	exportedMsg  struct {
		path string
		rows int
		err  error
	}
	actionDoneMsg struct {
		label string
		err   error
	}
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx    context.Context
	opts   Options
	names  []string
	active int

	res    grids.Resource
	states map[string]datatable.State
	stale  chan struct{}

	cursor int
	column int

	mode         inputMode
	input        textinput.Model
	filterColumn string
	pending      *pendingAction

	help    help.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
	status  string
	err     error
	styles  styles
}

// New creates a browser model.
func New(ctx context.Context, opts Options) *Model {
	names := opts.Resources
	if len(names) == 0 {
		names = grids.Names()
	}
	active := max(slices.Index(names, opts.Initial), 0)

	in := textinput.New()
	in.CharLimit = 200

	return &Model{
		ctx:     ctx,
		opts:    opts,
		names:   names,
		active:  active,
		states:  make(map[string]datatable.State),
		stale:   make(chan struct{}, 1),
		input:   in,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:  newStyles(),
	}
}

// Run starts the browser and blocks until it quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases the open grid.
func (m *Model) Close() {
	if m.res != nil {
		m.res.Close()
		m.res = nil
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.open(m.names[m.active]), m.waitStale(), m.spinner.Tick)
}

// open loads a resource grid with the state it had when last shown.
func (m *Model) open(name string) tea.Cmd {
	ctx, reg, initial := m.ctx, m.opts.Registry, m.states[name]
	stale := m.stale
	return func() tea.Msg {
		res, err := reg.Open(ctx, name, grids.OpenOptions{
			Initial: initial,
			OnStale: func() {
				select {
				case stale <- struct{}{}:
				default:
				}
			},
		})
		return openedMsg{name: name, res: res, err: err}
	}
}

// waitStale delivers settled server-mode searches.
func (m *Model) waitStale() tea.Cmd {
	stale, ctx := m.stale, m.ctx
	return func() tea.Msg {
		select {
		case <-stale:
			return staleMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// refresh reloads the page after a state change. Client-mode grids already
// hold every row.
func (m *Model) refresh() tea.Cmd {
	if m.res == nil || m.res.Mode() != grids.ModeServer {
		return nil
	}
	res, ctx := m.res, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: res.Refresh(ctx)}
	}
}

// forceRefresh reloads rows in any mode.
func (m *Model) forceRefresh() tea.Cmd {
	if m.res == nil {
		return nil
	}
	res, ctx := m.res, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: res.Refresh(ctx)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.Close()
		m.res = msg.res
		m.cursor, m.column = 0, 0
		m.err = nil
		return m, nil

	case refreshedMsg:
		m.loading = false
		m.setErr(msg.err)
		m.clampCursor()
		return m, nil

	case staleMsg:
		return m, tea.Batch(m.refresh(), m.waitStale())

	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("exported %d rows to %s", msg.rows, msg.path)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.label + " done"
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *Model) setErr(err error) {
	m.err = err
	if err != nil {
		m.status = ""
	}
}

// do applies a state change and refreshes when it succeeded.
func (m *Model) do(err error, refresh bool) tea.Cmd {
	m.setErr(err)
	if err != nil || !refresh {
		m.clampCursor()
		return nil
	}
	return m.refresh()
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if key.Matches(msg, keys.NextGrid, keys.PrevGrid) {
		step := 1
		if key.Matches(msg, keys.PrevGrid) {
			step = len(m.names) - 1
		}
		return m, m.switchTo((m.active + step) % len(m.names))
	}
	if m.res == nil {
		return m, nil
	}
	m.status = ""

	v := m.res.View()
	switch {
	case key.Matches(msg, keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		m.cursor = min(m.cursor+1, max(len(v.Rows)-1, 0))
	case key.Matches(msg, keys.PrevColumn):
		m.column = max(m.column-1, 0)
	case key.Matches(msg, keys.NextColumn):
		m.column = min(m.column+1, max(len(dataHeaders(v))-1, 0))

	case key.Matches(msg, keys.PrevPage):
		return m, m.do(m.res.PreviousPage(), true)
	case key.Matches(msg, keys.NextPage):
		return m, m.do(m.res.NextPage(), true)
	case key.Matches(msg, keys.FirstPage):
		return m, m.do(m.res.FirstPage(), true)
	case key.Matches(msg, keys.LastPage):
		return m, m.do(m.res.LastPage(), true)
	case key.Matches(msg, keys.PageSize):
		return m, m.do(m.cyclePageSize(v), true)

	case key.Matches(msg, keys.Sort):
		h, ok := m.focused(v)
		if !ok {
			return m, nil
		}
		return m, m.do(m.res.ToggleSort(h.ColumnID), true)
	case key.Matches(msg, keys.Filter):
		return m, m.startFilter(v)
	case key.Matches(msg, keys.ClearFilters):
		m.res.ClearColumnFilters()
		return m, m.refresh()
	case key.Matches(msg, keys.Search):
		if !v.Searchable {
			m.err = errors.New("this grid has no search")
			return m, nil
		}
		m.mode = modeSearch
		m.input.Prompt = "/"
		m.input.Placeholder = "search"
		m.input.SetValue(m.res.GlobalFilter())
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, keys.Select):
		if r, ok := m.row(v); ok {
			return m, m.do(m.res.ToggleRowSelected(r.ID), false)
		}
	case key.Matches(msg, keys.SelectPage):
		return m, m.do(m.res.ToggleAllPageRowsSelected(v.PageSelection != datatable.MarkAll), false)
	case key.Matches(msg, keys.ClearSelection):
		m.res.ClearSelection()
	case key.Matches(msg, keys.Expand):
		if r, ok := m.row(v); ok {
			return m, m.do(m.res.ToggleExpanded(r.ID), false)
		}

	case key.Matches(msg, keys.HideColumn):
		if h, ok := m.focused(v); ok {
			err := m.res.ToggleColumnVisibility(h.ColumnID)
			m.column = max(min(m.column, len(dataHeaders(m.res.View()))-1), 0)
			return m, m.do(err, false)
		}
	case key.Matches(msg, keys.ShowAll):
		for _, c := range v.ColumnToggles {
			if !c.Visible && c.CanHide {
				if err := m.res.ToggleColumnVisibility(c.ColumnID); err != nil {
					return m, m.do(err, false)
				}
			}
		}
	case key.Matches(msg, keys.Narrower, keys.Wider):
		if h, ok := m.focused(v); ok {
			delta := 2
			if key.Matches(msg, keys.Narrower) {
				delta = -2
			}
			_, err := m.res.ResizeColumn(h.ColumnID, columnWidth(h)+delta)
			return m, m.do(err, false)
		}

	case key.Matches(msg, keys.Action):
		return m, m.startAction(v, msg.String())
	case key.Matches(msg, keys.Export):
		return m, m.export()
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.forceRefresh(), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) switchTo(index int) tea.Cmd {
	if m.res != nil {
		m.states[m.names[m.active]] = m.res.State()
	}
	m.active = index
	m.loading = true
	m.mode = modeNormal
	m.status = ""
	return tea.Batch(m.open(m.names[index]), m.spinner.Tick)
}

func (m *Model) cyclePageSize(v datatable.View) error {
	if v.Footer == nil || len(v.Footer.PageSizeOptions) == 0 {
		return errors.New("this grid is not paginated")
	}
	opts := v.Footer.PageSizeOptions
	next := opts[0]
	for _, n := range opts {
		if n > v.Footer.PageSize {
			next = n
			break
		}
	}
	return m.res.SetPageSize(next)
}

func (m *Model) startFilter(v datatable.View) tea.Cmd {
	h, ok := m.focused(v)
	if !ok {
		return nil
	}
	if h.Filter == datatable.FilterNone {
		m.err = fmt.Errorf("%s cannot be filtered", h.Label)
		return nil
	}
	m.mode = modeFilter
	m.filterColumn = h.ColumnID
	m.input.Prompt = h.Label + ": "
	m.input.Placeholder = filterHint(h)
	m.input.SetValue(grids.FormatFilter(h.Filter, h.FilterValue))
	m.input.CursorEnd()
	return m.input.Focus()
}

func filterHint(h datatable.HeaderCell) string {
	switch h.Filter {
	case datatable.FilterSelect:
		vals := make([]string, len(h.FilterOptions))
		for i, o := range h.FilterOptions {
			vals[i] = o.Value
		}
		return strings.Join(vals, " | ")
	case datatable.FilterDate:
		return "2026-01-31 or 2026-01-01..2026-01-31"
	case datatable.FilterNumber:
		return "10 or 10..20, ..20, 10.."
	default:
		return "contains"
	}
}

func (m *Model) startAction(v datatable.View, digit string) tea.Cmd {
	r, ok := m.row(v)
	if !ok {
		return nil
	}
	n := int(digit[0] - '0')
	if n < 1 || n > len(r.Actions) {
		m.err = fmt.Errorf("row %s has no action %d", r.ID, n)
		return nil
	}
	a := r.Actions[n-1]
	p := &pendingAction{rowID: r.ID, index: a.Index, label: a.Label}
	if a.Variant == datatable.VariantDestructive {
		m.pending = p
		m.mode = modeConfirm
		return nil
	}
	return m.runAction(p)
}

func (m *Model) runAction(p *pendingAction) tea.Cmd {
	res, ctx := m.res, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{label: p.label, err: res.RunAction(ctx, p.rowID, p.index)}
	}
}

func (m *Model) export() tea.Cmd {
	res, ctx := m.res, m.ctx
	name := res.View().ExportFilename
	if name == "" {
		name = res.Name() + ".csv"
	}
	path := filepath.Join(m.opts.ExportDir, name)
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: fmt.Errorf("failed to create %s: %w", path, err)}
		}
		result, err := res.Export(ctx, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return exportedMsg{path: path, rows: result.Rows, err: err}
	}
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeNormal
		m.input.Blur()
		res, ctx, q := m.res, m.ctx, m.input.Value()
		return m, func() tea.Msg { return refreshedMsg{err: res.Search(ctx, q)} }
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Client grids filter at once; server grids settle through the debouncer.
	m.res.SetGlobalFilter(m.input.Value())
	m.clampCursor()
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeNormal
		m.input.Blur()
		return m, m.do(grids.ApplyFilter(m.res, m.filterColumn, m.input.Value()), true)
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pending
	m.pending = nil
	m.mode = modeNormal
	if p == nil || !strings.EqualFold(msg.String(), "y") {
		m.status = "cancelled"
		return m, nil
	}
	return m, m.runAction(p)
}

// focused returns the header of the focused data column.
func (m *Model) focused(v datatable.View) (datatable.HeaderCell, bool) {
	hs := dataHeaders(v)
	if len(hs) == 0 {
		return datatable.HeaderCell{}, false
	}
	return hs[min(m.column, len(hs)-1)], true
}

// row returns the row under the cursor.
func (m *Model) row(v datatable.View) (datatable.ViewRow, bool) {
	if m.cursor < 0 || m.cursor >= len(v.Rows) {
		return datatable.ViewRow{}, false
	}
	return v.Rows[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.res == nil {
		return
	}
	n := len(m.res.View().Rows)
	m.cursor = max(min(m.cursor, n-1), 0)
}

func dataHeaders(v datatable.View) []datatable.HeaderCell {
	var hs []datatable.HeaderCell
	for _, h := range v.Headers {
		if h.Kind == datatable.CellData {
			hs = append(hs, h)
		}
	}
	return hs
}
