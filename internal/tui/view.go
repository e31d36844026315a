package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

const (
	defaultColumnWidth = 16
	// chrome is the lines around the table: tabs, borders, summary, status, help.
	chrome = 9
)

// columnWidth is a header's width in terminal cells.
func columnWidth(h datatable.HeaderCell) int {
	if h.Width > 0 {
		return h.Width
	}
	return defaultColumnWidth
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.Truncate(s, width, "…")
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n")

	if m.res == nil {
		if m.err != nil {
			b.WriteString(m.styles.err.Render(m.err.Error()))
		} else {
			b.WriteString(m.spinner.View() + " loading…")
		}
		b.WriteString("\n")
		return b.String()
	}

	v := m.res.View()
	b.WriteString(m.table(v))
	b.WriteString("\n")
	if d := m.details(v); d != "" {
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString(m.summary(v))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m *Model) tabs() string {
	parts := []string{m.styles.title.Render("admingrid")}
	for i, name := range m.names {
		title := m.opts.Registry.Title(name)
		if i == m.active {
			parts = append(parts, m.styles.activeTab.Render(title))
		} else {
			parts = append(parts, m.styles.tab.Render(title))
		}
	}
	if m.loading {
		parts = append(parts, m.spinner.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// window returns the slice of rows that fits the terminal around the cursor.
func (m *Model) window(n int) (start, end int) {
	if m.height <= chrome {
		return 0, n
	}
	size := m.height - chrome
	if n <= size {
		return 0, n
	}
	start = max(min(m.cursor-size/2, n-size), 0)
	return start, start + size
}

func (m *Model) table(v datatable.View) string {
	var (
		headers []string
		focused = -1
	)
	multi := len(v.Sorting) > 1
	col := 0
	for i, h := range v.Headers {
		switch h.Kind {
		case datatable.CellSelect:
			headers = append(headers, markLabel(v.PageSelection))
		case datatable.CellExpand:
			headers = append(headers, "")
		case datatable.CellActions:
			headers = append(headers, "Actions")
		default:
			label := h.Label
			if s := grids.SortLabel(h, multi); s != "" {
				label += " " + s
			}
			if !h.FilterValue.IsZero() {
				label += " ⚲"
			}
			headers = append(headers, truncate(label, columnWidth(h)))
			if col == m.column {
				focused = i
			}
			col++
		}
	}

	var rows [][]string
	start, end := 0, 0
	switch v.Body {
	case datatable.BodyLoading:
		rows = append(rows, placeholder(len(headers), "Loading…"))
	case datatable.BodyEmpty:
		rows = append(rows, placeholder(len(headers), "No results."))
	default:
		start, end = m.window(len(v.Rows))
		for _, r := range v.Rows[start:end] {
			rows = append(rows, m.cells(v, r))
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(m.styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, column int) lipgloss.Style {
			if row == table.HeaderRow {
				if column == focused {
					return m.styles.focused
				}
				return m.styles.header
			}
			if v.Body != datatable.BodyRows {
				return m.styles.muted.Padding(0, 1)
			}
			idx := start + row
			switch {
			case idx == m.cursor:
				return m.styles.cursor
			case idx < len(v.Rows) && v.Rows[idx].Selected:
				return m.styles.selected
			}
			return m.styles.cell
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.Render()
}

func placeholder(n int, text string) []string {
	row := make([]string, max(n, 1))
	row[0] = text
	return row
}

func markLabel(mark datatable.Mark) string {
	switch mark {
	case datatable.MarkAll:
		return "●"
	case datatable.MarkSome:
		return "◐"
	default:
		return "○"
	}
}

func (m *Model) cells(v datatable.View, r datatable.ViewRow) []string {
	out := make([]string, len(r.Cells))
	first := true
	for i, c := range r.Cells {
		switch c.Kind {
		case datatable.CellSelect:
			if r.Selected {
				out[i] = "●"
			} else {
				out[i] = "○"
			}
		case datatable.CellExpand:
			switch {
			case !r.Expandable:
			case r.Expanded:
				out[i] = "▾"
			default:
				out[i] = "▸"
			}
		case datatable.CellActions:
			labels := make([]string, len(r.Actions))
			for j, a := range r.Actions {
				labels[j] = fmt.Sprintf("%d:%s", j+1, a.Label)
			}
			out[i] = strings.Join(labels, " ")
		default:
			text := c.Text
			if first && r.Depth > 0 {
				text = strings.Repeat("  ", r.Depth) + text
			}
			first = false
			width := defaultColumnWidth
			if h, ok := grids.Header(v, c.ColumnID); ok {
				width = columnWidth(h)
			}
			out[i] = truncate(text, width)
		}
	}
	return out
}

// details lists the sub-components of expanded rows below the table.
func (m *Model) details(v datatable.View) string {
	var lines []string
	limit := max(m.width-4, 40)
	for _, r := range v.Rows {
		if !r.Expanded || r.SubComponent == "" {
			continue
		}
		for _, line := range strings.Split(r.SubComponent, "\n") {
			lines = append(lines, m.styles.detail.Render(truncate(r.ID+" ▾ "+line, limit)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) summary(v datatable.View) string {
	parts := []string{grids.Summary(v)}
	if v.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", v.Search))
	}
	for _, h := range v.Headers {
		if h.Kind == datatable.CellData && !h.FilterValue.IsZero() {
			parts = append(parts, h.Label+"="+grids.FormatFilter(h.Filter, h.FilterValue))
		}
	}
	return m.styles.muted.Render(strings.Join(parts, " · "))
}

func (m *Model) statusLine() string {
	switch m.mode {
	case modeSearch, modeFilter:
		return m.input.View()
	case modeConfirm:
		if m.pending != nil {
			return m.styles.prompt.Render(fmt.Sprintf("%s %s? (y/N)", m.pending.label, m.pending.rowID))
		}
	}
	if m.err != nil {
		return m.styles.err.Render(m.err.Error())
	}
	return m.styles.status.Render(m.status)
}
