package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table is tabular output: display text for text, markdown and CSV, raw
// records for JSON.
type Table struct {
	Headers []string
	Rows    [][]string
	Records []map[string]any
}

// RenderTable writes t in the renderer's effective mode.
func (r *Renderer) RenderTable(t Table) error {
	return RenderTable(r.out, t, r.EffectiveMode())
}

// RenderTable writes t in the given mode. ModeAuto renders text.
func RenderTable(w io.Writer, t Table, mode Mode) error {
	switch mode {
	case ModeJSON:
		records := t.Records
		if records == nil {
			records = []map[string]any{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case ModeCSV:
		return renderCSV(w, t)
	case ModeMarkdown:
		return renderMarkdown(w, t)
	default:
		return renderText(w, t)
	}
}

func renderText(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		tw.AppendRow(r)
	}
	tw.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
	return err
}

func renderMarkdown(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	var sb strings.Builder
	sb.WriteString("| " + strings.Join(escapeAll(t.Headers, escapeMarkdown), " | ") + " |\n")
	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	sb.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, row := range t.Rows {
		sb.WriteString("| " + strings.Join(escapeAll(row, escapeMarkdown), " | ") + " |\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderCSV(w io.Writer, t Table) error {
	var sb strings.Builder
	sb.WriteString(strings.Join(escapeAll(t.Headers, escapeCSV), ",") + "\n")
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(escapeAll(row, escapeCSV), ",") + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func escapeAll(values []string, esc func(string) string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = esc(v)
	}
	return out
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
