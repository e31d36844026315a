package datatable

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportResult describes a finished export.
type ExportResult struct {
	Filename string
	Rows     int
	// Delegated is true when OnExport handled the rows instead of the CSV writer.
	Delegated bool
}

// ExportRows returns what an export covers: the selected rows when any are
// selected, otherwise every record in the data.
func (t *Table[T]) ExportRows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exportRows()
}

func (t *Table[T]) exportRows() []T {
	if sel := t.selectedRows(); len(sel) > 0 {
		return sel
	}
	out := make([]T, len(t.data))
	copy(out, t.data)
	return out
}

// Export hands the export rows to OnExport, or writes them as CSV to w when no
// OnExport is configured.
func (t *Table[T]) Export(w io.Writer) (ExportResult, error) {
	t.mu.Lock()
	if !t.opts.EnableExport {
		t.mu.Unlock()
		return ExportResult{}, fmt.Errorf("%w: export", ErrFeatureDisabled)
	}
	rows := t.exportRows()
	onExport := t.opts.OnExport
	result := ExportResult{Filename: t.opts.ExportFilename, Rows: len(rows)}
	t.mu.Unlock()

	if onExport != nil {
		result.Delegated = true
		onExport(rows)
		return result, nil
	}
	if err := WriteCSV(w, t.columns, rows); err != nil {
		return result, err
	}
	t.logger.Debug("exported rows", "rows", result.Rows, "filename", result.Filename)
	return result, nil
}

// WriteCSV writes records as CSV: a header row, then one line per record,
// covering the exportable columns. String values are always double-quoted with
// embedded quotes doubled; numbers, booleans and times are written bare.
func WriteCSV[T any](w io.Writer, columns []Column[T], rows []T) error {
	var cols []Column[T]
	for _, c := range columns {
		if c.exportable() {
			cols = append(cols, c)
		}
	}

	bw := bufio.NewWriter(w)
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = quoteCSV(c.exportHeader())
	}
	if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	for _, row := range rows {
		for i, c := range cols {
			fields[i] = csvField(c.exportValue(row))
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

func csvField(v any) string {
	switch x := v.(type) {
	case string:
		return quoteCSV(x)
	case time.Time, *time.Time:
		return FormatValue(x)
	case fmt.Stringer:
		return quoteCSV(x.String())
	default:
		return FormatValue(v)
	}
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// RunAction invokes action index on a row if its Show predicate allows it.
func (t *Table[T]) RunAction(rowID string, index int) error {
	t.mu.Lock()
	row, ok := t.findRow(rowID)
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	if index < 0 || index >= len(t.opts.Actions) {
		t.mu.Unlock()
		return fmt.Errorf("action %d out of range", index)
	}
	action := t.opts.Actions[index]
	t.mu.Unlock()

	if !action.visible(row.Original) {
		return fmt.Errorf("%w: %s on %s", ErrActionHidden, action.Label, rowID)
	}
	if action.OnClick != nil {
		action.OnClick(row.Original)
	}
	return nil
}
