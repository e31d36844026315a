package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/admingrid/internal/cli/output"
	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
	"github.com/spf13/cobra"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [resource]",
		Short: "Drive a grid interactively with dot-commands",
		Long: `Open an interactive shell over a resource grid.

Each dot-command changes the grid's state the way a click in the admin UI
would; the current page is printed after every change. Lines that are not
dot-commands search the grid.

Type .help inside the shell for the command list.`,
		Example: `  admingrid repl orders`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeResources,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := grids.Products
			if len(args) == 1 {
				resource = args[0]
			}
			return runREPL(cmd, resource)
		},
	}
	return cmd
}

func runREPL(cmd *cobra.Command, resource string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	s := newSession(cc.Registry(true), cc.Renderer)
	defer s.close()
	if err := s.open(ctx, resource); err != nil {
		return err
	}

	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "admingrid", "repl_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "admingrid REPL. Type .help for commands, .quit to exit")
	_ = s.show()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		quit, err := s.exec(ctx, line)
		if err != nil {
			cc.Renderer.Error(err.Error())
		}
		if quit {
			break
		}
		rl.SetPrompt(s.prompt())
	}
	return nil
}

// session is the REPL's grid state, independent of the terminal.
type session struct {
	reg *grids.Registry
	r   *output.Renderer
	res grids.Resource
}

func newSession(reg *grids.Registry, r *output.Renderer) *session {
	return &session{reg: reg, r: r}
}

func (s *session) prompt() string {
	if s.res == nil {
		return "admingrid> "
	}
	return s.res.Name() + "> "
}

func (s *session) open(ctx context.Context, resource string) error {
	res, err := s.reg.Open(ctx, resource, grids.OpenOptions{})
	if err != nil {
		return err
	}
	s.close()
	s.res = res
	return nil
}

func (s *session) close() {
	if s.res != nil {
		s.res.Close()
		s.res = nil
	}
}

// exec runs one input line. It reports whether the session should end.
func (s *session) exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, ".") {
		if err := s.res.Search(ctx, line); err != nil {
			return false, err
		}
		return false, s.show()
	}

	parts := strings.Fields(line)
	command, args := strings.ToLower(parts[0]), parts[1:]
	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	// refresh re-reads the page after a state change that a server grid
	// leaves to its caller.
	refresh := true
	var err error
	switch command {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		printREPLHelp(s.r.Writer())
		return false, nil
	case ".resources":
		s.r.Println(strings.Join(grids.Names(), "\n"))
		return false, nil
	case ".open":
		if len(args) != 1 {
			return false, errors.New("usage: .open <resource>")
		}
		err = s.open(ctx, args[0])
		refresh = false
	case ".show", ".refresh":
	case ".sort":
		if len(args) != 1 {
			return false, errors.New("usage: .sort <column>  (toggles asc, desc, none)")
		}
		err = s.res.ToggleSort(args[0])
	case ".filter":
		if len(args) < 1 {
			return false, errors.New("usage: .filter <column> [value]  (no value clears)")
		}
		err = grids.ApplyFilter(s.res, args[0], strings.TrimSpace(strings.TrimPrefix(arg, args[0])))
	case ".clear":
		s.res.ClearColumnFilters()
	case ".search":
		err = s.res.Search(ctx, arg)
		refresh = false
	case ".page":
		err = s.page(args)
	case ".size":
		n, perr := intArg(args)
		if perr != nil {
			return false, perr
		}
		err = s.res.SetPageSize(n)
	case ".select":
		if len(args) == 0 {
			err = s.res.ToggleAllPageRowsSelected(s.res.View().PageSelection != datatable.MarkAll)
		} else {
			err = s.res.ToggleRowSelected(args[0])
		}
	case ".unselect":
		s.res.ClearSelection()
	case ".expand":
		if len(args) != 1 {
			return false, errors.New("usage: .expand <row id>")
		}
		err = s.res.ToggleExpanded(args[0])
	case ".columns":
		s.printColumns()
		return false, nil
	case ".toggle":
		if len(args) != 1 {
			return false, errors.New("usage: .toggle <column>")
		}
		err = s.res.ToggleColumnVisibility(args[0])
	case ".action":
		err = s.action(ctx, args)
		refresh = false
	case ".export":
		return false, s.export(ctx, args)
	case ".state":
		return false, s.printState()
	default:
		return false, fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}
	if err != nil {
		return false, err
	}
	if refresh {
		if err := s.res.Refresh(ctx); err != nil {
			return false, err
		}
	}
	return false, s.show()
}

func (s *session) page(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: .page <n|next|prev|first|last>")
	}
	switch args[0] {
	case "next":
		return s.res.NextPage()
	case "prev", "previous":
		return s.res.PreviousPage()
	case "first":
		return s.res.FirstPage()
	case "last":
		return s.res.LastPage()
	}
	n, err := intArg(args)
	if err != nil {
		return err
	}
	return s.res.SetPageIndex(n - 1)
}

// action runs ".action <row id> <label|number>".
func (s *session) action(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: .action <row id> <action>")
	}
	for _, row := range s.res.View().Rows {
		if row.ID != args[0] {
			continue
		}
		for i, a := range row.Actions {
			if strings.EqualFold(a.Label, args[1]) || strconv.Itoa(i+1) == args[1] {
				if err := s.res.RunAction(ctx, row.ID, a.Index); err != nil {
					return err
				}
				s.r.Success(fmt.Sprintf("%s %s", a.Label, row.ID))
				return nil
			}
		}
		return fmt.Errorf("%w: %q for row %s", grids.ErrUnknownAction, args[1], row.ID)
	}
	return fmt.Errorf("row %s is not on this page", args[0])
}

func (s *session) export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return renderResource(ctx, s.r, s.res)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()
	result, err := s.res.Export(ctx, f)
	if err != nil {
		return err
	}
	s.r.Success(fmt.Sprintf("exported %d rows to %s", result.Rows, args[0]))
	return nil
}

func (s *session) printColumns() {
	t := output.Table{Headers: []string{"Column", "Label", "Visible"}}
	for _, c := range s.res.View().ColumnToggles {
		visible := "yes"
		if !c.Visible {
			visible = "no"
		}
		t.Rows = append(t.Rows, []string{c.ColumnID, c.Label, visible})
	}
	_ = s.r.RenderTable(t)
}

func (s *session) printState() error {
	enc := json.NewEncoder(s.r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(s.res.State())
}

// show prints the current page.
func (s *session) show() error {
	v := s.res.View()
	if err := s.r.RenderTable(pageTable(v)); err != nil {
		return err
	}
	for _, row := range v.Rows {
		if row.SubComponent != "" {
			s.r.Println()
			s.r.Println(output.FormatHeader(3, row.ID))
			s.r.Println(row.SubComponent)
		}
	}
	if sum := grids.Summary(v); sum != "" {
		s.r.Muted(sum)
	}
	return nil
}

// pageTable turns a view into output rows: the row id first, then the
// visible data columns, then the row's actions.
func pageTable(v datatable.View) output.Table {
	t := output.Table{Headers: []string{"ID"}}
	var cols []string
	hasActions := false
	for _, h := range v.Headers {
		switch h.Kind {
		case datatable.CellData:
			label := h.Label
			if mark := grids.SortLabel(h, len(v.Sorting) > 1); mark != "" {
				label += " " + mark
			}
			if !h.FilterValue.IsZero() {
				label += " *"
			}
			t.Headers = append(t.Headers, label)
			cols = append(cols, h.ColumnID)
		case datatable.CellActions:
			hasActions = true
		}
	}
	if hasActions {
		t.Headers = append(t.Headers, "Actions")
	}

	if v.Body != datatable.BodyRows {
		return t
	}
	for _, row := range v.Rows {
		id := strings.Repeat("  ", row.Depth) + row.ID
		if row.Selected {
			id = "● " + id
		}
		if row.Expandable {
			if row.Expanded {
				id += " ▾"
			} else {
				id += " ▸"
			}
		}
		line := []string{id}
		rec := map[string]any{"id": row.ID}
		for _, c := range row.Cells {
			if c.Kind == datatable.CellData {
				line = append(line, c.Text)
				rec[c.ColumnID] = c.Value
			}
		}
		if hasActions {
			labels := make([]string, len(row.Actions))
			for i, a := range row.Actions {
				labels[i] = a.Label
			}
			line = append(line, strings.Join(labels, ", "))
		}
		t.Rows = append(t.Rows, line)
		t.Records = append(t.Records, rec)
	}
	return t
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", args[0])
	}
	return n, nil
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .open <resource>        Switch to another grid (.resources lists them)
  .show                   Reload and print the current page
  .sort <column>          Cycle a column through asc, desc and unsorted
  .filter <column> [v]    Filter a column; ranges use a..b, no value clears
  .clear                  Clear every column filter
  .search <text>          Search (or type text without a leading dot)
  .page <n|next|prev|first|last>
  .size <n>               Rows per page
  .select [row id]        Toggle a row, or the whole page without an id
  .unselect               Clear the selection
  .expand <row id>        Toggle a row's detail
  .columns                List columns and their visibility
  .toggle <column>        Show or hide a column
  .action <row id> <name> Run a row action by label or number
  .export [file]          Print every matching row, or write CSV to a file
  .state                  Print the grid state as JSON
  .quit / .exit           Exit the REPL
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and resource names.
func newREPLCompleter() *readline.PrefixCompleter {
	resources := make([]readline.PrefixCompleterInterface, 0, len(grids.Names()))
	for _, name := range grids.Names() {
		resources = append(resources, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".resources"),
		readline.PcItem(".open", resources...),
		readline.PcItem(".show"),
		readline.PcItem(".sort"),
		readline.PcItem(".filter"),
		readline.PcItem(".clear"),
		readline.PcItem(".search"),
		readline.PcItem(".page",
			readline.PcItem("next"), readline.PcItem("prev"),
			readline.PcItem("first"), readline.PcItem("last")),
		readline.PcItem(".size"),
		readline.PcItem(".select"),
		readline.PcItem(".unselect"),
		readline.PcItem(".expand"),
		readline.PcItem(".columns"),
		readline.PcItem(".toggle"),
		readline.PcItem(".action"),
		readline.PcItem(".export"),
		readline.PcItem(".state"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
