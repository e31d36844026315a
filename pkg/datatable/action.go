package datatable

import "fmt"

// Variant is the visual weight of a row action.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDestructive
	VariantOutline
	VariantSecondary
)

// String returns the string representation of a Variant.
func (v Variant) String() string {
	switch v {
	case VariantDefault:
		return "default"
	case VariantDestructive:
		return "destructive"
	case VariantOutline:
		return "outline"
	case VariantSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("unknown(%d)", v)
	}
}

// Action is a per-row operation rendered as a button or menu entry.
type Action[T any] struct {
	Label   string
	Icon    string
	OnClick func(T)
	Variant Variant

	// Show decides visibility per row. Nil means always visible.
	Show func(T) bool
}

func (a Action[T]) visible(row T) bool {
	return a.Show == nil || a.Show(row)
}

// ActionPresentation says how a row's visible actions are drawn.
type ActionPresentation int

const (
	// ActionsNone means no action is visible for the row.
	ActionsNone ActionPresentation = iota
	// ActionsInline means exactly one action, drawn as a button.
	ActionsInline
	// ActionsMenu means several actions, collapsed into an overflow menu.
	ActionsMenu
)

// ActionButton is the render model of one visible action.
type ActionButton struct {
	// Index is the action's position in Options.Actions; RunAction takes it.
	Index   int
	Label   string
	Icon    string
	Variant Variant
}

// visibleActions evaluates every Show predicate for a row.
func visibleActions[T any](actions []Action[T], row T) ([]ActionButton, ActionPresentation) {
	var buttons []ActionButton
	for i, a := range actions {
		if !a.visible(row) {
			continue
		}
		buttons = append(buttons, ActionButton{
			Index:   i,
			Label:   a.Label,
			Icon:    a.Icon,
			Variant: a.Variant,
		})
	}
	switch len(buttons) {
	case 0:
		return nil, ActionsNone
	case 1:
		return buttons, ActionsInline
	default:
		return buttons, ActionsMenu
	}
}
