package datatable

import "errors"

// Errors returned by the datatable package.
var (
	// ErrNoColumns is returned when a table is built without columns.
	ErrNoColumns = errors.New("table has no columns")

	// ErrDuplicateColumn is returned when two columns share an ID.
	ErrDuplicateColumn = errors.New("duplicate column id")

	// ErrColumnNotRenderable is returned for a column with neither an accessor nor a cell renderer.
	ErrColumnNotRenderable = errors.New("column has neither accessor nor cell renderer")

	// ErrUnknownColumn is returned when an operation names a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrColumnNotSortable is returned when sorting is requested on a column without Sortable.
	ErrColumnNotSortable = errors.New("column is not sortable")

	// ErrColumnNotFilterable is returned when a filter is set on a column with FilterNone.
	ErrColumnNotFilterable = errors.New("column is not filterable")

	// ErrColumnNotHideable is returned when toggling visibility of a column with DisableHiding.
	ErrColumnNotHideable = errors.New("column cannot be hidden")

	// ErrRowIDRequired is returned when selection or expansion is enabled without GetRowID.
	ErrRowIDRequired = errors.New("GetRowID is required when row selection or expansion is enabled")

	// ErrUnknownRow is returned when a row id is not present in the current data.
	ErrUnknownRow = errors.New("unknown row")

	// ErrRowNotExpandable is returned when expanding a row that has no sub rows.
	ErrRowNotExpandable = errors.New("row is not expandable")

	// ErrPageOutOfRange is returned when a page index falls outside the page range.
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrInvalidPageSize is returned for page sizes below one.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrNoPagination is returned by page operations on a table without pagination.
	ErrNoPagination = errors.New("table has no pagination")

	// ErrFeatureDisabled is returned when an operation targets a feature the table was built without.
	ErrFeatureDisabled = errors.New("feature not enabled")

	// ErrActionHidden is returned when running an action whose Show predicate rejects the row.
	ErrActionHidden = errors.New("action not available for row")

	// ErrExportFailed wraps write failures of the default CSV export.
	ErrExportFailed = errors.New("export failed")
)
