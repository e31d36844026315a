package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageMath(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCount int
		wantLast  int
	}{
		{"47 rows by 10", 47, 10, 5, 4},
		{"exact multiple", 40, 10, 4, 3},
		{"single partial page", 3, 10, 1, 0},
		{"empty", 0, 10, 0, 0},
		{"invalid size", 10, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCount, PageCount(tt.total, tt.pageSize))
			assert.Equal(t, tt.wantLast, LastPageIndex(tt.total, tt.pageSize))
		})
	}
}

func TestCheckPage(t *testing.T) {
	assert.NoError(t, CheckPage(4, 10, 47))
	assert.NoError(t, CheckPage(0, 10, 0))
	assert.ErrorIs(t, CheckPage(5, 10, 47), ErrPageOutOfRange)
	assert.ErrorIs(t, CheckPage(-1, 10, 47), ErrPageOutOfRange)
	assert.ErrorIs(t, CheckPage(0, 0, 47), ErrInvalidPageSize)

	assert.ErrorIs(t, Pagination{PageIndex: 5, PageSize: 10, Total: 47}.Check(), ErrPageOutOfRange)
	assert.Equal(t, 4, ClampPage(9, 10, 47))
	assert.Equal(t, 0, ClampPage(-3, 10, 47))
}

// With 47 rows and 10 per page the last page is index 4 holding 7 rows, and
// index 5 is rejected rather than served.
func TestPagination_Bounds(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(47), Pagination: &Pagination{PageSize: 10}})

	require.NoError(t, tbl.LastPage())
	state, ok := tbl.Pagination()
	require.True(t, ok)
	assert.Equal(t, 4, state.PageIndex)
	rows := tbl.RowModel()
	assert.Len(t, rows, 7)
	assert.Equal(t, "p41", rows[0].ID)

	err := tbl.SetPageIndex(5)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	state, _ = tbl.Pagination()
	assert.Equal(t, 4, state.PageIndex)

	footer := tbl.View().Footer
	require.NotNil(t, footer)
	assert.Equal(t, &Footer{
		PageIndex:       4,
		PageSize:        10,
		PageCount:       5,
		Total:           47,
		From:            41,
		To:              47,
		CanPrevious:     true,
		CanNext:         false,
		PageSizeOptions: DefaultPageSizeOptions,
	}, footer)
}

func TestPagination_Navigation(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(25), Pagination: &Pagination{PageSize: 10}})

	page := func() int {
		s, _ := tbl.Pagination()
		return s.PageIndex
	}

	require.NoError(t, tbl.PreviousPage())
	assert.Equal(t, 0, page())
	require.NoError(t, tbl.NextPage())
	assert.Equal(t, 1, page())
	require.NoError(t, tbl.NextPage())
	require.NoError(t, tbl.NextPage())
	assert.Equal(t, 2, page())
	require.NoError(t, tbl.FirstPage())
	assert.Equal(t, 0, page())
	require.NoError(t, tbl.SetPageIndex(2))
	assert.Equal(t, []string{"p21", "p22", "p23", "p24", "p25"}, rowIDs(tbl.RowModel()))

	assert.ErrorIs(t, tbl.SetPageSize(0), ErrInvalidPageSize)
}

func TestPagination_Absent(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(47)})

	assert.Len(t, tbl.RowModel(), 47)
	assert.Nil(t, tbl.View().Footer)
	_, ok := tbl.Pagination()
	assert.False(t, ok)
	assert.ErrorIs(t, tbl.NextPage(), ErrNoPagination)
}

// Changing the page size from page 3 reports page index zero.
func TestSetPageSize_ResetsPageIndex(t *testing.T) {
	var reported []PaginationState
	tbl := newTable(t, Options[item]{
		Data: items(47),
		Pagination: &Pagination{
			PageIndex: 3,
			PageSize:  10,
			OnChange:  func(s PaginationState) { reported = append(reported, s) },
		},
	})

	require.NoError(t, tbl.SetPageSize(25))
	require.Len(t, reported, 1)
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 25}, reported[0])

	// Controlled: nothing moves until the caller answers.
	state, _ := tbl.Pagination()
	assert.Equal(t, PaginationState{PageIndex: 3, PageSize: 10}, state)
}

func TestSetPageSize_Owned(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(47), Pagination: &Pagination{PageIndex: 3, PageSize: 10}})

	require.NoError(t, tbl.SetPageSize(25))
	state, _ := tbl.Pagination()
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 25}, state)
	assert.Len(t, tbl.RowModel(), 25)
}

// A Total larger than the data marks it as one server page, so the rows are
// shown as handed in rather than sliced again.
func TestPagination_TotalAboveDataImpliesServerPage(t *testing.T) {
	tbl := newTable(t, Options[item]{
		Data:       items(47)[10:20],
		Pagination: &Pagination{PageIndex: 1, PageSize: 10, Total: 47},
	})

	rows := tbl.RowModel()
	require.Len(t, rows, 10)
	assert.Equal(t, "p11", rows[0].ID)

	v := tbl.View()
	assert.Equal(t, BodyRows, v.Body)
	require.NotNil(t, v.Footer)
	assert.Equal(t, 47, v.Footer.Total)
	assert.Equal(t, 5, v.Footer.PageCount)
	assert.Equal(t, 11, v.Footer.From)
	assert.Equal(t, 20, v.Footer.To)
}

func TestControlledPagination_CallerAnswersFromCallback(t *testing.T) {
	var tbl *Table[item]
	var onChange func(PaginationState)
	onChange = func(s PaginationState) {
		// Re-entering the table from a callback must not deadlock.
		tbl.SetPagination(Pagination{PageIndex: s.PageIndex, PageSize: s.PageSize, Total: 47, OnChange: onChange})
	}
	tbl = newTable(t, Options[item]{
		Data:             items(10),
		ManualPagination: true,
		Pagination:       &Pagination{PageSize: 10, Total: 47, OnChange: onChange},
	})

	require.NoError(t, tbl.NextPage())
	require.NoError(t, tbl.NextPage())
	state, _ := tbl.Pagination()
	assert.Equal(t, PaginationState{PageIndex: 2, PageSize: 10}, state)

	require.NoError(t, tbl.LastPage())
	state, _ = tbl.Pagination()
	assert.Equal(t, 4, state.PageIndex)
	assert.ErrorIs(t, tbl.SetPageIndex(5), ErrPageOutOfRange)

	// Server mode shows the data as handed in.
	assert.Len(t, tbl.RowModel(), 10)
	footer := tbl.View().Footer
	require.NotNil(t, footer)
	assert.Equal(t, 47, footer.Total)
	assert.Equal(t, 41, footer.From)
	assert.Equal(t, 47, footer.To)
}
