package datatable

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

// Typing "abc" inside the window reports once with the final value.
func TestGlobalFilter_DebounceSettles(t *testing.T) {
	rec := &recorder{}
	tbl := newTable(t, Options[item]{
		Data:                 items(12),
		Searchable:           true,
		OnGlobalFilterChange: rec.record,
		SearchDebounce:       40 * time.Millisecond,
	})

	for _, v := range []string{"a", "ab", "abc"} {
		tbl.SetGlobalFilter(v)
	}
	assert.Empty(t, rec.get())
	// The local value is not debounced.
	assert.Equal(t, "abc", tbl.GlobalFilter())

	assert.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"abc"}, rec.get())
}

func TestGlobalFilter_CloseDropsPending(t *testing.T) {
	rec := &recorder{}
	tbl, err := New(Options[item]{
		Columns:              itemColumns(),
		OnGlobalFilterChange: rec.record,
		SearchDebounce:       20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	tbl.SetGlobalFilter("mug")
	tbl.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.get())

	// Edits after Close are not reported either.
	tbl.SetGlobalFilter("cup")
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.get())
	assert.Equal(t, "cup", tbl.GlobalFilter())
}

func TestGlobalFilter_SyncDoesNotReport(t *testing.T) {
	rec := &recorder{}
	tbl := newTable(t, Options[item]{
		Data:                 items(3),
		OnGlobalFilterChange: rec.record,
		SearchDebounce:       10 * time.Millisecond,
	})

	tbl.SyncGlobalFilter("item 02")
	assert.Equal(t, []string{"p02"}, rowIDs(tbl.RowModel()))
	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, rec.get())
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(15 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	calls := 0
	inc := func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}

	d.Do(inc)
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, count())

	d.Do(inc)
	d.Do(inc)
	assert.Eventually(t, func() bool { return count() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Pending())
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, count())
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultSearchDebounce, d.delay)
}
