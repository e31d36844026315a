package starlark

import (
	"sync"

	"go.starlark.net/starlark"
)

// threads caches evaluation threads; grids evaluate every computed column of
// every row, often from several requests at once.
type threads struct {
	pool sync.Pool
}

func newThreads() *threads {
	t := &threads{}
	t.pool.New = func() any {
		return &starlark.Thread{Print: func(*starlark.Thread, string) {}}
	}
	return t
}

// get returns a thread named for error messages and bounded to maxSteps.
func (t *threads) get(name string, maxSteps uint64) *starlark.Thread {
	th := t.pool.Get().(*starlark.Thread)
	th.Name = name
	th.Steps = 0
	if maxSteps > 0 {
		th.SetMaxExecutionSteps(maxSteps)
	}
	return th
}

// put recycles a thread. Threads that failed may have been cancelled by the
// step limit and are dropped instead.
func (t *threads) put(th *starlark.Thread, failed bool) {
	if failed {
		return
	}
	th.Name = ""
	t.pool.Put(th)
}
