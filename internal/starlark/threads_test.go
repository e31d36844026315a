package starlark

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.starlark.net/starlark"
)

func TestThreads_GetResetsState(t *testing.T) {
	th := newThreads()

	a := th.get("price", 10)
	assert.Equal(t, "price", a.Name)
	a.Steps = 5
	th.put(a, false)

	b := th.get("stock", 10)
	assert.Equal(t, "stock", b.Name)
	assert.Zero(t, b.Steps)
}

func TestThreads_Concurrent(t *testing.T) {
	th := newThreads()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			thread := th.get("worker", 0)
			_, _ = starlark.ExecFile(thread, "w.star", "x = 1", nil)
			th.put(thread, false)
		}()
	}
	wg.Wait()
}
