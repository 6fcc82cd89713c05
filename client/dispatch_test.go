package client

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsTasksInOrder(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		d.Invoke(func() { got = append(got, i) })
	}
	d.InvokeWait(func() {})

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestDispatcherInvokeWaitBlocksUntilDone(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	var ran atomic.Bool
	d.InvokeWait(func() { ran.Store(true) })
	assert.True(t, ran.Load())
}

func TestDispatcherDropsTasksAfterStop(t *testing.T) {
	d := NewDispatcher()
	d.Stop()

	accepted := d.Invoke(func() { t.Error("task ran after stop") })
	assert.False(t, accepted)

	// Must return immediately instead of waiting on a dropped task.
	d.InvokeWait(func() { t.Error("task ran after stop") })
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	d := NewDispatcher()
	d.Stop()
	d.Stop()
}

func TestDispatcherStopDrainsQueuedTasks(t *testing.T) {
	d := NewDispatcher()

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		d.Invoke(func() { count.Add(1) })
	}
	d.Stop()

	assert.Equal(t, int32(20), count.Load())
}
