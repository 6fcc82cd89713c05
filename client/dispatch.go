package client

import "sync"

// Dispatcher serializes state mutation onto a single goroutine, the client's
// equivalent of the UI thread. Background work posts results here instead of
// touching shared state directly.
type Dispatcher struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewDispatcher creates and starts a dispatcher.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{tasks: make(chan func(), 64)}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for task := range d.tasks {
			task()
		}
	}()
	return d
}

// Invoke enqueues fn to run on the dispatcher goroutine. Tasks enqueued after
// Stop are silently dropped, matching a torn-down UI; the return value reports
// whether the task was accepted.
func (d *Dispatcher) Invoke(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	d.tasks <- fn
	return true
}

// InvokeWait runs fn on the dispatcher goroutine and blocks until it returns.
func (d *Dispatcher) InvokeWait(fn func()) {
	done := make(chan struct{})
	if !d.Invoke(func() {
		defer close(done)
		fn()
	}) {
		return
	}
	<-done
}

// Stop drains queued tasks and terminates the goroutine.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.tasks)
	d.mu.Unlock()
	d.wg.Wait()
}
