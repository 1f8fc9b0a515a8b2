// Package dispatch runs jobs in arrival order per key and concurrently across keys.
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher keeps one FIFO queue per key. A worker goroutine exists only
// while its queue is not empty.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[string][]func()
	closed bool
	wg     sync.WaitGroup
	logger *zap.Logger
}

func New(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		queues: make(map[string][]func()),
		logger: logger,
	}
}

// Submit enqueues job behind the pending jobs of key.
func (d *Dispatcher) Submit(key string, job func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	queue, busy := d.queues[key]
	d.queues[key] = append(queue, job)

	if !busy {
		d.wg.Add(1)
		go d.drain(key)
	}

	return nil
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

// Pending returns the number of queued jobs of key, including a running one.
func (d *Dispatcher) Pending(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.queues[key])
}

func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		job := d.queues[key][0]
		d.mu.Unlock()

		d.run(key, job)

		d.mu.Lock()
		rest := d.queues[key][1:]
		if len(rest) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		d.queues[key] = rest
		d.mu.Unlock()
	}
}

func (d *Dispatcher) run(key string, job func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("job panicked", zap.String("key", key), zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()

	job()
}
