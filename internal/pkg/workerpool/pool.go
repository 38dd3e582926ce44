package workerpool

import (
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Pool is a bounded goroutine pool for best-effort background work,
// such as cascading storage deletions after an entity is removed.
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger
	wg     sync.WaitGroup
}

// New creates a pool with the given worker count
func New(workers int, logger *zap.Logger) (*Pool, error) {
	if workers <= 0 {
		workers = 10
	}

	p, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}

	return &Pool{pool: p, logger: logger}, nil
}

// Submit schedules fn on the pool. A panic inside fn is recovered and
// logged so background cleanup can never take down the process.
func (p *Pool) Submit(fn func()) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil && p.logger != nil {
				p.logger.Error("worker panic recovered", zap.Any("panic", r))
			}
		}()
		fn()
	})
	if err != nil {
		p.wg.Done()
		return err
	}

	return nil
}

// Wait blocks until all submitted tasks have finished
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Running returns the number of currently running workers
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release stops the pool after draining submitted tasks
func (p *Pool) Release() {
	p.wg.Wait()
	p.pool.Release()
}
