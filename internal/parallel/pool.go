// Package parallel runs per-row shading work across a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minBandRows keeps bands from becoming so thin that queueing dominates.
const minBandRows = 8

// Pool is a work-stealing pool of goroutines used to split a full-screen pass
// into horizontal bands.
//
// Each worker owns a queue. An idle worker steals from its neighbours before
// blocking, which evens out bands whose texels are more expensive than others
// (bands crossing a trail blob do more noise evaluations).
//
// Pool is safe for concurrent use, but a pass submitted with Rows only returns
// once every band has finished, so callers see a strictly sequential frame.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)
	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			fn()
		default:
			if fn := p.steal(id); fn != nil {
				fn()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case fn := <-own:
				fn()
			}
		}
	}
}

func (p *Pool) drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Rows calls fn over [0, height) split into contiguous half-open bands
// [y0, y1) and waits for all of them. Bands never overlap, so fn may write
// rows y0..y1-1 of a shared destination without synchronization.
//
// A nil or closed pool runs fn(0, height) on the calling goroutine.
func (p *Pool) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if p == nil || !p.running.Load() || p.workers == 1 || height < 2*minBandRows {
		fn(0, height)
		return
	}

	bands := Bands(height, p.workers*2)
	var wg sync.WaitGroup
	wg.Add(len(bands))
	for i, b := range bands {
		y0, y1 := b[0], b[1]
		task := func() {
			defer wg.Done()
			fn(y0, y1)
		}
		select {
		case p.queues[i%p.workers] <- task:
		case <-p.done:
			// Closed mid-pass: finish inline so the pass stays complete.
			task()
		}
	}
	wg.Wait()
}

// Bands splits height rows into at most n contiguous bands of at least
// minBandRows rows (the last band absorbs the remainder).
func Bands(height, n int) [][2]int {
	if height <= 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if maxBands := height / minBandRows; n > maxBands {
		n = max(maxBands, 1)
	}
	step := height / n
	out := make([][2]int, 0, n)
	for i := range n {
		y0 := i * step
		y1 := y0 + step
		if i == n-1 {
			y1 = height
		}
		out = append(out, [2]int{y0, y1})
	}
	return out
}

// Close stops the workers after draining queued bands. Close is idempotent.
func (p *Pool) Close() {
	if p == nil || !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *Pool) IsRunning() bool {
	return p != nil && p.running.Load()
}
