package animation

import (
	"runtime"
	"sync"
)

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	index      int // selects the chunk's noise source
	start, end int
	kernel     *kernel
}

// workerPool fans the per-particle loop out over persistent goroutines.
// Particles have no cross dependencies so chunks can run in any order.
type workerPool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

// start launches persistent worker goroutines.
func (p *workerPool) start(e *Engine) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(e)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *workerPool) worker(e *Engine) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			e.animateChunk(chunk.start, chunk.end, e.chunkRNGs[chunk.index], chunk.kernel)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits n particles into one chunk per worker and waits for all of them.
func (p *workerPool) run(e *Engine, n int, k *kernel) {
	if !p.running {
		p.start(e)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{index: w, start: start, end: end, kernel: k}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
