package fdtd

import "sync"

// workerPool runs one function per thread and waits for all of them. The
// goroutines are started once and bound to their thread index.
type workerPool struct {
	jobs []chan func(threadID int)
	wg   sync.WaitGroup
}

func newWorkerPool(threads int) *workerPool {
	p := &workerPool{}
	if threads <= 1 {
		return p
	}

	p.jobs = make([]chan func(int), threads)
	for id := range p.jobs {
		ch := make(chan func(int))
		p.jobs[id] = ch
		go func(id int) {
			for fn := range ch {
				fn(id)
				p.wg.Done()
			}
		}(id)
	}
	return p
}

// run calls fn on every thread and returns once all calls finished.
func (p *workerPool) run(fn func(threadID int)) {
	if len(p.jobs) == 0 {
		fn(0)
		return
	}

	p.wg.Add(len(p.jobs))
	for _, ch := range p.jobs {
		ch <- fn
	}
	p.wg.Wait()
}

func (p *workerPool) close() {
	for _, ch := range p.jobs {
		close(ch)
	}
	p.jobs = nil
}
